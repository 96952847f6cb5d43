package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/seoforge/schemald/internal/history"
	"github.com/seoforge/schemald/internal/render"
	"github.com/seoforge/schemald/internal/serve"
	"github.com/seoforge/schemald/internal/validate"
)

func main() {
	app := &cli.App{
		Name:  "schemald",
		Usage: "validate JSON-LD schema documents and inject them into pages",
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "check every schema document against the Schema.org shape",
				Action: validate.ValidateAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: "schemald.yaml", Usage: "path to config file"},
					&cli.StringFlag{Name: "schemas-dir", Usage: "override the configured schemas directory"},
					&cli.BoolFlag{Name: "quiet", Usage: "suppress per-file output"},
				},
			},
			{
				Name:   "render",
				Usage:  "inject schemas into local HTML pages",
				Action: render.RenderAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: "schemald.yaml", Usage: "path to config file"},
					&cli.StringFlag{Name: "pages-dir", Value: "site", Usage: "directory of HTML pages"},
					&cli.StringFlag{Name: "out-dir", Value: "dist", Usage: "output directory"},
					&cli.IntFlag{Name: "workers", Value: 4, Usage: "number of concurrent workers"},
					&cli.BoolFlag{Name: "debug", Usage: "log recovered loader failures"},
					&cli.BoolFlag{Name: "quiet", Usage: "errors only"},
				},
			},
			{
				Name:   "serve",
				Usage:  "serve pages with per-request schema injection",
				Action: serve.ServeAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: "schemald.yaml", Usage: "path to config file"},
					&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "listen address"},
					&cli.StringFlag{Name: "pages-dir", Value: "site", Usage: "directory of HTML pages"},
				},
			},
			{
				Name:   "history",
				Usage:  "show recent validate/render runs",
				Action: history.HistoryAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "number of runs to show"},
					&cli.BoolFlag{Name: "verbose", Usage: "include per-file validation failures"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
