package render

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/seoforge/schemald/internal/common"
	"github.com/seoforge/schemald/internal/pipeline"
	"github.com/seoforge/schemald/models"
	"github.com/seoforge/schemald/pkg/db"
	"github.com/seoforge/schemald/pkg/loader"
)

// Job defines a page file for a worker to process.
type Job struct {
	RelPath string
}

// Result holds the outcome of a processed job.
type Result struct {
	RelPath   string
	Filename  string
	Fallback  bool
	Error     error
	ErrorType string
}

// RenderAction runs the loader pipeline over local HTML pages: each page
// gets its path-specific schema fetched, templated with the page's own
// metadata, and injected, then is written to the output directory.
func RenderAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	if c.Bool("debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	startTime := time.Now()

	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	pagesDir := c.String("pages-dir")
	outDir := c.String("out-dir")

	pages, err := findPages(pagesDir)
	if err != nil {
		logger.Error("failed to list pages", "error", err, "dir", pagesDir)
		os.Exit(2)
	}
	if len(pages) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no .html pages found")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  schemald render --pages-dir site --out-dir dist`)
		os.Exit(1)
	}

	deps, err := pipeline.New(config)
	if err != nil {
		logger.Error("failed to initialize loader", "error", err)
		os.Exit(2)
	}

	var loaderLogger *slog.Logger
	if c.Bool("debug") {
		loaderLogger = logger
	}

	var wg sync.WaitGroup
	jobs := make(chan Job, len(pages))
	results := make(chan Result, len(pages))

	workerCount := c.Int("workers")
	if workerCount <= 0 {
		workerCount = 4
	}
	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		// Each worker gets its own loader: the run-sequence guard is for
		// navigation re-runs against one page surface, not for batch jobs.
		go worker(c.Context, w, config, deps.NewLoader(loaderLogger), pagesDir, outDir, logger, &wg, jobs, results)
	}

	for _, rel := range pages {
		jobs <- Job{RelPath: rel}
	}
	close(jobs)

	wg.Wait()
	close(results)

	rendered, fellBack, failed := 0, 0, 0
	for result := range results {
		switch {
		case result.Error != nil:
			failed++
			logger.Error("page failed", "page", result.RelPath, "type", result.ErrorType, "error", result.Error)
		case result.Fallback:
			fellBack++
			rendered++
		default:
			rendered++
		}
	}

	fmt.Printf("%d pages rendered (%d with fallback schema), %d failed\n", rendered, fellBack, failed)

	recordRun(logger, pagesDir, rendered, fellBack, failed, time.Since(startTime))

	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// worker processes jobs from the jobs channel and sends results to the
// results channel.
func worker(ctx context.Context, id int, config *models.Config, l *loader.Loader,
	pagesDir, outDir string, logger *slog.Logger,
	wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		logger.Debug("worker started job", "worker", id, "page", job.RelPath)
		result := Result{RelPath: job.RelPath}

		html, err := os.ReadFile(filepath.Join(pagesDir, job.RelPath))
		if err != nil {
			result.Error = err
			result.ErrorType = "read_error"
			results <- result
			continue
		}

		pagePath := common.PagePath(job.RelPath)
		runResult, err := l.Run(ctx, loader.Request{
			Path: pagePath,
			URL:  common.PageURL(config.SiteURL, pagePath),
			HTML: string(html),
		})
		if err != nil {
			result.Error = err
			result.ErrorType = "inject_error"
			results <- result
			continue
		}
		result.Filename = runResult.Filename
		result.Fallback = runResult.Fallback

		outPath := filepath.Join(outDir, job.RelPath)
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			result.Error = err
			result.ErrorType = "save_error"
			results <- result
			continue
		}
		if err := os.WriteFile(outPath, []byte(runResult.HTML), 0644); err != nil {
			result.Error = err
			result.ErrorType = "save_error"
			results <- result
			continue
		}

		results <- result
		logger.Debug("worker finished job", "worker", id, "page", job.RelPath, "schema", result.Filename)
	}
}

func findPages(dir string) ([]string, error) {
	var pages []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		pages = append(pages, rel)
		return nil
	})
	return pages, err
}

func recordRun(logger *slog.Logger, target string, rendered, fellBack, failed int, duration time.Duration) {
	database, err := db.Open()
	if err != nil {
		logger.Warn("failed to open history database", "error", err)
		return
	}
	defer database.Close()

	outcome := "ok"
	if failed > 0 {
		outcome = "failed"
	} else if fellBack > 0 {
		outcome = "fallback"
	}
	if _, err := database.RecordRun("render", target, outcome, failed, duration); err != nil {
		logger.Warn("failed to record run", "error", err)
	}
}
