package history

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/seoforge/schemald/pkg/db"
)

// HistoryAction prints recent validate/render runs from the history database.
func HistoryAction(c *cli.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open history database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	runs, err := database.RecentRuns(c.Int("limit"))
	if err != nil {
		logger.Error("failed to load runs", "error", err)
		os.Exit(2)
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("#%d  %s  %-8s  %-8s  errors=%d  %dms  %s\n",
			run.RunID, run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Command, run.Outcome, run.ErrorCount, run.DurationMS, run.Target)

		if c.Bool("verbose") && run.Command == "validate" {
			results, err := database.RunValidations(run.RunID)
			if err != nil {
				logger.Warn("failed to load validations", "run_id", run.RunID, "error", err)
				continue
			}
			for _, r := range results {
				if r.Valid {
					continue
				}
				fmt.Printf("      FAIL %s\n", r.Filename)
				for _, msg := range r.Errors {
					fmt.Printf("           %s\n", msg)
				}
			}
		}
	}
	return nil
}
