package validate

import (
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/seoforge/schemald/models"
	"github.com/seoforge/schemald/pkg/db"
	"github.com/seoforge/schemald/pkg/validator"
)

// ValidateAction checks every schema document in the configured directory
// and exits non-zero if any is invalid. Used as a build gate in CI.
func ValidateAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	startTime := time.Now()

	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	dir := config.SchemasDir
	if c.IsSet("schemas-dir") {
		dir = c.String("schemas-dir")
	}

	var rep validator.Reporter
	if !c.Bool("quiet") {
		rep = validator.WriterReporter{W: os.Stdout}
	}

	results, ok, err := validator.ValidateAll(dir, rep)
	if err != nil {
		logger.Error("validation scan failed", "error", err, "dir", dir)
		os.Exit(2)
	}

	recordRun(logger, dir, results, ok, time.Since(startTime))

	if !ok {
		return cli.Exit("", 1)
	}
	return nil
}

// recordRun stores the run in the history database. Best-effort: failures
// are logged and do not affect the exit status.
func recordRun(logger *slog.Logger, dir string, results []models.ValidationResult, ok bool, duration time.Duration) {
	database, err := db.Open()
	if err != nil {
		logger.Warn("failed to open history database", "error", err)
		return
	}
	defer database.Close()

	outcome := "ok"
	failed := 0
	for _, r := range results {
		if !r.Valid {
			failed++
		}
	}
	if !ok {
		outcome = "failed"
	}

	runID, err := database.RecordRun("validate", dir, outcome, failed, duration)
	if err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	if err := database.RecordValidations(runID, results); err != nil {
		logger.Warn("failed to record validations", "error", err)
	}
}
