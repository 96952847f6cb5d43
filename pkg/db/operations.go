package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/seoforge/schemald/models"
)

// Run is one recorded invocation.
type Run struct {
	RunID      int64
	Command    string
	Target     string
	Outcome    string
	ErrorCount int
	DurationMS int64
	CreatedAt  time.Time
}

// RecordRun inserts a run row and returns its id.
func (db *DB) RecordRun(command, target, outcome string, errorCount int, duration time.Duration) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (command, target, outcome, error_count, duration_ms)
		VALUES (?, ?, ?, ?, ?)
	`, command, target, outcome, errorCount, duration.Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// RecordValidations stores per-document results for a validate run.
func (db *DB) RecordValidations(runID int64, results []models.ValidationResult) error {
	for _, r := range results {
		_, err := db.Exec(`
			INSERT INTO validations (run_id, filename, valid, messages)
			VALUES (?, ?, ?, ?)
		`, runID, r.Filename, r.Valid, strings.Join(r.Errors, "\n"))
		if err != nil {
			return fmt.Errorf("failed to insert validation for %s: %w", r.Filename, err)
		}
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	rows, err := db.Query(`
		SELECT run_id, command, target, outcome, error_count, duration_ms, created_at
		FROM runs
		ORDER BY run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Command, &r.Target, &r.Outcome, &r.ErrorCount, &r.DurationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunValidations returns the per-document results stored for a run.
func (db *DB) RunValidations(runID int64) ([]models.ValidationResult, error) {
	rows, err := db.Query(`
		SELECT filename, valid, messages
		FROM validations
		WHERE run_id = ?
		ORDER BY validation_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query validations: %w", err)
	}
	defer rows.Close()

	var results []models.ValidationResult
	for rows.Next() {
		var r models.ValidationResult
		var messages string
		if err := rows.Scan(&r.Filename, &r.Valid, &messages); err != nil {
			return nil, fmt.Errorf("failed to scan validation: %w", err)
		}
		if messages != "" {
			r.Errors = strings.Split(messages, "\n")
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
