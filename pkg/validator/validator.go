// Package validator scans a directory of JSON-LD documents and checks each
// against the fixed Schema.org shape. It is the build-gate half of the
// toolkit: one pass, per-file recovery, aggregate exit decision.
package validator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/seoforge/schemald/models"
	"github.com/seoforge/schemald/pkg/schema"
)

// Reporter receives per-document results and the final summary. It is
// presentation only; replacing it does not change the validation contract.
type Reporter interface {
	Result(r models.ValidationResult)
	Summary(total, failed int)
}

// WriterReporter prints one line per document plus a summary.
type WriterReporter struct {
	W io.Writer
}

func (wr WriterReporter) Result(r models.ValidationResult) {
	if r.Valid {
		fmt.Fprintf(wr.W, "PASS  %s\n", r.Filename)
		return
	}
	fmt.Fprintf(wr.W, "FAIL  %s\n", r.Filename)
	for _, msg := range r.Errors {
		fmt.Fprintf(wr.W, "      %s\n", msg)
	}
}

func (wr WriterReporter) Summary(total, failed int) {
	if failed == 0 {
		fmt.Fprintf(wr.W, "%d documents checked, all valid\n", total)
		return
	}
	fmt.Fprintf(wr.W, "%d documents checked, %d invalid\n", total, failed)
}

// ValidateAll checks every .json file in dir (non-recursive, sorted by
// filename) and returns per-file results plus an aggregate ok flag. A file
// that fails to parse is reported invalid and does not stop the scan; the
// returned error is non-nil only when the directory itself cannot be read.
func ValidateAll(dir string, rep Reporter) ([]models.ValidationResult, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read schemas directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var results []models.ValidationResult
	failed := 0
	for _, name := range names {
		result := validateFile(filepath.Join(dir, name), name)
		if !result.Valid {
			failed++
		}
		if rep != nil {
			rep.Result(result)
		}
		results = append(results, result)
	}

	if rep != nil {
		rep.Summary(len(results), failed)
	}
	return results, failed == 0, nil
}

func validateFile(path, name string) models.ValidationResult {
	result := models.ValidationResult{Filename: name}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = []string{fmt.Sprintf("failed to read file: %v", err)}
		return result
	}

	doc, err := schema.Parse(data)
	if err != nil {
		result.Errors = []string{err.Error()}
		return result
	}

	for _, v := range schema.Check(doc) {
		result.Errors = append(result.Errors, v.String())
	}
	result.Valid = len(result.Errors) == 0
	return result
}
