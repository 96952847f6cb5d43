package models

// SchemaDocument is a parsed JSON-LD document. Its identity is the filename
// it was loaded from; values are never mutated in place, every
// transformation produces a new document.
type SchemaDocument map[string]any

// ValidationResult is the outcome of checking a single schema document.
type ValidationResult struct {
	Filename string
	Valid    bool
	Errors   []string
}
