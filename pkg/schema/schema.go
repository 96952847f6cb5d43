// Package schema implements the fixed Schema.org shape check for JSON-LD
// documents. It is intentionally not full JSON Schema validation: three
// top-level fields are checked and everything else is permitted.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/seoforge/schemald/models"
)

// Code identifies a class of shape violation.
type Code string

const (
	// CodeMissingContext indicates the required @context field is absent.
	CodeMissingContext Code = "missing-context"
	// CodeBadContextValue indicates @context is not an accepted Schema.org URI.
	CodeBadContextValue Code = "bad-context-value"
	// CodeWrongType indicates a recognized field has the wrong JSON type.
	CodeWrongType Code = "wrong-type-for-field"
)

// Violation is a single shape-check failure with a stable code.
type Violation struct {
	Code    Code
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s", v.Code, v.Message)
}

// ContextHTTPS and ContextHTTP are the two accepted @context values.
const (
	ContextHTTPS = "https://schema.org"
	ContextHTTP  = "http://schema.org"
)

// Parse decodes raw bytes into a schema document.
func Parse(data []byte) (models.SchemaDocument, error) {
	var doc models.SchemaDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}

// Check runs the fixed rule set against a document and returns every
// violation found. Violations are collected, never short-circuited, so a
// single result can report multiple simultaneous errors.
func Check(doc models.SchemaDocument) []Violation {
	var violations []Violation

	ctx, ok := doc["@context"]
	if !ok {
		violations = append(violations, Violation{
			Code:    CodeMissingContext,
			Message: "@context is required",
		})
	} else if s, isString := ctx.(string); !isString || (s != ContextHTTPS && s != ContextHTTP) {
		violations = append(violations, Violation{
			Code:    CodeBadContextValue,
			Message: fmt.Sprintf("@context must be %q or %q, got %v", ContextHTTPS, ContextHTTP, ctx),
		})
	}

	if typ, ok := doc["@type"]; ok {
		if _, isString := typ.(string); !isString {
			violations = append(violations, Violation{
				Code:    CodeWrongType,
				Message: fmt.Sprintf("@type must be a string, got %T", typ),
			})
		}
	}

	if graph, ok := doc["@graph"]; ok {
		if _, isArray := graph.([]any); !isArray {
			violations = append(violations, Violation{
				Code:    CodeWrongType,
				Message: fmt.Sprintf("@graph must be an array, got %T", graph),
			})
		}
	}

	return violations
}
