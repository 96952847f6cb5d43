// Package template substitutes placeholder tokens in a serialized schema
// document with page metadata values.
package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seoforge/schemald/models"
)

// Placeholder tokens recognized inside schema documents. The map from token
// to metadata field is fixed; documents reference any subset of them.
const (
	TokenPageURL       = "[PAGE_URL]"
	TokenPageTitle     = "[PAGE_TITLE]"
	TokenDescription   = "[PAGE_DESCRIPTION]"
	TokenImage         = "[PAGE_IMAGE]"
	TokenPublishedDate = "[PUBLISHED_DATE]"
	TokenModifiedDate  = "[MODIFIED_DATE]"
	TokenAuthor        = "[AUTHOR_NAME]"
	TokenLanguage      = "[PAGE_LANGUAGE]"
	TokenCurrentYear   = "[CURRENT_YEAR]"
)

// Values maps every placeholder token to its value for the given metadata
// record and instant.
func Values(meta models.PageMetadata, now time.Time) map[string]string {
	return map[string]string{
		TokenPageURL:       meta.URL,
		TokenPageTitle:     meta.Title,
		TokenDescription:   meta.Description,
		TokenImage:         meta.Image,
		TokenPublishedDate: meta.PublishedDate,
		TokenModifiedDate:  meta.ModifiedDate,
		TokenAuthor:        meta.Author,
		TokenLanguage:      meta.Language,
		TokenCurrentYear:   strconv.Itoa(now.Year()),
	}
}

// Apply replaces every occurrence of each placeholder token in the
// serialized document and parses the result back. Tokens absent from the
// document are no-ops; metadata fields not referenced are dropped. Values
// are JSON-escaped before splicing so structurally significant characters
// in metadata cannot corrupt the document.
func Apply(doc models.SchemaDocument, meta models.PageMetadata, now time.Time) (models.SchemaDocument, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}

	text := string(raw)
	for token, value := range Values(meta, now) {
		text = strings.ReplaceAll(text, token, escape(value))
	}

	var out models.SchemaDocument
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("failed to parse templated document: %w", err)
	}
	return out, nil
}

// escape JSON-encodes a value as a string literal and strips the quotes,
// yielding text safe to splice into an encoded document.
func escape(value string) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return value
	}
	return string(encoded[1 : len(encoded)-1])
}
