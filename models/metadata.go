package models

// PageMetadata is the flat record of page context used for placeholder
// substitution. Every field has an explicit fallback at extraction time, so
// a fully-zero value only occurs before extraction.
type PageMetadata struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	PublishedDate string `json:"published_date"` // ISO-8601, or empty
	ModifiedDate  string `json:"modified_date"`  // extraction-time timestamp
	Author        string `json:"author"`
	Language      string `json:"language"` // ISO-639-1 if possible (e.g. "en")
}
