// Package metadata extracts a flat PageMetadata record from a page's HTML.
// Meta tags are the primary source; readability enrichment fills the gaps,
// and language detection is a last resort when the page declares nothing.
package metadata

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/seoforge/schemald/models"
)

// Extractor reads page metadata. Construct once and reuse; the optional
// language detector loads its models at build time.
type Extractor struct {
	env           Environment
	defaultAuthor string
	detector      lingua.LanguageDetector
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLanguageDetection enables statistical language detection as a fallback
// when the page declares no lang attribute and readability finds nothing.
func WithLanguageDetection() Option {
	return func(e *Extractor) {
		e.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English,
				lingua.Spanish,
				lingua.French,
				lingua.German,
				lingua.Portuguese,
			).
			Build()
	}
}

func NewExtractor(env Environment, defaultAuthor string, opts ...Option) *Extractor {
	e := &Extractor{env: env, defaultAuthor: defaultAuthor}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract builds the metadata record for a page. Every lookup has an
// explicit default, so extraction never fails on missing data.
func (e *Extractor) Extract(pageURL, html string) models.PageMetadata {
	meta := models.PageMetadata{
		URL:          pageURL,
		ModifiedDate: e.env.Now().Format(time.RFC3339),
		Author:       e.defaultAuthor,
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return meta
	}

	meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	meta.Description = metaContent(doc, `meta[name="description"]`)
	meta.Image = metaContent(doc, `meta[property="og:image"]`)
	meta.PublishedDate = metaContent(doc, `meta[property="article:published_time"]`)
	if author := metaContent(doc, `meta[name="author"]`); author != "" {
		meta.Author = author
	}
	meta.Language = normalizeLang(doc.Find("html").AttrOr("lang", ""))

	e.enrich(&meta, pageURL, html)

	if meta.Language == "" && e.detector != nil {
		if lang, ok := e.detector.DetectLanguageOf(doc.Find("body").Text()); ok {
			meta.Language = strings.ToLower(lang.IsoCode639_1().String())
		}
	}
	if meta.Language == "" {
		meta.Language = "en"
	}

	return meta
}

// enrich fills empty fields from readability's article analysis.
func (e *Extractor) enrich(meta *models.PageMetadata, pageURL, html string) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		return
	}

	if meta.Title == "" {
		meta.Title = strings.TrimSpace(article.Title)
	}
	if meta.Description == "" {
		meta.Description = strings.TrimSpace(article.Excerpt)
	}
	if meta.Image == "" {
		meta.Image = article.Image
	}
	if meta.Author == e.defaultAuthor && article.Byline != "" {
		meta.Author = article.Byline
	}
	if meta.PublishedDate == "" && article.PublishedTime != nil {
		meta.PublishedDate = article.PublishedTime.Format(time.RFC3339)
	}
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

// normalizeLang reduces a BCP-47 tag to its primary subtag ("en-US" -> "en").
func normalizeLang(lang string) string {
	lang = strings.TrimSpace(strings.ToLower(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}
