// Package injector writes the final JSON-LD document into a page's <head>.
// Injection is idempotent: previously marked elements are removed first, so
// at most one injected document exists at a time.
package injector

import (
	"encoding/json"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/seoforge/schemald/models"
)

// MarkerAttr identifies elements this package injected.
const MarkerAttr = "data-schema-loader"

// Inject replaces any previously injected schema element with a fresh one
// carrying the serialized document.
func Inject(page *goquery.Document, doc models.SchemaDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	page.Find("script[" + MarkerAttr + "]").Remove()

	head := page.Find("head").First()
	if head.Length() == 0 {
		return fmt.Errorf("page has no head element")
	}
	head.AppendHtml(fmt.Sprintf(
		`<script type="application/ld+json" %s>%s</script>`, MarkerAttr, payload))
	return nil
}

// Count returns the number of marked schema elements in the page.
func Count(page *goquery.Document) int {
	return page.Find("script[" + MarkerAttr + "]").Length()
}

// Content returns the text of the injected schema element, or "" if absent.
func Content(page *goquery.Document) string {
	return page.Find("script[" + MarkerAttr + "]").First().Text()
}
