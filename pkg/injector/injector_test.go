package injector

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/seoforge/schemald/models"
)

func testPage(t *testing.T) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><head><title>Home</title></head><body><p>hi</p></body></html>`))
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}
	return doc
}

func TestInject(t *testing.T) {
	page := testPage(t)
	doc := models.SchemaDocument{"@context": "https://schema.org", "@type": "WebSite"}

	if err := Inject(page, doc); err != nil {
		t.Fatalf("Inject() error = %v", err)
	}

	if Count(page) != 1 {
		t.Fatalf("Count() = %d, want 1", Count(page))
	}
	content := Content(page)
	if !strings.Contains(content, `"@type":"WebSite"`) {
		t.Errorf("injected content = %q", content)
	}

	sel := page.Find("head script[" + MarkerAttr + "]")
	if sel.Length() != 1 {
		t.Error("injected element not inside head")
	}
	if typ, _ := sel.Attr("type"); typ != "application/ld+json" {
		t.Errorf("script type = %q", typ)
	}
}

func TestInject_ReplacesPrevious(t *testing.T) {
	page := testPage(t)

	if err := Inject(page, models.SchemaDocument{"@type": "WebSite"}); err != nil {
		t.Fatalf("first Inject() error = %v", err)
	}
	if err := Inject(page, models.SchemaDocument{"@type": "Organization"}); err != nil {
		t.Fatalf("second Inject() error = %v", err)
	}

	if Count(page) != 1 {
		t.Fatalf("Count() = %d after two injections, want 1", Count(page))
	}
	if !strings.Contains(Content(page), "Organization") {
		t.Errorf("content = %q, want second document", Content(page))
	}
}
