package loader

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seoforge/schemald/models"
	"github.com/seoforge/schemald/pkg/fetcher"
	"github.com/seoforge/schemald/pkg/injector"
	"github.com/seoforge/schemald/pkg/metadata"
	"github.com/seoforge/schemald/pkg/resolver"
)

var testInstant = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

const testPage = `<html lang="en"><head><title>Services</title></head><body><p>content</p></body></html>`

func testOrg() models.OrganizationConfig {
	return models.OrganizationConfig{
		Name: "Acme",
		URL:  "https://acme.example",
		Logo: "https://acme.example/logo.png",
	}
}

func newTestLoader(t *testing.T, serverURL string) *Loader {
	t.Helper()
	env := metadata.FixedEnvironment{Instant: testInstant}

	res, err := resolver.New(models.RoutesConfig{
		Exact:    map[string]string{"/services": "services.json"},
		Patterns: []models.PatternRule{{Pattern: `^/post/.+`, Schema: "blog-post.json"}},
	}, "default.json")
	if err != nil {
		t.Fatalf("resolver.New() error = %v", err)
	}

	f := fetcher.New(models.CDNConfig{
		BaseURL:            serverURL,
		Repo:               "acme/site-schemas",
		Branch:             "main",
		CacheWindowSeconds: 3600,
	}, env)

	ex := metadata.NewExtractor(env, "Acme Marketing")
	return New(res, f, ex, env, testOrg(), nil)
}

func parsePage(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse rendered page: %v", err)
	}
	return doc
}

func TestRun_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"@context": "https://schema.org", "@type": "Service", "name": "[PAGE_TITLE]", "copyrightYear": "[CURRENT_YEAR]"}`))
	}))
	defer server.Close()

	l := newTestLoader(t, server.URL)
	var loadedFilename string
	l.OnLoaded(func(filename string, doc models.SchemaDocument) {
		loadedFilename = filename
	})

	result, err := l.Run(context.Background(), Request{
		Path: "/services/",
		URL:  "https://acme.example/services",
		HTML: testPage,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Filename != "services.json" {
		t.Errorf("Filename = %q", result.Filename)
	}
	if result.Fallback {
		t.Error("Fallback = true, want false")
	}
	if result.Document["name"] != "Services" {
		t.Errorf("name = %v, want page title substituted", result.Document["name"])
	}
	if result.Document["copyrightYear"] != "2025" {
		t.Errorf("copyrightYear = %v", result.Document["copyrightYear"])
	}
	if loadedFilename != "services.json" {
		t.Errorf("loaded event filename = %q", loadedFilename)
	}

	page := parsePage(t, result.HTML)
	if injector.Count(page) != 1 {
		t.Errorf("marked elements = %d, want 1", injector.Count(page))
	}
	if !strings.Contains(injector.Content(page), `"Services"`) {
		t.Errorf("injected content = %q", injector.Content(page))
	}
}

func TestRun_FallbackOnNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	l := newTestLoader(t, server.URL)
	eventFired := false
	l.OnLoaded(func(string, models.SchemaDocument) { eventFired = true })

	result, err := l.Run(context.Background(), Request{
		Path: "/services",
		URL:  "https://acme.example/services",
		HTML: testPage,
	})
	if err != nil {
		t.Fatalf("Run() error = %v, want fallback instead of error", err)
	}

	if !result.Fallback {
		t.Error("Fallback = false, want true")
	}
	if result.Document["@type"] != "Organization" {
		t.Errorf("fallback @type = %v", result.Document["@type"])
	}
	if result.Document["name"] != "Acme" {
		t.Errorf("fallback name = %v", result.Document["name"])
	}
	if eventFired {
		t.Error("loaded event fired on fallback")
	}

	page := parsePage(t, result.HTML)
	if injector.Count(page) != 1 {
		t.Errorf("marked elements = %d, want exactly 1", injector.Count(page))
	}
}

func TestRun_FallbackOnUnparsableSchema(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{broken`))
	}))
	defer server.Close()

	l := newTestLoader(t, server.URL)
	result, err := l.Run(context.Background(), Request{
		Path: "/services",
		URL:  "https://acme.example/services",
		HTML: testPage,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Fallback {
		t.Error("Fallback = false, want true for unparsable schema")
	}
}

func TestRun_TwiceLeavesSingleElement(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"@context": "https://schema.org", "@type": "Service", "run": "first"}`))
			return
		}
		w.Write([]byte(`{"@context": "https://schema.org", "@type": "Service", "run": "second"}`))
	}))
	defer server.Close()

	l := newTestLoader(t, server.URL)

	first, err := l.Run(context.Background(), Request{
		Path: "/services", URL: "https://acme.example/services", HTML: testPage,
	})
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	// Second run re-enters with the first run's output page.
	second, err := l.Run(context.Background(), Request{
		Path: "/services", URL: "https://acme.example/services", HTML: first.HTML,
	})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	page := parsePage(t, second.HTML)
	if injector.Count(page) != 1 {
		t.Fatalf("marked elements = %d after two runs, want 1", injector.Count(page))
	}
	if !strings.Contains(injector.Content(page), "second") {
		t.Errorf("content = %q, want second run's document", injector.Content(page))
	}
}

func TestRun_SupersededRunSkipsInjection(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	first := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if first {
			first = false
			close(started)
			<-release
		}
		w.Write([]byte(`{"@context": "https://schema.org", "@type": "Service"}`))
	}))
	defer server.Close()

	l := newTestLoader(t, server.URL)

	type outcome struct {
		result Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := l.Run(context.Background(), Request{
			Path: "/services", URL: "https://acme.example/services", HTML: testPage,
		})
		done <- outcome{result, err}
	}()

	<-started
	// A second navigation fires while the first fetch is outstanding.
	latest, err := l.Run(context.Background(), Request{
		Path: "/services", URL: "https://acme.example/services", HTML: testPage,
	})
	if err != nil {
		t.Fatalf("latest Run() error = %v", err)
	}
	if latest.Stale {
		t.Error("latest run reported stale")
	}

	close(release)
	out := <-done
	if out.err != nil {
		t.Fatalf("superseded Run() error = %v", out.err)
	}
	if !out.result.Stale {
		t.Error("superseded run Stale = false, want true")
	}
	if out.result.HTML != "" {
		t.Error("superseded run produced injected HTML")
	}
}

func TestRun_RecoveredFailureLoggedInDebugMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	env := metadata.FixedEnvironment{Instant: testInstant}
	res, err := resolver.New(models.RoutesConfig{}, "default.json")
	if err != nil {
		t.Fatalf("resolver.New() error = %v", err)
	}
	f := fetcher.New(models.CDNConfig{
		BaseURL: server.URL, Repo: "acme/site-schemas", Branch: "main", CacheWindowSeconds: 3600,
	}, env)
	ex := metadata.NewExtractor(env, "Acme Marketing")

	var sink bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&sink, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := New(res, f, ex, env, testOrg(), logger)

	result, err := l.Run(context.Background(), Request{
		Path: "/anything", URL: "https://acme.example/anything", HTML: testPage,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Fallback {
		t.Fatal("Fallback = false, want true")
	}
	if !strings.Contains(sink.String(), "schema fetch failed") {
		t.Errorf("recovered fetch failure not logged in debug mode; sink = %q", sink.String())
	}
}

func TestFallbackDocument(t *testing.T) {
	doc := FallbackDocument(testOrg())
	if doc["@context"] != "https://schema.org" {
		t.Errorf("@context = %v", doc["@context"])
	}
	if doc["@type"] != "Organization" {
		t.Errorf("@type = %v", doc["@type"])
	}
}
