// Package loader orchestrates the per-page pipeline: resolve the page path
// to a schema filename, fetch the document from the CDN, substitute
// placeholders with page metadata, and inject the result into the page
// head. Any failure after resolution degrades to a static organization
// document, never to a visible error.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"

	"github.com/seoforge/schemald/models"
	"github.com/seoforge/schemald/pkg/fetcher"
	"github.com/seoforge/schemald/pkg/injector"
	"github.com/seoforge/schemald/pkg/metadata"
	"github.com/seoforge/schemald/pkg/resolver"
	"github.com/seoforge/schemald/pkg/schema"
	"github.com/seoforge/schemald/pkg/template"
)

// Request is one page to process.
type Request struct {
	Path string // request path, drives schema selection
	URL  string // fully-qualified page URL for metadata
	HTML string // page markup to inject into
}

// Result is the outcome of one loader run.
type Result struct {
	Filename string
	Document models.SchemaDocument
	HTML     string
	Fallback bool
	// Stale marks a run superseded by a newer one before injecting; its
	// document was computed but deliberately not injected.
	Stale bool
}

type Loader struct {
	resolver  *resolver.Resolver
	fetcher   *fetcher.Fetcher
	extractor *metadata.Extractor
	env       metadata.Environment
	fallback  models.SchemaDocument
	logger    *slog.Logger
	onLoaded  func(filename string, doc models.SchemaDocument)
	seq       atomic.Uint64
}

func New(res *resolver.Resolver, f *fetcher.Fetcher, ex *metadata.Extractor,
	env metadata.Environment, org models.OrganizationConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		resolver:  res,
		fetcher:   f,
		extractor: ex,
		env:       env,
		fallback:  FallbackDocument(org),
		logger:    logger,
	}
}

// OnLoaded registers a callback fired after a successful (non-fallback)
// injection with the resolved filename and final document.
func (l *Loader) OnLoaded(fn func(filename string, doc models.SchemaDocument)) {
	l.onLoaded = fn
}

// FallbackDocument builds the minimal organization record injected when the
// page-specific schema cannot be produced.
func FallbackDocument(org models.OrganizationConfig) models.SchemaDocument {
	return models.SchemaDocument{
		"@context": schema.ContextHTTPS,
		"@type":    "Organization",
		"name":     org.Name,
		"url":      org.URL,
		"logo":     org.Logo,
	}
}

// Run executes the pipeline for one page. Concurrent runs are guarded by a
// monotonically increasing sequence: a run superseded before injection
// returns a stale result instead of injecting out of order.
func (l *Loader) Run(ctx context.Context, req Request) (Result, error) {
	id := l.seq.Add(1)

	filename := l.resolver.Resolve(req.Path)
	doc, usedFallback := l.load(ctx, filename, req)

	page, err := goquery.NewDocumentFromReader(strings.NewReader(req.HTML))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse page: %w", err)
	}

	if l.seq.Load() != id {
		l.logger.Debug("run superseded, skipping injection", "filename", filename)
		return Result{Filename: filename, Document: doc, Fallback: usedFallback, Stale: true}, nil
	}

	if err := injector.Inject(page, doc); err != nil {
		return Result{}, fmt.Errorf("failed to inject document: %w", err)
	}

	html, err := goquery.OuterHtml(page.Selection)
	if err != nil {
		return Result{}, fmt.Errorf("failed to render page: %w", err)
	}

	if !usedFallback && l.onLoaded != nil {
		l.onLoaded(filename, doc)
	}

	return Result{
		Filename: filename,
		Document: doc,
		HTML:     html,
		Fallback: usedFallback,
	}, nil
}

// load produces the document to inject: the fetched and templated schema,
// or the static fallback on any fetch/parse/template failure.
func (l *Loader) load(ctx context.Context, filename string, req Request) (models.SchemaDocument, bool) {
	meta := l.extractor.Extract(req.URL, req.HTML)

	body, err := l.fetcher.Fetch(ctx, filename)
	if err != nil {
		l.logger.Debug("schema fetch failed", "filename", filename, "error", err)
		return l.fallback, true
	}

	doc, err := schema.Parse(body)
	if err != nil {
		l.logger.Debug("schema parse failed", "filename", filename, "error", err)
		return l.fallback, true
	}

	out, err := template.Apply(doc, meta, l.env.Now())
	if err != nil {
		l.logger.Debug("template substitution failed", "filename", filename, "error", err)
		return l.fallback, true
	}
	return out, false
}
