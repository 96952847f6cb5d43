package serve

import (
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/urfave/cli/v2"

	"github.com/seoforge/schemald/internal/common"
	"github.com/seoforge/schemald/internal/pipeline"
	"github.com/seoforge/schemald/models"
	"github.com/seoforge/schemald/pkg/loader"
)

// ServeAction starts an HTTP server that serves local pages with their
// JSON-LD schema injected per request. Each request runs the full pipeline,
// so navigation always sees fresh metadata and the current cache bucket.
func ServeAction(c *cli.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	deps, err := pipeline.New(config)
	if err != nil {
		logger.Error("failed to initialize loader", "error", err)
		os.Exit(2)
	}

	srv := &Server{
		config:   config,
		deps:     deps,
		pagesDir: c.String("pages-dir"),
		logger:   logger,
		// Recovered loader failures are debug-only and gated per request by
		// debug_hosts, so they need a handler that passes debug records.
		debugLogger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/*", srv.servePage)

	addr := c.String("addr")
	logger.Info("serving pages with schema injection", "addr", addr, "pages_dir", srv.pagesDir)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(2)
	}
	return nil
}

type Server struct {
	config      *models.Config
	deps        *pipeline.Deps
	pagesDir    string
	logger      *slog.Logger
	debugLogger *slog.Logger
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	html, ok := s.readPage(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	// Requests are independent page surfaces, so each gets its own loader.
	// Loader-level failure logging is enabled only for debug hosts.
	var loaderLogger *slog.Logger
	if s.debugHost(r.Host) {
		loaderLogger = s.debugLogger
	}
	l := s.deps.NewLoader(loaderLogger)
	if loaderLogger != nil {
		l.OnLoaded(func(filename string, _ models.SchemaDocument) {
			s.logger.Info("schema loaded", "path", r.URL.Path, "filename", filename)
		})
	}

	result, err := l.Run(r.Context(), loader.Request{
		Path: r.URL.Path,
		URL:  common.PageURL(s.config.SiteURL, r.URL.Path),
		HTML: string(html),
	})
	if err != nil {
		// The page itself is unusable; serve it untouched rather than erroring.
		s.logger.Warn("injection failed, serving page unmodified", "path", r.URL.Path, "error", err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(html)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(result.HTML))
}

// readPage maps a request path onto the pages directory: "/" serves
// index.html, "/services" serves services/index.html or services.html.
func (s *Server) readPage(urlPath string) ([]byte, bool) {
	rel := filepath.Clean("/" + urlPath)[1:] // confine to pagesDir
	candidates := []string{
		filepath.Join(s.pagesDir, rel, "index.html"),
		filepath.Join(s.pagesDir, rel+".html"),
	}
	if rel == "" {
		candidates = []string{filepath.Join(s.pagesDir, "index.html")}
	}
	for _, p := range candidates {
		if data, err := os.ReadFile(p); err == nil {
			return data, true
		}
	}
	return nil, false
}

func (s *Server) debugHost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return s.config.DebugHost(host)
}
