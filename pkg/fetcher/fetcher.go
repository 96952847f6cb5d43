// Package fetcher retrieves schema documents from the CDN. One attempt per
// call; cache busting comes from a timestamp bucket in the URL, stable
// within the configured window and different across windows.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/seoforge/schemald/models"
	"github.com/seoforge/schemald/pkg/metadata"
)

type Fetcher struct {
	client *http.Client
	cfg    models.CDNConfig
	env    metadata.Environment
}

func New(cfg models.CDNConfig, env metadata.Environment) *Fetcher {
	// Library callers may build a CDNConfig by hand; a zero window would
	// make CacheBucket divide by zero.
	if cfg.CacheWindowSeconds <= 0 {
		cfg.CacheWindowSeconds = 3600
	}
	return &Fetcher{
		client: &http.Client{},
		cfg:    cfg,
		env:    env,
	}
}

// CacheBucket returns the current cache-busting bucket: the unix time
// integer-divided by the cache window.
func (f *Fetcher) CacheBucket() int64 {
	return f.env.Now().Unix() / f.cfg.CacheWindowSeconds
}

// URL builds the fully-qualified CDN URL for a schema filename.
func (f *Fetcher) URL(filename string) string {
	return fmt.Sprintf("%s/%s@%s/schemas/%s?t=%d",
		f.cfg.BaseURL, f.cfg.Repo, f.cfg.Branch, filename, f.CacheBucket())
}

// Fetch retrieves a schema document by filename. Any non-2xx status or
// transport failure is an error; there are no retries and no default
// timeout. Callers impose one through ctx if they want it.
func (f *Fetcher) Fetch(ctx context.Context, filename string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(filename), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch schema, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
