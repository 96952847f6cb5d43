// Package pipeline wires the loader's shared components from configuration.
// The language detector in particular is expensive to build and safe to
// share; loaders themselves are cheap and constructed per consumer, since
// each loader's run-sequence guard models a single page surface.
package pipeline

import (
	"log/slog"

	"github.com/seoforge/schemald/models"
	"github.com/seoforge/schemald/pkg/fetcher"
	"github.com/seoforge/schemald/pkg/loader"
	"github.com/seoforge/schemald/pkg/metadata"
	"github.com/seoforge/schemald/pkg/resolver"
)

type Deps struct {
	Resolver  *resolver.Resolver
	Fetcher   *fetcher.Fetcher
	Extractor *metadata.Extractor
	Env       metadata.Environment

	org models.OrganizationConfig
}

// New builds the shared pipeline components.
func New(config *models.Config) (*Deps, error) {
	res, err := resolver.New(config.Routes, config.DefaultSchema)
	if err != nil {
		return nil, err
	}

	env := metadata.SystemEnvironment{}
	var opts []metadata.Option
	if config.DetectLanguage {
		opts = append(opts, metadata.WithLanguageDetection())
	}

	return &Deps{
		Resolver:  res,
		Fetcher:   fetcher.New(config.CDN, env),
		Extractor: metadata.NewExtractor(env, config.DefaultAuthor, opts...),
		Env:       env,
		org:       config.Organization,
	}, nil
}

// NewLoader constructs a loader over the shared components. Recovered
// failures inside the loader are logged at debug level through logger; a
// nil logger keeps them silent, which is the non-debug default.
func (d *Deps) NewLoader(logger *slog.Logger) *loader.Loader {
	return loader.New(d.Resolver, d.Fetcher, d.Extractor, d.Env, d.org, logger)
}
