// Package resolver maps page paths to schema filenames. Exact rules are
// checked before pattern rules; pattern rules keep their declared order and
// the first match wins.
package resolver

import (
	"fmt"
	"regexp"

	"github.com/seoforge/schemald/models"
)

type patternRule struct {
	re     *regexp.Regexp
	schema string
}

// Resolver is a pure lookup over immutable rule tables built once at startup.
type Resolver struct {
	exact    map[string]string
	patterns []patternRule
	fallback string
}

// New compiles the configured rules. Pattern compile errors surface here,
// not at resolve time.
func New(routes models.RoutesConfig, fallback string) (*Resolver, error) {
	r := &Resolver{
		exact:    make(map[string]string, len(routes.Exact)),
		fallback: fallback,
	}
	for path, schema := range routes.Exact {
		r.exact[path] = schema
	}
	for _, rule := range routes.Patterns {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q: %w", rule.Pattern, err)
		}
		r.patterns = append(r.patterns, patternRule{re: re, schema: rule.Schema})
	}
	return r, nil
}

// Resolve returns the schema filename for a page path. It never fails: an
// unmatched path yields the default filename.
func (r *Resolver) Resolve(path string) string {
	path = normalize(path)

	if schema, ok := r.exact[path]; ok {
		return schema
	}
	for _, rule := range r.patterns {
		if rule.re.MatchString(path) {
			return rule.schema
		}
	}
	return r.fallback
}

// normalize strips exactly one trailing slash; an empty result is the root.
func normalize(path string) string {
	if len(path) > 0 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if path == "" {
		return "/"
	}
	return path
}
