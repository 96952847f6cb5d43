// Package models defines data structures for configuration, page metadata,
// and schema documents.
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CDNConfig describes where schema documents are fetched from.
// The final URL shape is <base_url>/<repo>@<branch>/schemas/<filename>?t=<bucket>.
type CDNConfig struct {
	BaseURL            string `yaml:"base_url"`
	Repo               string `yaml:"repo"`
	Branch             string `yaml:"branch"`
	CacheWindowSeconds int64  `yaml:"cache_window_seconds"`
}

// PatternRule maps a regular expression to a schema filename.
// Order in the config file is significant: first match wins.
type PatternRule struct {
	Pattern string `yaml:"pattern"`
	Schema  string `yaml:"schema"`
}

// RoutesConfig holds the page-path to schema-filename mapping tables.
type RoutesConfig struct {
	Exact    map[string]string `yaml:"exact"`
	Patterns []PatternRule     `yaml:"patterns"`
}

// OrganizationConfig holds the fields of the static fallback document
// injected when the page-specific schema cannot be fetched or processed.
type OrganizationConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Logo string `yaml:"logo"`
}

// Config is the top-level schemald configuration, loaded from YAML.
type Config struct {
	SiteURL        string             `yaml:"site_url"`
	CDN            CDNConfig          `yaml:"cdn"`
	SchemasDir     string             `yaml:"schemas_dir"`
	DefaultSchema  string             `yaml:"default_schema"`
	DefaultAuthor  string             `yaml:"default_author"`
	DetectLanguage bool               `yaml:"detect_language"`
	Routes         RoutesConfig       `yaml:"routes"`
	Organization   OrganizationConfig `yaml:"organization"`
	DebugHosts     []string           `yaml:"debug_hosts"`
}

// LoadConfig reads and parses a YAML config file, applying defaults for
// fields that are unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.CDN.BaseURL == "" {
		c.CDN.BaseURL = "https://cdn.jsdelivr.net/gh"
	}
	if c.CDN.Branch == "" {
		c.CDN.Branch = "main"
	}
	if c.CDN.CacheWindowSeconds <= 0 {
		c.CDN.CacheWindowSeconds = 3600
	}
	if c.SchemasDir == "" {
		c.SchemasDir = "schemas"
	}
	if c.DefaultSchema == "" {
		c.DefaultSchema = "default.json"
	}
}

// DebugHost reports whether the given hostname has debug logging enabled.
func (c *Config) DebugHost(host string) bool {
	for _, h := range c.DebugHosts {
		if h == host {
			return true
		}
	}
	return false
}
