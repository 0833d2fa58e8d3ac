// Package config provides configuration loading and structs for the midashi server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/midashi/internal/fileid"
	"github.com/hyperjump/midashi/internal/models"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug  bool         `yaml:"debug"`
	Server ServerConfig `yaml:"server"`
	Corpus CorpusConfig `yaml:"corpus"`
	Loader LoaderConfig `yaml:"loader"`
	Search SearchConfig `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CorpusConfig says where the folder list lives and whether to watch it.
type CorpusConfig struct {
	// Location is a file path or http(s) URL of the folders file.
	Location string `yaml:"location"`
	Watch    *bool  `yaml:"watch"`
}

// WatchOrDefault returns whether to watch local corpus files; defaults to true when unset.
func (c *CorpusConfig) WatchOrDefault() bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return true
}

// LoaderConfig holds document fetch settings.
type LoaderConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	CacheSize int           `yaml:"cache_size"`
	// CacheTTL bounds how long a parsed remote document is reused. Local files are
	// revalidated by modification time instead.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// SearchConfig holds the matching, traversal and grouping settings and the tag vocabulary.
type SearchConfig struct {
	Granularity      models.Granularity `yaml:"granularity"`
	Traversal        models.Traversal   `yaml:"traversal"`
	Grouping         models.Grouping    `yaml:"grouping"`
	TextTags         []string           `yaml:"text_tags"`
	HeadingTag       string             `yaml:"heading_tag"`
	ExcludedTags     []string           `yaml:"excluded_tags"`
	ExcludeAttribute string             `yaml:"exclude_attribute"`
	Workers          int                `yaml:"workers"`
}

// Validate rejects unknown mode names.
func (s *SearchConfig) Validate() error {
	if _, err := models.ParseGranularity(string(s.Granularity)); err != nil {
		return err
	}
	if _, err := models.ParseTraversal(string(s.Traversal)); err != nil {
		return err
	}
	if _, err := models.ParseGrouping(string(s.Grouping)); err != nil {
		return err
	}
	return nil
}

// Default returns a config with every default applied and no file behind it.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed, or names unknown modes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Search.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}

	cfg.Corpus.Location = expandPath(cfg.Corpus.Location, filepath.Dir(path))
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" or "../" are relative to
// configDir; other relative paths are relative to the home directory. URLs are returned as-is.
func expandPath(path string, configDir string) string {
	if path == "" || fileid.IsURL(path) || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
