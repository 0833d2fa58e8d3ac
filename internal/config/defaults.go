package config

import (
	"time"

	"github.com/hyperjump/midashi/internal/models"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Corpus.Location == "" {
		cfg.Corpus.Location = "./folders.json"
	}
	if cfg.Loader.Timeout == 0 {
		cfg.Loader.Timeout = 10 * time.Second
	}
	if cfg.Loader.MaxBytes == 0 {
		cfg.Loader.MaxBytes = 50 << 20
	}
	if cfg.Loader.CacheSize == 0 {
		cfg.Loader.CacheSize = 256
	}
	if cfg.Loader.CacheTTL == 0 {
		cfg.Loader.CacheTTL = 5 * time.Minute
	}
	ApplySearchDefaults(&cfg.Search)
}

// ApplySearchDefaults fills the search section. The tag vocabulary defaults to the one
// used by the bundled format converters: <heading>, <text> and <nav>.
func ApplySearchDefaults(s *SearchConfig) {
	if s.Granularity == "" {
		s.Granularity = models.GranularityLeaf
	}
	if s.Traversal == "" {
		s.Traversal = models.TraversalExhaustive
	}
	if s.Grouping == "" {
		s.Grouping = models.GroupingFlat
	}
	if s.TextTags == nil {
		s.TextTags = []string{"text"}
	}
	if s.HeadingTag == "" {
		s.HeadingTag = "heading"
	}
	if s.ExcludedTags == nil {
		s.ExcludedTags = []string{"nav"}
	}
	if s.ExcludeAttribute == "" {
		s.ExcludeAttribute = "data-search-exclude"
	}
}
