// Package loader fetches documents from disk or HTTP and parses them into trees, keeping
// recently used trees in an LRU cache.
package loader

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/hyperjump/midashi/internal/config"
	"github.com/hyperjump/midashi/internal/doctree"
	"github.com/hyperjump/midashi/internal/extract"
	"github.com/hyperjump/midashi/internal/fileid"
	"github.com/hyperjump/midashi/internal/models"
	"go.uber.org/zap"
)

// Loader turns document references into parsed trees.
type Loader struct {
	fetcher   *Fetcher
	extractor *extract.Extractor
	cache     *Cache
	ttl       time.Duration
	logger    *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger; default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithFetcher replaces the fetcher built from the config.
func WithFetcher(f *Fetcher) Option {
	return func(ld *Loader) { ld.fetcher = f }
}

// New creates a loader from the loader section of the config.
func New(cfg *config.LoaderConfig, opts ...Option) *Loader {
	ld := &Loader{
		fetcher:   NewFetcher(cfg.Timeout, cfg.MaxBytes),
		extractor: extract.NewExtractor(),
		cache:     NewCache(cfg.CacheSize),
		ttl:       cfg.CacheTTL,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Cache returns the tree cache, for invalidation by the watcher.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Fetch returns the raw bytes of a document.
func (l *Loader) Fetch(ctx context.Context, location string) ([]byte, error) {
	return l.fetcher.Fetch(ctx, location)
}

// Load returns the tree of ref, from the cache when the document is unchanged.
// Fetch failures wrap models.ErrDocumentLoadFailed and parse failures wrap
// models.ErrMalformedDocument.
func (l *Loader) Load(ctx context.Context, ref models.DocumentRef) (*doctree.Node, error) {
	location := ref.Path
	version, ttl, err := l.version(location)
	if err != nil {
		return nil, err
	}
	if root, ok := l.cache.Get(location, version); ok {
		l.logger.Debug("document cache hit", zap.String("path", location))
		return root, nil
	}

	data, err := l.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	root, err := l.extractor.ExtractBytes(data, Ext(location))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	l.cache.Set(location, version, root, ttl)
	l.logger.Debug("document loaded", zap.String("path", location), zap.Int("bytes", len(data)))
	return root, nil
}

// version returns the cache version and ttl for location: local files are versioned by
// modification time and size, remote documents expire after the configured ttl.
func (l *Loader) version(location string) (string, time.Duration, error) {
	if fileid.IsURL(location) {
		return "", l.ttl, nil
	}
	info, err := os.Stat(location)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", models.ErrDocumentLoadFailed, err)
	}
	if info.IsDir() {
		return "", 0, fmt.Errorf("%w: %s is a directory", models.ErrDocumentLoadFailed, location)
	}
	return fmt.Sprintf("%d:%d", info.ModTime().UnixNano(), info.Size()), 0, nil
}

// Ext returns the extension of a file path or of a URL's path component.
func Ext(location string) string {
	if fileid.IsURL(location) {
		if u, err := url.Parse(location); err == nil {
			return path.Ext(u.Path)
		}
	}
	return filepath.Ext(location)
}
