// Package corpus reads the folder list that names the documents to search.
package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"sync/atomic"

	"github.com/hyperjump/midashi/internal/fileid"
	"github.com/hyperjump/midashi/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Provider returns the current corpus.
type Provider interface {
	Load(ctx context.Context) (models.Corpus, error)
}

// Fetcher reads the bytes at a location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Source is a Provider backed by a folders file at a local path or URL.
type Source struct {
	location string
	fetcher  Fetcher
}

// NewSource returns a provider reading location with fetcher.
func NewSource(location string, fetcher Fetcher) *Source {
	return &Source{location: location, fetcher: fetcher}
}

// Location returns the folders file location.
func (s *Source) Location() string {
	return s.location
}

// Load fetches and parses the folders file. On failure it returns an empty corpus and an
// error wrapping models.ErrCorpusUnavailable.
func (s *Source) Load(ctx context.Context) (models.Corpus, error) {
	data, err := s.fetcher.Fetch(ctx, s.location)
	if err != nil {
		return models.Corpus{}, fmt.Errorf("%w: %v", models.ErrCorpusUnavailable, err)
	}
	folders, err := Parse(data)
	if err != nil {
		return models.Corpus{}, fmt.Errorf("%w: %s: %v", models.ErrCorpusUnavailable, s.location, err)
	}
	for i := range folders {
		for j, f := range folders[i].Files {
			folders[i].Files[j] = Resolve(s.location, f)
		}
	}
	return models.NewCorpus(folders, fileid.DocID), nil
}

// Parse decodes a folders file: either a list of folders or an object with a "folders"
// key, written as JSON or YAML. Folders without an id are named "folder-N" (1-based).
func Parse(data []byte) ([]models.Folder, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var folders []models.Folder
	var err error
	if trimmed[0] == '[' || trimmed[0] == '{' {
		err = decodeJSON(trimmed, &folders)
	} else {
		err = decodeYAML(trimmed, &folders)
	}
	if err != nil {
		return nil, err
	}
	for i := range folders {
		if folders[i].ID == "" {
			folders[i].ID = fmt.Sprintf("folder-%d", i+1)
		}
	}
	return folders, nil
}

type wrapper struct {
	Folders []models.Folder `json:"folders" yaml:"folders"`
}

func decodeJSON(data []byte, folders *[]models.Folder) error {
	if data[0] == '[' {
		return json.Unmarshal(data, folders)
	}
	var w wrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*folders = w.Folders
	return nil
}

func decodeYAML(data []byte, folders *[]models.Folder) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	if len(node.Content) == 0 {
		return nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		return node.Content[0].Decode(folders)
	}
	var w wrapper
	if err := node.Content[0].Decode(&w); err != nil {
		return err
	}
	*folders = w.Folders
	return nil
}

// Resolve makes file relative to the folders file at location: URL references resolve
// against a URL location, paths against the directory of a local one. Local results are
// absolute so they compare equal to the paths the watcher reports. URLs are returned
// unchanged.
func Resolve(location, file string) string {
	if fileid.IsURL(file) {
		return file
	}
	if fileid.IsURL(location) {
		base, err := url.Parse(location)
		if err != nil {
			return file
		}
		ref, err := url.Parse(file)
		if err != nil {
			return file
		}
		return base.ResolveReference(ref).String()
	}
	p := file
	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(location), file)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Store holds the current corpus and swaps it atomically on reload, so searches in flight
// keep the corpus they started with.
type Store struct {
	provider Provider
	current  atomic.Pointer[models.Corpus]
	logger   *zap.Logger
}

// NewStore returns a store with an empty corpus. Call Reload to populate it.
func NewStore(provider Provider, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{provider: provider, logger: logger}
	s.current.Store(&models.Corpus{})
	return s
}

// Current returns the corpus of the last reload.
func (s *Store) Current() models.Corpus {
	return *s.current.Load()
}

// Reload loads the corpus from the provider and makes it current. An unavailable
// corpus is logged and replaced by an empty one; the error is returned as well.
func (s *Store) Reload(ctx context.Context) (models.Corpus, error) {
	c, err := s.provider.Load(ctx)
	if err != nil {
		s.logger.Warn("corpus unavailable, continuing with empty corpus", zap.Error(err))
		c = models.Corpus{}
	} else {
		s.logger.Info("corpus loaded", zap.Int("folders", len(c.Folders)), zap.Int("documents", c.Len()))
	}
	s.current.Store(&c)
	return c, err
}
