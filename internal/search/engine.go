// Package search finds a term in structured documents and highlights every occurrence.
package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/midashi/internal/config"
	"github.com/hyperjump/midashi/internal/doctree"
	"github.com/hyperjump/midashi/internal/models"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// DocumentLoader returns the parsed tree of a document.
type DocumentLoader interface {
	Load(ctx context.Context, ref models.DocumentRef) (*doctree.Node, error)
}

// Settings selects the matching, traversal and grouping behavior of one search.
type Settings struct {
	Granularity models.Granularity
	Traversal   models.Traversal
	Grouping    models.Grouping
	Rules       Rules
}

// SettingsFromConfig converts the search section of the config file.
func SettingsFromConfig(cfg *config.SearchConfig) Settings {
	return Settings{
		Granularity: cfg.Granularity,
		Traversal:   cfg.Traversal,
		Grouping:    cfg.Grouping,
		Rules: Rules{
			TextTags:     cfg.TextTags,
			HeadingTag:   cfg.HeadingTag,
			ExcludedTags: cfg.ExcludedTags,
			ExcludeAttr:  cfg.ExcludeAttribute,
		},
	}
}

// With returns a copy of s with the non-empty modes of q applied.
func (s Settings) With(q *models.SearchQuery) Settings {
	if q == nil {
		return s
	}
	if q.Granularity != "" {
		s.Granularity = q.Granularity
	}
	if q.Traversal != "" {
		s.Traversal = q.Traversal
	}
	if q.Grouping != "" {
		s.Grouping = q.Grouping
	}
	return s
}

// Engine searches a corpus document by document on a bounded worker pool.
type Engine struct {
	loader   DocumentLoader
	settings Settings
	marker   Marker
	pool     *ants.Pool
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger; default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMarker sets how occurrences are marked; default is HTMLMarker.
func WithMarker(m Marker) Option {
	return func(e *Engine) { e.marker = m }
}

// NewEngine creates a search engine. workers <= 0 uses one worker per CPU.
func NewEngine(loader DocumentLoader, cfg *config.SearchConfig, opts ...Option) (*Engine, error) {
	if loader == nil {
		return nil, errors.New("document loader required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	e := &Engine{
		loader:   loader,
		settings: SettingsFromConfig(cfg),
		marker:   HTMLMarker,
		pool:     pool,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Close releases the worker pool.
func (e *Engine) Close() {
	e.pool.Release()
}

// Settings returns the engine's configured defaults.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Search runs term against corpus with the configured settings.
func (e *Engine) Search(ctx context.Context, term string, corpus models.Corpus) (*models.SearchResultSet, error) {
	return e.SearchWith(ctx, term, corpus, e.settings)
}

// SearchQuery runs q against corpus, applying its mode overrides.
func (e *Engine) SearchQuery(ctx context.Context, q *models.SearchQuery, corpus models.Corpus) (*models.SearchResultSet, error) {
	return e.SearchWith(ctx, q.Query, corpus, e.settings.With(q))
}

type docResult struct {
	group    *models.ResultGroup
	searched bool
	skipped  bool
}

// SearchWith searches every document of corpus for term and returns one group per
// matching document in corpus order. A blank term or an empty corpus returns at once
// with StatusEmptyTerm or StatusNoCorpus. Documents that fail to load are skipped.
// On cancellation the documents completed so far are returned with StatusCancelled and
// the context error.
func (e *Engine) SearchWith(ctx context.Context, term string, corpus models.Corpus, s Settings) (*models.SearchResultSet, error) {
	start := time.Now()
	set := &models.SearchResultSet{
		ID:     uuid.NewString(),
		Query:  term,
		Status: models.StatusOK,
		Groups: []*models.ResultGroup{},
	}
	defer func() { set.QueryTime = time.Since(start).Milliseconds() }()

	needle := models.NormalizeTerm(term)
	if needle == "" {
		set.Status = models.StatusEmptyTerm
		e.logger.Debug("search skipped: empty term", zap.String("id", set.ID))
		return set, nil
	}
	refs := corpus.Refs()
	if len(refs) == 0 {
		set.Status = models.StatusNoCorpus
		e.logger.Debug("search skipped: empty corpus", zap.String("id", set.ID))
		return set, nil
	}

	results := make([]docResult, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			results[i] = e.searchDocument(ctx, ref, needle, s)
		})
		if err != nil {
			wg.Done()
			e.logger.Warn("submit document search failed", zap.String("path", ref.Path), zap.Error(err))
			results[i] = docResult{skipped: true}
		}
	}
	wg.Wait()

	for _, r := range results {
		if r.searched {
			set.Searched++
		}
		if r.skipped {
			set.Skipped++
		}
		if r.group != nil {
			set.Groups = append(set.Groups, r.group)
		}
	}

	if err := ctx.Err(); err != nil {
		set.Status = models.StatusCancelled
		return set, err
	}
	if set.Searched == 0 {
		set.Status = models.StatusNoCorpus
	}
	e.logger.Info("search completed",
		zap.String("id", set.ID),
		zap.String("query", term),
		zap.String("status", string(set.Status)),
		zap.Int("groups", len(set.Groups)),
		zap.Int("searched", set.Searched),
		zap.Int("skipped", set.Skipped),
		zap.Duration("took", time.Since(start)),
	)
	return set, nil
}

// searchDocument loads, walks, aggregates and decorates one document. A document that
// observes cancellation returns nothing so no partial group is ever published.
func (e *Engine) searchDocument(ctx context.Context, ref models.DocumentRef, term string, s Settings) docResult {
	if ctx.Err() != nil {
		return docResult{}
	}
	root, err := e.loader.Load(ctx, ref)
	if err != nil {
		if ctx.Err() != nil {
			return docResult{}
		}
		e.logger.Warn("skipping document", zap.String("path", ref.Path), zap.Error(err))
		return docResult{skipped: true}
	}

	walker := Walker{
		Matcher:   Matcher{Granularity: s.Granularity, Rules: s.Rules},
		Traversal: s.Traversal,
	}
	var matches []*models.Match
	for c := range walker.Walk(root, term) {
		if ctx.Err() != nil {
			return docResult{}
		}
		matches = append(matches, newMatch(ref, c, term))
	}
	if ctx.Err() != nil {
		return docResult{}
	}

	agg := Aggregator{Grouping: s.Grouping}
	group := agg.Aggregate(ref, slices.Values(matches))
	agg.Decorate(group, e.marker)
	return docResult{group: group, searched: true}
}

func newMatch(ref models.DocumentRef, c Candidate, term string) *models.Match {
	tag := c.Node.Tag
	if c.Node.Type == doctree.TextNode {
		tag = ""
	}
	return &models.Match{
		Document:   ref,
		Path:       c.Node.Path(),
		Tag:        tag,
		Heading:    c.Heading,
		HasHeading: c.HasHeading,
		Text:       c.Text,
		Spans:      FindSpans(c.Text, term),
	}
}
