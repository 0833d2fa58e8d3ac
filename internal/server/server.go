// Package server provides the HTTP API and search page for midashi.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/midashi/internal/config"
	"github.com/hyperjump/midashi/internal/models"
	"github.com/hyperjump/midashi/internal/search"
	"go.uber.org/zap"
)

// CorpusStore holds the corpus searched by requests.
type CorpusStore interface {
	Current() models.Corpus
	Reload(ctx context.Context) (models.Corpus, error)
}

// DocumentFetcher returns the raw bytes of a document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Server is the HTTP server for the midashi API.
type Server struct {
	engine *search.Engine
	corpus CorpusStore
	docs   DocumentFetcher
	config *config.ServerConfig
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	corpus CorpusStore,
	docs DocumentFetcher,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine: engine,
		corpus: corpus,
		docs:   docs,
		config: cfg,
		logger: logger,
	}
}

// Handler returns the router with every route and middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/", http.RedirectHandler("/search", http.StatusFound).ServeHTTP)
	r.Get("/search", s.handleSearchPage)
	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/corpus", s.handleCorpus)
	r.Post("/api/v1/corpus/reload", s.handleCorpusReload)
	r.Get("/api/v1/documents/{id}", s.handleGetDocument)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
