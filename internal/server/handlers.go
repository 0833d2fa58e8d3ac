package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/midashi/internal/fileid"
	"github.com/hyperjump/midashi/internal/loader"
	"github.com/hyperjump/midashi/internal/models"
	"go.uber.org/zap"
)

type searchError struct {
	Error  string                  `json:"error"`
	Result *models.SearchResultSet `json:"result,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query))
	if err := query.Validate(); err != nil {
		if errors.Is(err, models.ErrEmptySearchTerm) {
			set, _ := s.engine.SearchQuery(r.Context(), &query, s.corpus.Current())
			s.respondJSON(w, http.StatusBadRequest, searchError{Error: err.Error(), Result: set})
			return
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	set, err := s.engine.SearchQuery(r.Context(), &query, s.corpus.Current())
	if err != nil {
		s.logger.Warn("search interrupted", zap.String("id", set.ID), zap.Error(err))
		s.respondJSON(w, http.StatusServiceUnavailable, searchError{Error: err.Error(), Result: set})
		return
	}
	s.respondJSON(w, http.StatusOK, set)
}

func (s *Server) handleCorpus(w http.ResponseWriter, r *http.Request) {
	c := s.corpus.Current()
	folders := c.Folders
	if folders == nil {
		folders = []models.Folder{}
	}
	refs := c.Refs()
	if refs == nil {
		refs = []models.DocumentRef{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"folders":   folders,
		"documents": refs,
	})
}

func (s *Server) handleCorpusReload(w http.ResponseWriter, r *http.Request) {
	c, err := s.corpus.Reload(r.Context())
	if err != nil {
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "reloaded", "documents": c.Len()})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var ref *models.DocumentRef
	for _, d := range s.corpus.Current().Refs() {
		if d.ID == id {
			ref = &d
			break
		}
	}
	if ref == nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	if fileid.IsURL(ref.Path) {
		http.Redirect(w, r, ref.Path, http.StatusFound)
		return
	}
	data, err := s.docs.Fetch(r.Context(), ref.Path)
	if err != nil {
		s.logger.Warn("document fetch failed", zap.String("path", ref.Path), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	contentType := mime.TypeByExtension(loader.Ext(ref.Path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
