package server

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/hyperjump/midashi/internal/cli"
	"github.com/hyperjump/midashi/internal/models"
	"go.uber.org/zap"
)

var pageTemplate = template.Must(template.Must(cli.ResultsTemplate.Clone()).New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{if .Query}}{{.Query}} - {{end}}midashi</title>
<style>
body { font-family: sans-serif; margin: 2em; }
.result { margin-bottom: 1.5em; }
.status-empty_term, .status-no_corpus, .status-cancelled { color: #a33; }
</style>
</head>
<body>
<form action="/search" method="get">
<input type="text" id="searchInput" name="q" value="{{.Query}}" placeholder="Search text">
<button type="submit">Search</button>
</form>
<div id="results">
{{if .Results}}{{template "results" .Results}}{{end}}
</div>
</body>
</html>
`))

type pageData struct {
	Query   string
	Results *cli.HTMLResults
}

// handleSearchPage serves the search form and, when q is present, its results. Result
// links point at the document route so local files open in the browser.
func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	data := pageData{Query: params.Get("q")}

	if params.Has("q") {
		query := models.SearchQuery{
			Query:       data.Query,
			Granularity: models.Granularity(params.Get("granularity")),
			Traversal:   models.Traversal(params.Get("traversal")),
			Grouping:    models.Grouping(params.Get("grouping")),
		}
		// A blank term still renders the page, with the empty-term message.
		if err := query.Validate(); err != nil && !errors.Is(err, models.ErrEmptySearchTerm) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		set, err := s.engine.SearchQuery(r.Context(), &query, s.corpus.Current())
		if err != nil {
			s.logger.Warn("search interrupted", zap.String("id", set.ID), zap.Error(err))
		}
		results := cli.NewHTMLResults(set, documentHref)
		data.Results = &results
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("render search page failed", zap.Error(err))
	}
}

func documentHref(ref models.DocumentRef) string {
	return "/api/v1/documents/" + url.PathEscape(ref.ID)
}
