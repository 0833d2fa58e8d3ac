package models

// Span is a half-open byte range [Start, End) inside a match's text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Match is one text-bearing node of a document that contains the search term.
type Match struct {
	Document   DocumentRef `json:"-"`
	Path       string      `json:"path"`
	Tag        string      `json:"tag,omitempty"`
	Heading    string      `json:"heading,omitempty"`
	HasHeading bool        `json:"has_heading"`
	Text       string      `json:"text"`
	Spans      []Span      `json:"spans"`
}

// Excerpt is a display-ready block: optional heading label plus highlighted text.
// Text already carries the highlight markers and is escaped for its target format.
type Excerpt struct {
	Heading    string `json:"heading,omitempty"`
	HasHeading bool   `json:"has_heading"`
	Text       string `json:"text"`
}

// ResultGroup holds every match of one document, in traversal order.
type ResultGroup struct {
	Document DocumentRef `json:"document"`
	Matches  []*Match    `json:"matches"`
	Excerpts []Excerpt   `json:"excerpts"`
}

// SearchStatus tells apart a search that ran from one that could not run.
type SearchStatus string

const (
	// StatusOK means the corpus was searched; Groups may still be empty.
	StatusOK SearchStatus = "ok"
	// StatusEmptyTerm means no term was supplied and nothing was searched.
	StatusEmptyTerm SearchStatus = "empty_term"
	// StatusNoCorpus means there were no documents to search.
	StatusNoCorpus SearchStatus = "no_corpus"
	// StatusCancelled means the search stopped early; Groups holds completed documents only.
	StatusCancelled SearchStatus = "cancelled"
)

// SearchResultSet is the response for a search: one group per matching document,
// in corpus order.
type SearchResultSet struct {
	ID        string         `json:"id"`
	Query     string         `json:"query"`
	Status    SearchStatus   `json:"status"`
	Groups    []*ResultGroup `json:"groups"`
	Searched  int            `json:"searched"`
	Skipped   int            `json:"skipped"`
	QueryTime int64          `json:"query_time_ms"`
}

// TotalMatches returns the number of matches across all groups.
func (s *SearchResultSet) TotalMatches() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Matches)
	}
	return n
}

// Ran reports whether the corpus was actually searched.
func (s *SearchResultSet) Ran() bool {
	return s.Status == StatusOK || s.Status == StatusCancelled
}
