package models

import (
	"fmt"
	"strings"
)

// SearchQuery represents a search request with optional per-request mode overrides.
type SearchQuery struct {
	Query       string      `json:"query"`
	Granularity Granularity `json:"granularity,omitempty"`
	Traversal   Traversal   `json:"traversal,omitempty"`
	Grouping    Grouping    `json:"grouping,omitempty"`
}

// Validate checks the query has a non-blank term and known mode names.
// Returns ErrEmptySearchTerm (wrapped) when the term is blank.
func (q *SearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("query cannot be empty: %w", ErrEmptySearchTerm)
	}
	if _, err := ParseGranularity(string(q.Granularity)); err != nil {
		return err
	}
	if _, err := ParseTraversal(string(q.Traversal)); err != nil {
		return err
	}
	if _, err := ParseGrouping(string(q.Grouping)); err != nil {
		return err
	}
	return nil
}

// NormalizeTerm trims and lower-cases a raw search term.
func NormalizeTerm(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
