package search

import (
	"iter"
	"strings"

	"github.com/hyperjump/midashi/internal/models"
)

// Aggregator groups one document's matches and renders them into excerpts.
type Aggregator struct {
	Grouping models.Grouping
}

// Aggregate collects matches for doc in the order received. A node path seen twice keeps
// its first match only. Returns nil when there are no matches.
func (a Aggregator) Aggregate(doc models.DocumentRef, matches iter.Seq[*models.Match]) *models.ResultGroup {
	var group *models.ResultGroup
	seen := make(map[string]struct{})
	for m := range matches {
		if _, dup := seen[m.Path]; dup {
			continue
		}
		seen[m.Path] = struct{}{}
		if group == nil {
			group = &models.ResultGroup{Document: doc}
		}
		group.Matches = append(group.Matches, m)
	}
	return group
}

// Decorate fills group.Excerpts by highlighting each match with marker.
// Flat grouping yields one excerpt per match; merge yields a single excerpt.
func (a Aggregator) Decorate(group *models.ResultGroup, marker Marker) {
	if group == nil {
		return
	}
	excerpts := make([]models.Excerpt, 0, len(group.Matches))
	for _, m := range group.Matches {
		excerpts = append(excerpts, models.Excerpt{
			Heading:    m.Heading,
			HasHeading: m.HasHeading,
			Text:       marker.Render(m.Text, m.Spans),
		})
	}
	if a.Grouping != models.GroupingMerge {
		group.Excerpts = excerpts
		return
	}

	parts := make([]string, 0, len(excerpts))
	for _, e := range excerpts {
		if e.HasHeading && e.Heading != "" {
			parts = append(parts, marker.escape(e.Heading)+": "+e.Text)
			continue
		}
		parts = append(parts, e.Text)
	}
	group.Excerpts = []models.Excerpt{{Text: strings.Join(parts, marker.separator())}}
}
