// Package cli renders search results for the command line and the browser.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/midashi/internal/models"
	"github.com/hyperjump/midashi/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
	// OutputHTML is an HTML fragment with highlighted excerpts.
	OutputHTML SearchOutputFormat = "html"
)

// ParseOutputFormat validates a format name; the empty string means text.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(s); f {
	case "":
		return OutputText, nil
	case OutputText, OutputJSON, OutputHTML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or html)", s)
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, set *models.SearchResultSet, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	case OutputHTML:
		return WriteHTMLResults(w, set, func(ref models.DocumentRef) string { return ref.Path })
	default:
		writeSearchResultsText(w, set)
		return nil
	}
}

// StatusMessage summarizes a result set in one line. Each status reads differently so a
// search that found nothing is never confused with one that could not run.
func StatusMessage(set *models.SearchResultSet) string {
	switch set.Status {
	case models.StatusEmptyTerm:
		return "Enter a search term."
	case models.StatusNoCorpus:
		return "No documents available to search."
	case models.StatusCancelled:
		return fmt.Sprintf("Search cancelled after %d documents; results are incomplete.", set.Searched)
	}
	if len(set.Groups) == 0 {
		return fmt.Sprintf("No matches for %q in %d documents.", utils.Truncate(set.Query, 80), set.Searched)
	}
	return fmt.Sprintf("Found %d matches in %d of %d documents (%dms)",
		set.TotalMatches(), len(set.Groups), set.Searched, set.QueryTime)
}

func writeSearchResultsText(w io.Writer, set *models.SearchResultSet) {
	fmt.Fprintf(w, "\n%s\n", StatusMessage(set))
	if set.Skipped > 0 {
		fmt.Fprintf(w, "(%d documents could not be loaded)\n", set.Skipped)
	}
	fmt.Fprintln(w)
	for _, g := range set.Groups {
		writeOneGroup(w, g)
	}
}

func writeOneGroup(w io.Writer, g *models.ResultGroup) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "File: %s", g.Document.Path)
	if g.Document.Group != "" {
		fmt.Fprintf(w, " [%s]", g.Document.Group)
	}
	fmt.Fprintln(w)
	for _, ex := range g.Excerpts {
		fmt.Fprintln(w)
		if ex.HasHeading {
			fmt.Fprintf(w, "%s:\n", ex.Heading)
		}
		fmt.Fprintln(w, ex.Text)
	}
	fmt.Fprintln(w)
}
