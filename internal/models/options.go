package models

import "fmt"

// Granularity selects which nodes are tested against the search term.
type Granularity string

const (
	// GranularityLeaf tests only text-bearing leaves: elements with a text tag, or bare
	// text nodes when no text tags are configured.
	GranularityLeaf Granularity = "leaf"
	// GranularitySubtree tests every element against the text of its whole subtree.
	GranularitySubtree Granularity = "subtree"
)

// Traversal selects whether the walker descends into a node it has already reported.
type Traversal string

const (
	// TraversalFirst reports a matching node and skips its descendants.
	TraversalFirst Traversal = "first"
	// TraversalExhaustive reports a matching node and keeps descending.
	TraversalExhaustive Traversal = "exhaustive"
)

// Grouping selects how a document's matches are turned into excerpts.
type Grouping string

const (
	// GroupingFlat renders one excerpt per match.
	GroupingFlat Grouping = "flat"
	// GroupingMerge renders one excerpt per document holding every match.
	GroupingMerge Grouping = "merge"
)

// ParseGranularity validates s; the empty string yields the zero value.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case "", GranularityLeaf, GranularitySubtree:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q (want leaf or subtree)", s)
}

// ParseTraversal validates s; the empty string yields the zero value.
func ParseTraversal(s string) (Traversal, error) {
	switch t := Traversal(s); t {
	case "", TraversalFirst, TraversalExhaustive:
		return t, nil
	}
	return "", fmt.Errorf("unknown traversal %q (want first or exhaustive)", s)
}

// ParseGrouping validates s; the empty string yields the zero value.
func ParseGrouping(s string) (Grouping, error) {
	switch g := Grouping(s); g {
	case "", GroupingFlat, GroupingMerge:
		return g, nil
	}
	return "", fmt.Errorf("unknown grouping %q (want flat or merge)", s)
}
