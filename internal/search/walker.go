package search

import (
	"iter"
	"strings"

	"github.com/hyperjump/midashi/internal/doctree"
	"github.com/hyperjump/midashi/internal/models"
)

// Candidate is a matching node as found by the walker, before highlighting.
type Candidate struct {
	Node       *doctree.Node
	Text       string
	Heading    string
	HasHeading bool
}

// Walker traverses a document tree depth-first and yields matching nodes.
type Walker struct {
	Matcher   Matcher
	Traversal models.Traversal
}

// Walk returns the matches for term under root in document order. The sequence is lazy;
// stopping iteration stops the traversal. term must already be lower-cased.
func (w Walker) Walk(root *doctree.Node, term string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		if root == nil || term == "" {
			return
		}
		var idx *textIndex
		if w.Matcher.Granularity == models.GranularitySubtree {
			idx = newTextIndex(root, w.Matcher.Rules.Excluded)
		}
		w.walk(root, term, idx, yield)
	}
}

func (w Walker) walk(n *doctree.Node, term string, idx *textIndex, yield func(Candidate) bool) bool {
	if w.Matcher.Rules.Excluded(n) {
		return true
	}
	text, ok := w.match(n, term, idx)
	if ok {
		heading, hasHeading := w.heading(n)
		if !yield(Candidate{Node: n, Text: text, Heading: heading, HasHeading: hasHeading}) {
			return false
		}
		if w.Traversal == models.TraversalFirst {
			return true
		}
	}
	// A descendant's subtree text is a slice of n's, so it cannot hold what n lacks.
	if !ok && idx != nil {
		return true
	}
	for _, c := range n.Children {
		if !w.walk(c, term, idx, yield) {
			return false
		}
	}
	return true
}

func (w Walker) match(n *doctree.Node, term string, idx *textIndex) (string, bool) {
	if idx != nil {
		return idx.match(n, term)
	}
	return w.Matcher.match(n, term)
}

// textIndex holds the text of a whole tree once, in original and lower-cased form, with
// each node's range in both. Subtree content becomes a substring instead of a rebuild.
type textIndex struct {
	text   string
	lower  string
	ranges map[*doctree.Node]textRange
}

type textRange struct {
	start, end           int
	lowerStart, lowerEnd int
}

// newTextIndex concatenates the text of root in document order, leaving out subtrees for
// which skip returns true (they get no range).
func newTextIndex(root *doctree.Node, skip func(*doctree.Node) bool) *textIndex {
	var text, lower strings.Builder
	ranges := make(map[*doctree.Node]textRange)
	var visit func(*doctree.Node)
	visit = func(n *doctree.Node) {
		if skip(n) {
			return
		}
		r := textRange{start: text.Len(), lowerStart: lower.Len()}
		if n.Type == doctree.TextNode {
			text.WriteString(n.Data)
			lower.WriteString(strings.ToLower(n.Data))
		}
		for _, c := range n.Children {
			visit(c)
		}
		r.end, r.lowerEnd = text.Len(), lower.Len()
		ranges[n] = r
	}
	visit(root)
	return &textIndex{text: text.String(), lower: lower.String(), ranges: ranges}
}

func (x *textIndex) match(n *doctree.Node, term string) (string, bool) {
	r, ok := x.ranges[n]
	if !ok || !strings.Contains(x.lower[r.lowerStart:r.lowerEnd], term) {
		return "", false
	}
	return x.text[r.start:r.end], true
}

// heading returns the text of the first heading element among n's siblings (n included).
func (w Walker) heading(n *doctree.Node) (string, bool) {
	tag := w.Matcher.Rules.HeadingTag
	if tag == "" || n.Parent == nil || n.Parent.Type != doctree.ElementNode {
		return "", false
	}
	for _, c := range n.Parent.Children {
		if c.IsElement(tag) && !w.Matcher.Rules.Excluded(c) {
			return strings.TrimSpace(c.TextContent(w.Matcher.Rules.Excluded)), true
		}
	}
	return "", false
}
