package search

import (
	"slices"
	"strings"

	"github.com/hyperjump/midashi/internal/doctree"
	"github.com/hyperjump/midashi/internal/models"
)

// Rules names the tags that carry meaning for search. Everything else in a document
// is structure only.
type Rules struct {
	// TextTags are the text-bearing elements tested in leaf granularity. When empty,
	// bare text nodes are tested instead.
	TextTags []string
	// HeadingTag labels the matches found among its siblings.
	HeadingTag string
	// ExcludedTags root subtrees that are never searched (navigation, menus).
	ExcludedTags []string
	// ExcludeAttr, when set, excludes any element carrying an attribute of that name.
	ExcludeAttr string
}

// Excluded reports whether the subtree rooted at n must be skipped.
func (r Rules) Excluded(n *doctree.Node) bool {
	if n == nil || n.Type != doctree.ElementNode {
		return false
	}
	if slices.Contains(r.ExcludedTags, n.Tag) {
		return true
	}
	if r.ExcludeAttr != "" {
		if _, ok := n.Attr(r.ExcludeAttr); ok {
			return true
		}
	}
	return false
}

func (r Rules) isTextTag(tag string) bool {
	return slices.Contains(r.TextTags, tag)
}

// Matcher decides whether a single node matches a lower-cased term.
type Matcher struct {
	Granularity models.Granularity
	Rules       Rules
}

// Testable reports whether n is a unit the matcher compares at its granularity.
func (m Matcher) Testable(n *doctree.Node) bool {
	if n == nil || m.Rules.Excluded(n) {
		return false
	}
	if m.Granularity == models.GranularitySubtree {
		return true
	}
	if len(m.Rules.TextTags) == 0 {
		return n.Type == doctree.TextNode
	}
	return n.Type == doctree.ElementNode && m.Rules.isTextTag(n.Tag)
}

// Content returns the text n is compared on: its value for text nodes, otherwise the
// concatenated text of its subtree without excluded parts.
func (m Matcher) Content(n *doctree.Node) string {
	return n.TextContent(m.Rules.Excluded)
}

// Match reports whether n is testable and its content contains term.
// term must already be lower-cased; an empty term never matches.
func (m Matcher) Match(n *doctree.Node, term string) bool {
	_, ok := m.match(n, term)
	return ok
}

func (m Matcher) match(n *doctree.Node, term string) (string, bool) {
	if term == "" || !m.Testable(n) {
		return "", false
	}
	content := m.Content(n)
	return content, strings.Contains(strings.ToLower(content), term)
}
