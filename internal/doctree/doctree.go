// Package doctree defines the element/text node tree that documents are searched in.
package doctree

import (
	"strconv"
	"strings"
)

// NodeType distinguishes elements from text.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Attr is a named attribute on an element.
type Attr struct {
	Name  string
	Value string
}

// Node is a position in a document tree. Elements carry a tag, attributes and children;
// text nodes carry Data and never have children.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []Attr
	Data     string
	Parent   *Node
	Children []*Node
}

// NewElement returns an element with the given tag and attributes.
func NewElement(tag string, attrs ...Attr) *Node {
	return &Node{Type: ElementNode, Tag: tag, Attrs: attrs}
}

// NewText returns a text node.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// AppendChild adds c as the last child of n and returns n for chaining.
func (n *Node) AppendChild(c ...*Node) *Node {
	for _, child := range c {
		child.Parent = n
		n.Children = append(n.Children, child)
	}
	return n
}

// Attr returns the value of the named attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// IsElement reports whether n is an element with the given tag.
func (n *Node) IsElement(tag string) bool {
	return n != nil && n.Type == ElementNode && n.Tag == tag
}

// TextContent concatenates the text of n and its descendants in document order.
// Subtrees for which skip returns true contribute nothing; skip may be nil.
func (n *Node) TextContent(skip func(*Node) bool) string {
	if n.Type == TextNode {
		return n.Data
	}
	var buf strings.Builder
	var extract func(*Node)
	extract = func(n *Node) {
		if skip != nil && skip(n) {
			return
		}
		if n.Type == TextNode {
			buf.WriteString(n.Data)
			return
		}
		for _, c := range n.Children {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

// Path returns the positional path of n from the root, e.g. "/doc[1]/section[2]/text()[1]".
// Positions count same-kind siblings and are 1-based. Unique within one tree.
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent {
		parts = append(parts, cur.step())
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(parts[i])
	}
	return b.String()
}

func (n *Node) step() string {
	name := n.Tag
	if n.Type == TextNode {
		name = "text()"
	}
	pos := 1
	if n.Parent != nil {
		for _, sib := range n.Parent.Children {
			if sib == n {
				break
			}
			if sib.Type == n.Type && sib.Tag == n.Tag {
				pos++
			}
		}
	}
	return name + "[" + strconv.Itoa(pos) + "]"
}

// Walk calls fn for n and its descendants in depth-first pre-order.
// Returning false from fn skips that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
