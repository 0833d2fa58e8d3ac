package extract

import (
	"bytes"
	"strings"

	"github.com/hyperjump/midashi/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// extractMarkdown nests a <section> per heading (deeper levels inside shallower ones),
// each starting with its <heading>, followed by one <text> per block.
func extractMarkdown(content []byte) (*doctree.Node, error) {
	src := []byte(ValidUTF8(content))
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	o := newOutline()
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			o.heading(h.Level, blockText(h, src))
			continue
		}
		o.text(blockText(n, src))
	}
	return o.root, nil
}

// blockText returns the visible text of a block: inline text for paragraphs and headings,
// raw lines for code and HTML blocks, children joined by newlines for containers.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
			return
		case *ast.String:
			buf.Write(t.Value)
			return
		}
		if n.Type() == ast.TypeBlock && !n.HasChildren() {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
			if c.Type() == ast.TypeBlock && c.NextSibling() != nil {
				buf.WriteByte('\n')
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
