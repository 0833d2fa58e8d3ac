package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/hyperjump/midashi/internal/doctree"
)

// openZip opens an OOXML or OpenDocument package.
func openZip(content []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("not a zip package: %w", err)
	}
	return zr, nil
}

// zipPart parses the XML part called name into a tree.
func zipPart(zr *zip.Reader, name string) (*doctree.Node, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		root, err := extractXML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return root, nil
	}
	return nil, fmt.Errorf("%s not found", name)
}

// descendants returns the elements under n named tag, in document order, without looking
// inside a match.
func descendants(n *doctree.Node, tag string) []*doctree.Node {
	var out []*doctree.Node
	for _, c := range n.Children {
		if c.IsElement(tag) {
			out = append(out, c)
			continue
		}
		out = append(out, descendants(c, tag)...)
	}
	return out
}

// inline turns the runs of one paragraph into text. Elements named in breaks stand for
// the given string; elements named in skip contribute nothing.
type inline struct {
	breaks map[string]string
	skip   []string
	// repeat names the attribute that multiplies a break (ODF <text:s text:c="3"/>).
	repeat string
}

func (in inline) text(n *doctree.Node) string {
	var b strings.Builder
	var walk func(*doctree.Node)
	walk = func(n *doctree.Node) {
		if n.Type == doctree.TextNode {
			b.WriteString(n.Data)
			return
		}
		if slices.Contains(in.skip, n.Tag) {
			return
		}
		if s, ok := in.breaks[n.Tag]; ok {
			count := 1
			if v, ok := n.Attr(in.repeat); ok && in.repeat != "" {
				if c, err := strconv.Atoi(v); err == nil && c > 1 {
					count = c
				}
			}
			b.WriteString(strings.Repeat(s, count))
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// outline nests <section> elements by heading level under a <document> root, the way
// headings nest in word processors and Markdown.
type outline struct {
	root  *doctree.Node
	stack []outlineEntry
}

type outlineEntry struct {
	node  *doctree.Node
	level int
}

func newOutline() *outline {
	root := doctree.NewElement(TagDocument)
	return &outline{root: root, stack: []outlineEntry{{node: root}}}
}

// heading closes every open section at level or deeper and opens a new one.
func (o *outline) heading(level int, title string) {
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	s := section(title)
	o.stack[len(o.stack)-1].node.AppendChild(s)
	o.stack = append(o.stack, outlineEntry{node: s, level: level})
}

// text appends a <text> to the innermost open section; blank text is dropped.
func (o *outline) text(s string) {
	if s = strings.TrimSpace(s); s != "" {
		o.stack[len(o.stack)-1].node.AppendChild(textElement(s))
	}
}
