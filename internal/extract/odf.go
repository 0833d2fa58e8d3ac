package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/midashi/internal/doctree"
)

// odfContentPath holds the body of every OpenDocument package.
const odfContentPath = "content.xml"

// odfRuns reads <text:p> and <text:h>: spans are inlined, <text:s text:c="N"/> is N spaces.
var odfRuns = inline{
	breaks: map[string]string{"s": " ", "tab": "\t", "line-break": "\n"},
	skip:   []string{"note", "annotation"},
	repeat: "c",
}

func odfContent(content []byte) (*doctree.Node, error) {
	zr, err := openZip(content)
	if err != nil {
		return nil, err
	}
	return zipPart(zr, odfContentPath)
}

// odfParagraphs returns the <text:p> and <text:h> elements under n in document order.
// Speaker notes are not part of a slide.
func odfParagraphs(n *doctree.Node) []*doctree.Node {
	var out []*doctree.Node
	for _, c := range n.Children {
		if c.IsElement("notes") {
			continue
		}
		if c.IsElement("p") || c.IsElement("h") {
			out = append(out, c)
			continue
		}
		out = append(out, odfParagraphs(c)...)
	}
	return out
}

// extractODT emits one <text> per paragraph, nesting sections at each <text:h> by its
// outline level.
func extractODT(content []byte) (*doctree.Node, error) {
	doc, err := odfContent(content)
	if err != nil {
		return nil, err
	}
	o := newOutline()
	for _, p := range odfParagraphs(doc) {
		s := odfRuns.text(p)
		if s == "" {
			continue
		}
		if p.IsElement("h") {
			level := 1
			if v, ok := p.Attr("outline-level"); ok {
				if l, err := strconv.Atoi(v); err == nil && l > 0 {
					level = l
				}
			}
			o.heading(level, s)
			continue
		}
		o.text(s)
	}
	return o.root, nil
}

// extractODP emits one <section> per <draw:page>, headed "Slide N", with one <text> per
// non-empty paragraph.
func extractODP(content []byte) (*doctree.Node, error) {
	doc, err := odfContent(content)
	if err != nil {
		return nil, err
	}
	root := doctree.NewElement(TagDocument)
	for i, page := range descendants(doc, "page") {
		s := section(fmt.Sprintf("Slide %d", i+1))
		for _, p := range odfParagraphs(page) {
			if t := odfRuns.text(p); t != "" {
				s.AppendChild(textElement(t))
			}
		}
		root.AppendChild(s)
	}
	return root, nil
}

// extractODS emits one <section> per <table:table>, headed by the sheet name, with one
// <text> per non-empty row (cells joined by tabs), like extractExcel.
func extractODS(content []byte) (*doctree.Node, error) {
	doc, err := odfContent(content)
	if err != nil {
		return nil, err
	}
	root := doctree.NewElement(TagDocument)
	for i, table := range descendants(doc, "table") {
		name, ok := table.Attr("name")
		if !ok || name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		s := section(name)
		for _, row := range descendants(table, "table-row") {
			var cells []string
			for _, cell := range descendants(row, "table-cell") {
				var lines []string
				for _, p := range odfParagraphs(cell) {
					lines = append(lines, odfRuns.text(p))
				}
				cells = append(cells, strings.Join(lines, " "))
			}
			if line := strings.TrimSpace(strings.Join(cells, "\t")); line != "" {
				s.AppendChild(textElement(line))
			}
		}
		root.AppendChild(s)
	}
	return root, nil
}
