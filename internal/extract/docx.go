package extract

import (
	"archive/zip"
	"strconv"
	"strings"

	"github.com/hyperjump/midashi/internal/doctree"
)

const (
	docxDocumentXMLPath = "word/document.xml"
	contentTypesPath    = "[Content_Types].xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

// docxRuns reads the text of a <w:p>: <w:t> text, tabs and breaks. Field codes and
// deleted revisions are not visible text.
var docxRuns = inline{
	breaks: map[string]string{"tab": "\t", "br": "\n", "cr": "\n"},
	skip:   []string{"instrText", "delText", "pPr", "rPr"},
}

// extractDOCX emits one <text> per non-empty paragraph. Paragraphs styled Title or
// HeadingN open nested sections, as Markdown headings do.
func extractDOCX(content []byte) (*doctree.Node, error) {
	zr, err := openZip(content)
	if err != nil {
		return nil, err
	}
	path := docxMainDocumentPath(zr)
	if path == "" {
		path = docxDocumentXMLPath
	}
	doc, err := zipPart(zr, path)
	if err != nil {
		return nil, err
	}

	o := newOutline()
	for _, p := range descendants(doc, "p") {
		s := docxRuns.text(p)
		if s == "" {
			continue
		}
		if level, ok := docxHeadingLevel(p); ok {
			o.heading(level, s)
			continue
		}
		o.text(s)
	}
	return o.root, nil
}

// docxMainDocumentPath finds the main document part in [Content_Types].xml. Returns ""
// when the package does not declare one.
func docxMainDocumentPath(zr *zip.Reader) string {
	types, err := zipPart(zr, contentTypesPath)
	if err != nil {
		return ""
	}
	for _, o := range descendants(types, "Override") {
		if ct, _ := o.Attr("ContentType"); ct != docxMainContentType {
			continue
		}
		if name, ok := o.Attr("PartName"); ok {
			return strings.TrimPrefix(name, "/")
		}
	}
	return ""
}

// docxHeadingLevel reads <w:pPr><w:pStyle w:val="Heading2"/>. Title counts as level 1.
func docxHeadingLevel(p *doctree.Node) (int, bool) {
	for _, ppr := range p.Children {
		if !ppr.IsElement("pPr") {
			continue
		}
		for _, st := range ppr.Children {
			if !st.IsElement("pStyle") {
				continue
			}
			val, _ := st.Attr("val")
			val = strings.ToLower(strings.ReplaceAll(val, " ", ""))
			if val == "title" {
				return 1, true
			}
			if rest, ok := strings.CutPrefix(val, "heading"); ok {
				if level, err := strconv.Atoi(rest); err == nil && level > 0 {
					return level, true
				}
			}
		}
	}
	return 0, false
}
