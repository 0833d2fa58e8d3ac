// Package extract turns document bytes of various formats into a doctree.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/midashi/internal/doctree"
	"github.com/hyperjump/midashi/internal/models"
)

// Tag vocabulary produced by the format converters (everything but XML, whose tags are
// kept as written).
const (
	TagDocument = "document"
	TagSection  = "section"
	TagHeading  = "heading"
	TagText     = "text"
)

// Extractor builds document trees from files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its tree.
func (e *Extractor) Extract(path string) (*doctree.Node, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read file: %v", models.ErrDocumentLoadFailed, err)
	}
	return e.ExtractBytes(content, filepath.Ext(path))
}

// ExtractBytes parses content based on the given extension (with leading dot).
// XML, and any unknown extension, is parsed as XML. Parse failures wrap
// models.ErrMalformedDocument.
func (e *Extractor) ExtractBytes(content []byte, ext string) (*doctree.Node, error) {
	var (
		root *doctree.Node
		err  error
	)
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		root, err = extractHTML(content)
	case ".md", ".markdown":
		root, err = extractMarkdown(content)
	case ".pdf":
		root, err = extractPDF(content)
	case ".xlsx":
		root, err = extractExcel(content)
	case ".docx":
		root, err = extractDOCX(content)
	case ".pptx":
		root, err = extractPPTX(content)
	case ".odt":
		root, err = extractODT(content)
	case ".odp":
		root, err = extractODP(content)
	case ".ods":
		root, err = extractODS(content)
	case ".txt", ".text":
		root, err = extractPlain(content)
	default:
		root, err = extractXML(content)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedDocument, err)
	}
	return root, nil
}

// section returns <section><heading>title</heading></section>.
func section(title string) *doctree.Node {
	s := doctree.NewElement(TagSection)
	s.AppendChild(doctree.NewElement(TagHeading).AppendChild(doctree.NewText(title)))
	return s
}

// textElement returns <text>s</text>.
func textElement(s string) *doctree.Node {
	return doctree.NewElement(TagText).AppendChild(doctree.NewText(s))
}
