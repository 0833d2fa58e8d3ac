package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hyperjump/midashi/internal/doctree"
	"github.com/ledongthuc/pdf"
)

// extractPDF emits one <section> per non-empty page, headed "Page N".
func extractPDF(content []byte) (*doctree.Node, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	root := doctree.NewElement(TagDocument)
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		s := section(fmt.Sprintf("Page %d", i))
		s.AppendChild(textElement(text))
		root.AppendChild(s)
	}
	return root, nil
}
