package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hyperjump/midashi/internal/doctree"
	"github.com/xuri/excelize/v2"
)

// extractExcel emits one <section> per sheet, headed by the sheet name, with one <text>
// per non-empty row (cells joined by tabs).
func extractExcel(content []byte) (*doctree.Node, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	root := doctree.NewElement(TagDocument)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		s := section(sheet)
		for _, row := range rows {
			if line := strings.TrimSpace(strings.Join(row, "\t")); line != "" {
				s.AppendChild(textElement(line))
			}
		}
		root.AppendChild(s)
	}
	return root, nil
}
