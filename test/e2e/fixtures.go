package e2e

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"

	"github.com/xuri/excelize/v2"
)

// SupportedFileExtensions lists the formats written by WriteMinimalFile. PDF is covered by
// the extract package tests; no minimal PDF with extractable text is generated here.
var SupportedFileExtensions = []string{
	".xml", ".html", ".md", ".txt", ".xlsx", ".docx", ".pptx", ".odt", ".odp", ".ods",
}

const odfHeader = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" xmlns:draw="urn:oasis:names:tc:opendocument:xmlns:drawing:1.0" xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0"><office:body>`

const odfFooter = `</office:body></office:document-content>`

// WriteMinimalFile returns the bytes of a minimal file of the given extension holding one
// heading and one paragraph of text.
func WriteMinimalFile(ext, heading, text string) ([]byte, error) {
	switch ext {
	case ".xml":
		return fmt.Appendf(nil, "<doc><section><heading>%s</heading><text>%s</text></section></doc>",
			html.EscapeString(heading), html.EscapeString(text)), nil
	case ".html":
		return fmt.Appendf(nil, "<html><body><h1>%s</h1><p>%s</p><script>var x = %q;</script></body></html>",
			html.EscapeString(heading), html.EscapeString(text), text), nil
	case ".md":
		return fmt.Appendf(nil, "# %s\n\n%s\n", heading, text), nil
	case ".txt":
		return fmt.Appendf(nil, "%s\n\n%s\n", heading, text), nil
	case ".xlsx":
		return minimalXlsx(heading, text)
	case ".docx":
		return minimalZip(map[string]string{
			"word/document.xml": fmt.Sprintf(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+
				`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>%s</w:t></w:r></w:p>`+
				`<w:p><w:r><w:t>%s</w:t></w:r></w:p></w:body></w:document>`, html.EscapeString(heading), html.EscapeString(text)),
		})
	case ".pptx":
		return minimalZip(map[string]string{
			"ppt/slides/slide1.xml": fmt.Sprintf(`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
				`<p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>%s</a:t></a:r></a:p><a:p><a:r><a:t>%s</a:t></a:r></a:p>`+
				`</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`, html.EscapeString(heading), html.EscapeString(text)),
		})
	case ".odt":
		return minimalZip(map[string]string{
			"content.xml": odfHeader + fmt.Sprintf(`<office:text><text:h text:outline-level="1">%s</text:h><text:p>%s</text:p></office:text>`,
				html.EscapeString(heading), html.EscapeString(text)) + odfFooter,
		})
	case ".odp":
		return minimalZip(map[string]string{
			"content.xml": odfHeader + fmt.Sprintf(`<office:presentation><draw:page><draw:frame><draw:text-box><text:p>%s</text:p><text:p>%s</text:p></draw:text-box></draw:frame></draw:page></office:presentation>`,
				html.EscapeString(heading), html.EscapeString(text)) + odfFooter,
		})
	case ".ods":
		return minimalZip(map[string]string{
			"content.xml": odfHeader + fmt.Sprintf(`<office:spreadsheet><table:table table:name="Sheet1">`+
				`<table:table-row><table:table-cell><text:p>%s</text:p></table:table-cell></table:table-row>`+
				`<table:table-row><table:table-cell><text:p>%s</text:p></table:table-cell></table:table-row>`+
				`</table:table></office:spreadsheet>`, html.EscapeString(heading), html.EscapeString(text)) + odfFooter,
		})
	default:
		return nil, fmt.Errorf("unsupported extension %q", ext)
	}
}

// minimalXlsx writes heading and text into the first two rows of the default sheet.
func minimalXlsx(heading, text string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellValue("Sheet1", "A1", heading); err != nil {
		return nil, err
	}
	if err := f.SetCellValue("Sheet1", "A2", text); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// minimalZip packs parts into a zip package the way office suites store documents.
func minimalZip(parts map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(body)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
