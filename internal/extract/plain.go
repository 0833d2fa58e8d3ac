package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/midashi/internal/doctree"
)

// ValidUTF8 returns content as a string, replacing invalid UTF-8 sequences with the
// replacement character.
func ValidUTF8(content []byte) string {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "\ufffd")
	}
	return string(content)
}

// extractPlain splits plain text into one <text> per blank-line separated paragraph.
func extractPlain(content []byte) (*doctree.Node, error) {
	root := doctree.NewElement(TagDocument)
	normalized := strings.ReplaceAll(ValidUTF8(content), "\r\n", "\n")
	for _, para := range strings.Split(normalized, "\n\n") {
		if p := strings.TrimSpace(para); p != "" {
			root.AppendChild(textElement(p))
		}
	}
	return root, nil
}
