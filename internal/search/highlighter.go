package search

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/midashi/internal/models"
)

// Marker wraps highlighted spans. Escape, when set, is applied to every piece of
// document text (inside and outside spans) but never to Open or Close.
// Separator joins excerpts merged into one block.
type Marker struct {
	Open      string
	Close     string
	Escape    func(string) string
	Separator string
	// strip, when set, removes the delimiters and undoes Escape in one pass.
	strip func(string) string
}

// HTMLMarker renders spans as yellow-background spans and escapes document text for HTML.
var HTMLMarker = Marker{
	Open:      `<span style="background-color: yellow;">`,
	Close:     `</span>`,
	Escape:    html.EscapeString,
	Separator: "<br>\n",
}

// TextMarker renders spans between double brackets. Backslashes and brackets already in
// the document text are backslash-escaped, so "[[" and "]]" only ever come from markers.
var TextMarker = Marker{
	Open:      "[[",
	Close:     "]]",
	Escape:    escapeBrackets,
	Separator: "\n",
	strip:     stripBrackets,
}

var bracketEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)

func escapeBrackets(s string) string {
	if !strings.ContainsAny(s, `\[]`) {
		return s
	}
	return bracketEscaper.Replace(s)
}

// stripBrackets drops unescaped "[[" and "]]" and unescapes everything else.
func stripBrackets(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			b.WriteByte(s[i+1])
			i += 2
		case strings.HasPrefix(s[i:], "[[") || strings.HasPrefix(s[i:], "]]"):
			i += 2
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

// Highlight marks every occurrence of term in text using HTMLMarker.
func Highlight(text, term string) string {
	return HTMLMarker.Highlight(text, term)
}

// Highlight marks every case-insensitive, non-overlapping occurrence of term in text.
// An empty term or text returns text unchanged.
func (m Marker) Highlight(text, term string) string {
	if text == "" || term == "" {
		return text
	}
	return m.Render(text, FindSpans(text, term))
}

// Render writes text with each span wrapped in Open/Close, in a single pass.
// Spans must be ascending and non-overlapping; out-of-order or out-of-range spans are ignored.
func (m Marker) Render(text string, spans []models.Span) string {
	var b strings.Builder
	b.Grow(len(text) + len(spans)*(len(m.Open)+len(m.Close)))
	last := 0
	for _, s := range spans {
		if s.Start < last || s.End <= s.Start || s.End > len(text) {
			continue
		}
		b.WriteString(m.escape(text[last:s.Start]))
		b.WriteString(m.Open)
		b.WriteString(m.escape(text[s.Start:s.End]))
		b.WriteString(m.Close)
		last = s.End
	}
	b.WriteString(m.escape(text[last:]))
	return b.String()
}

// Strip removes Open and Close delimiters from s. TextMarker also undoes its escaping and
// returns the original text; for other markers the result is still escaped.
func (m Marker) Strip(s string) string {
	if m.strip != nil {
		return m.strip(s)
	}
	if m.Open != "" {
		s = strings.ReplaceAll(s, m.Open, "")
	}
	if m.Close != "" {
		s = strings.ReplaceAll(s, m.Close, "")
	}
	return s
}

func (m Marker) escape(s string) string {
	if m.Escape == nil {
		return s
	}
	return m.Escape(s)
}

func (m Marker) separator() string {
	if m.Separator == "" {
		return "\n"
	}
	return m.Separator
}

// FindSpans returns the byte ranges of every case-insensitive occurrence of term in text,
// scanning left to right and resuming after each match. Comparison lower-cases rune by
// rune while decoding in place, so offsets always index the original text and nothing
// proportional to text is allocated.
func FindSpans(text, term string) []models.Span {
	if text == "" || term == "" {
		return nil
	}
	first, _ := utf8.DecodeRuneInString(term)
	first = unicode.ToLower(first)

	var spans []models.Span
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.ToLower(r) == first {
			if end, ok := foldPrefixAt(text, i, term); ok {
				spans = append(spans, models.Span{Start: i, End: end})
				i = end
				continue
			}
		}
		i += size
	}
	return spans
}

// foldPrefixAt reports whether term occurs in text at byte offset i, comparing rune-wise
// lower-cased runes, and returns the offset just past the occurrence.
func foldPrefixAt(text string, i int, term string) (int, bool) {
	for _, tr := range term {
		if i >= len(text) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.ToLower(r) != unicode.ToLower(tr) {
			return 0, false
		}
		i += size
	}
	return i, true
}
