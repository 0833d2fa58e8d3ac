package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/midashi/internal/doctree"
	"golang.org/x/net/html/charset"
)

// extractXML builds a tree from an XML document. Tag and attribute names keep their local
// part only. Whitespace-only text spanning lines (indentation) is dropped; adjacent
// character data (text and CDATA) is merged into one text node.
func extractXML(content []byte) (*doctree.Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.CharsetReader = charset.NewReaderLabel

	var root, cur *doctree.Node
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := doctree.NewElement(t.Name.Local, xmlAttrs(t.Attr)...)
			if cur == nil {
				if root != nil {
					return nil, errors.New("parse xml: multiple root elements")
				}
				root = n
			} else {
				cur.AppendChild(n)
			}
			cur = n
		case xml.EndElement:
			if cur != nil {
				cur = cur.Parent
			}
		case xml.CharData:
			if cur == nil {
				continue
			}
			s := string(t)
			if strings.TrimSpace(s) == "" && strings.ContainsAny(s, "\r\n") {
				continue
			}
			if last := lastChild(cur); last != nil && last.Type == doctree.TextNode {
				last.Data += s
				continue
			}
			cur.AppendChild(doctree.NewText(s))
		}
	}
	if root == nil {
		return nil, errors.New("parse xml: no root element")
	}
	return root, nil
}

func xmlAttrs(attrs []xml.Attr) []doctree.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]doctree.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		out = append(out, doctree.Attr{Name: a.Name.Local, Value: a.Value})
	}
	return out
}

func lastChild(n *doctree.Node) *doctree.Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}
