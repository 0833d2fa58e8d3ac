package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hyperjump/midashi/internal/doctree"
	"golang.org/x/net/html"
)

// extractHTML builds a tree from an HTML document rooted at <html>. Comments, doctype,
// script and style are dropped.
func extractHTML(content []byte) (*doctree.Node, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return convertHTML(c), nil
		}
	}
	return nil, fmt.Errorf("parse html: no root element")
}

func convertHTML(n *html.Node) *doctree.Node {
	attrs := make([]doctree.Attr, 0, len(n.Attr))
	for _, a := range n.Attr {
		attrs = append(attrs, doctree.Attr{Name: a.Key, Value: a.Val})
	}
	el := doctree.NewElement(n.Data, attrs...)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			switch c.Data {
			case "script", "style", "noscript", "template":
				continue
			}
			el.AppendChild(convertHTML(c))
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" && strings.ContainsAny(c.Data, "\r\n") {
				continue
			}
			el.AppendChild(doctree.NewText(c.Data))
		}
	}
	return el
}
