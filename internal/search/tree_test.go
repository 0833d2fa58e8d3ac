package search

import (
	"github.com/hyperjump/midashi/internal/doctree"
)

func el(tag string, children ...*doctree.Node) *doctree.Node {
	return doctree.NewElement(tag).AppendChild(children...)
}

func txt(s string) *doctree.Node {
	return doctree.NewText(s)
}

func textEl(s string) *doctree.Node {
	return el("text", txt(s))
}

var testRules = Rules{
	TextTags:     []string{"text"},
	HeadingTag:   "heading",
	ExcludedTags: []string{"nav"},
	ExcludeAttr:  "data-search-exclude",
}

// fruitDoc builds:
//
//	<doc>
//	  <nav><text>Apple menu</text></nav>
//	  <section><heading>Fruits</heading><text>An apple a day</text><text>Pear</text>
//	    <sub><text>apple pie</text></sub></section>
//	  <section data-search-exclude=""><heading>Hidden</heading><text>apple hidden</text></section>
//	  <section><text>Crab<b>apple</b></text></section>
//	</doc>
func fruitDoc() *doctree.Node {
	hidden := doctree.NewElement("section", doctree.Attr{Name: "data-search-exclude"})
	hidden.AppendChild(el("heading", txt("Hidden")), textEl("apple hidden"))
	return el("doc",
		el("nav", textEl("Apple menu")),
		el("section",
			el("heading", txt("Fruits")),
			textEl("An apple a day"),
			textEl("Pear"),
			el("sub", textEl("apple pie")),
		),
		hidden,
		el("section", el("text", txt("Crab"), el("b", txt("apple")))),
	)
}
