package extract

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hyperjump/midashi/internal/doctree"
)

const pptxSlidePathPrefix = "ppt/slides/slide"

var pptxRuns = inline{
	breaks: map[string]string{"br": "\n"},
	skip:   []string{"pPr", "rPr", "endParaRPr"},
}

// extractPPTX emits one <section> per slide, headed "Slide N", with one <text> per
// non-empty <a:p>. Slides are ordered by number, not by their place in the zip.
func extractPPTX(content []byte) (*doctree.Node, error) {
	zr, err := openZip(content)
	if err != nil {
		return nil, err
	}
	type slide struct {
		num  int
		name string
	}
	var slides []slide
	for _, f := range zr.File {
		rest, ok := strings.CutPrefix(f.Name, pptxSlidePathPrefix)
		if !ok || !strings.HasSuffix(rest, ".xml") {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(rest, ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: num, name: f.Name})
	}
	slices.SortFunc(slides, func(a, b slide) int { return cmp.Compare(a.num, b.num) })

	root := doctree.NewElement(TagDocument)
	for _, sl := range slides {
		tree, err := zipPart(zr, sl.name)
		if err != nil {
			return nil, err
		}
		s := section(fmt.Sprintf("Slide %d", sl.num))
		for _, p := range descendants(tree, "p") {
			if t := pptxRuns.text(p); t != "" {
				s.AppendChild(textElement(t))
			}
		}
		root.AppendChild(s)
	}
	return root, nil
}
