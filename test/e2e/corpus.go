// Package e2e provides end-to-end tests over a generated on-disk corpus and multiple queries.
package e2e

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/midashi/internal/models"
)

// NavPhrase appears in the navigation block of every generated document and nowhere else.
const NavPhrase = "sitemap"

// E2EDocument is one generated document of the E2E corpus.
type E2EDocument struct {
	Path    string
	Folder  string
	Title   string
	Content string
}

// QueryTestCase defines a query and the exact documents, in corpus order, that must match it.
type QueryTestCase struct {
	Query         string
	ExpectedPaths []string
	Description   string
}

// Corpus holds the generated documents, the folders file location and query test cases.
type Corpus struct {
	Location     string
	Documents    []E2EDocument
	TestCases    []QueryTestCase
	TotalDocs    int
	TotalQueries int
}

var topics = []struct {
	title   string
	content string
}{
	{"Brewing Tea", "Green tea is steeped at low temperature. Black tea wants boiling water."},
	{"Sourdough Starter", "Feed the starter with flour and water every day. A ripe starter doubles in size."},
	{"Pruning Roses", "Prune roses in late winter. Cut above an outward facing bud."},
	{"Bicycle Chains", "Clean the chain before oiling it. A worn chain stretches and skips."},
	{"Knife Sharpening", "Hold the blade at a steady angle on the whetstone. Finish on a leather strop."},
	{"Composting", "Mix green and brown material. Turn the compost pile to let air in."},
	{"Tea Ceremony", "The host whisks matcha in front of the guests. Tea utensils are cleaned in silence."},
	{"Winter Cycling", "Studded tyres grip on ice. Wipe the chain after riding on salted roads."},
	{"Bread Scoring", "Score the dough with a razor just before baking. Steam keeps the crust soft at first."},
	{"Houseplants", "Most houseplants die from too much water. Check the soil before watering."},
	{"Fermented Vegetables", "Salt draws water out of cabbage. Keep the vegetables under the brine."},
	{"Camp Coffee", "Boil water over the fire and let the grounds settle. Pour slowly to keep the grounds back."},
}

// BuildCorpus writes one XML document per topic into each of two folders under dir, plus a
// folders.json listing them folder by folder. Query cases are derived from the visible
// text of the documents so they list every expected match.
func BuildCorpus(dir string) (*Corpus, error) {
	folders := []models.Folder{{ID: "guides"}, {ID: "reference"}}
	var docs []E2EDocument
	for fi := range folders {
		sub := filepath.Join(dir, folders[fi].ID)
		if err := os.MkdirAll(sub, 0755); err != nil {
			return nil, err
		}
		for i, t := range topics {
			name := fmt.Sprintf("%02d.xml", i+1)
			d := E2EDocument{
				Path:    filepath.Join(sub, name),
				Folder:  folders[fi].ID,
				Title:   fmt.Sprintf("%s (%s)", t.title, folders[fi].ID),
				Content: t.content,
			}
			if err := os.WriteFile(d.Path, []byte(documentXML(d)), 0644); err != nil {
				return nil, err
			}
			folders[fi].Files = append(folders[fi].Files, filepath.Join(folders[fi].ID, name))
			docs = append(docs, d)
		}
	}

	location := filepath.Join(dir, "folders.json")
	data, err := json.MarshalIndent(folders, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(location, data, 0644); err != nil {
		return nil, err
	}

	cases := buildQueryTestCases(docs)
	return &Corpus{
		Location:     location,
		Documents:    docs,
		TestCases:    cases,
		TotalDocs:    len(docs),
		TotalQueries: len(cases),
	}, nil
}

func documentXML(d E2EDocument) string {
	var b strings.Builder
	b.WriteString("<manual>\n")
	fmt.Fprintf(&b, "  <nav><text>%s: %s</text></nav>\n", NavPhrase, html.EscapeString(d.Title))
	b.WriteString("  <section>\n")
	fmt.Fprintf(&b, "    <heading>%s</heading>\n", html.EscapeString(d.Title))
	for _, sentence := range strings.SplitAfter(d.Content, ". ") {
		fmt.Fprintf(&b, "    <text>%s</text>\n", html.EscapeString(strings.TrimSpace(sentence)))
	}
	b.WriteString("  </section>\n</manual>\n")
	return b.String()
}

func buildQueryTestCases(docs []E2EDocument) []QueryTestCase {
	queries := []string{
		"tea", "chain", "water", "starter", "STEAM", "grounds", "roses", "salt",
		"before", "whetstone", "ice", "nonexistent phrase",
	}
	cases := make([]QueryTestCase, 0, len(queries))
	for _, q := range queries {
		var expected []string
		for _, d := range docs {
			if containsFold(d.Content, q) {
				expected = append(expected, d.Path)
			}
		}
		cases = append(cases, QueryTestCase{
			Query:         q,
			ExpectedPaths: expected,
			Description:   fmt.Sprintf("query %q matches %d documents", q, len(expected)),
		})
	}
	return cases
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
