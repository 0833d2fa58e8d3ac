package cli

import (
	"html/template"
	"io"

	"github.com/hyperjump/midashi/internal/models"
)

// ResultsTemplate renders a result set as a fragment: a status line, then one block per
// document with a link to the file and its highlighted excerpts. Excerpt text is already
// escaped and marked up by the search engine.
var ResultsTemplate = template.Must(template.New("results").Parse(`<p class="status status-{{.Status}}">{{.Message}}</p>
{{- range .Groups}}
<div class="result">
<strong>File:</strong> <a href="{{.Href}}" target="_blank">{{.Path}}</a> <br>
{{- range .Excerpts}}
{{if .HasHeading}}<strong>{{.Heading}}:</strong><br>{{end}}
{{.Text}}<br><hr>
{{- end}}
</div>
{{- end}}
`))

// HTMLResults is the view model of ResultsTemplate.
type HTMLResults struct {
	Query   string
	Status  models.SearchStatus
	Message string
	Groups  []HTMLGroup
}

// HTMLGroup is one document block.
type HTMLGroup struct {
	Href     string
	Path     string
	Excerpts []HTMLExcerpt
}

// HTMLExcerpt is one highlighted excerpt.
type HTMLExcerpt struct {
	Heading    string
	HasHeading bool
	Text       template.HTML
}

// NewHTMLResults builds the view model of set; href returns the link target of a document.
// Excerpts must have been rendered with an HTML marker.
func NewHTMLResults(set *models.SearchResultSet, href func(models.DocumentRef) string) HTMLResults {
	v := HTMLResults{Query: set.Query, Status: set.Status, Message: StatusMessage(set)}
	for _, g := range set.Groups {
		hg := HTMLGroup{Href: href(g.Document), Path: g.Document.Path}
		for _, ex := range g.Excerpts {
			hg.Excerpts = append(hg.Excerpts, HTMLExcerpt{
				Heading:    ex.Heading,
				HasHeading: ex.HasHeading,
				Text:       template.HTML(ex.Text),
			})
		}
		v.Groups = append(v.Groups, hg)
	}
	return v
}

// WriteHTMLResults renders set as an HTML fragment.
func WriteHTMLResults(w io.Writer, set *models.SearchResultSet, href func(models.DocumentRef) string) error {
	return ResultsTemplate.Execute(w, NewHTMLResults(set, href))
}
