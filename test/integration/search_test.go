// Package integration runs the HTTP API against a corpus served from a remote document server.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hyperjump/midashi/internal/config"
	"github.com/hyperjump/midashi/internal/corpus"
	"github.com/hyperjump/midashi/internal/loader"
	"github.com/hyperjump/midashi/internal/models"
	"github.com/hyperjump/midashi/internal/search"
	"github.com/hyperjump/midashi/internal/server"
)

const foldersYAML = `
folders:
  - folder: manuals
    files:
      - docs/setup.md
      - docs/missing.xml
  - folder: notes
    files:
      - docs/notes.xml
`

const setupMD = `# Setup

Install the daemon before the first sync.

## Upgrading

Stop the daemon, replace the binary, start it again.
`

const notesXML = `<notes>
  <nav><text>daemon index</text></nav>
  <entry><heading>Monday</heading><text>The daemon crashed twice.</text></entry>
</notes>`

// docServer serves the corpus and counts document fetches by path.
func docServer(t *testing.T) (*httptest.Server, map[string]*atomic.Int32) {
	t.Helper()
	files := map[string]string{
		"/folders.yaml":   foldersYAML,
		"/docs/setup.md":  setupMD,
		"/docs/notes.xml": notesXML,
	}
	hits := make(map[string]*atomic.Int32)
	for p := range files {
		hits[p] = &atomic.Int32{}
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		hits[r.URL.Path].Add(1)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, hits
}

func TestIntegration_RemoteCorpusSearch(t *testing.T) {
	docs, hits := docServer(t)

	cfg := config.Default()
	cfg.Corpus.Location = docs.URL + "/folders.yaml"
	ld := loader.New(&cfg.Loader)
	store := corpus.NewStore(corpus.NewSource(cfg.Corpus.Location, ld), nil)
	if _, err := store.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	engine, err := search.NewEngine(ld, &cfg.Search)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	api := httptest.NewServer(server.NewServer(engine, store, ld, &cfg.Server, nil).Handler())
	defer api.Close()

	searchOnce := func() *models.SearchResultSet {
		body, _ := json.Marshal(models.SearchQuery{Query: "Daemon"})
		resp, err := http.Post(api.URL+"/api/v1/search", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d", resp.StatusCode)
		}
		var set models.SearchResultSet
		if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
			t.Fatal(err)
		}
		return &set
	}

	set := searchOnce()
	if set.Status != models.StatusOK {
		t.Fatalf("status = %q", set.Status)
	}
	if set.Searched != 2 || set.Skipped != 1 {
		t.Errorf("searched=%d skipped=%d, want 2 and 1", set.Searched, set.Skipped)
	}
	if len(set.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(set.Groups))
	}
	if got, want := set.Groups[0].Document.Path, docs.URL+"/docs/setup.md"; got != want {
		t.Errorf("first group = %q, want %q", got, want)
	}
	if got := set.Groups[0].Document.Group; got != "manuals" {
		t.Errorf("first group folder = %q", got)
	}
	setup := set.Groups[0].Excerpts
	if len(setup) != 2 || setup[0].Heading != "Setup" || setup[1].Heading != "Upgrading" {
		t.Errorf("unexpected setup excerpts: %+v", setup)
	}
	notes := set.Groups[1]
	if len(notes.Matches) != 1 || notes.Excerpts[0].Heading != "Monday" {
		t.Errorf("navigation should be excluded, got %+v", notes.Excerpts)
	}
	if !strings.Contains(notes.Excerpts[0].Text, `<span style="background-color: yellow;">daemon</span>`) {
		t.Errorf("missing highlight: %q", notes.Excerpts[0].Text)
	}

	// Remote documents are served from the cache until their TTL expires.
	searchOnce()
	if n := hits["/docs/setup.md"].Load(); n != 1 {
		t.Errorf("setup.md fetched %d times, want 1", n)
	}

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(api.URL + "/api/v1/documents/" + set.Groups[1].Document.ID)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("document status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != docs.URL+"/docs/notes.xml" {
		t.Errorf("redirect to %q", loc)
	}
}

func TestIntegration_UnreachableCorpus(t *testing.T) {
	docs, _ := docServer(t)

	cfg := config.Default()
	ld := loader.New(&cfg.Loader)
	store := corpus.NewStore(corpus.NewSource(docs.URL+"/nope.yaml", ld), nil)
	if _, err := store.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}
	engine, err := search.NewEngine(ld, &cfg.Search)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	api := httptest.NewServer(server.NewServer(engine, store, ld, &cfg.Server, nil).Handler())
	defer api.Close()

	resp, err := http.Post(api.URL+"/api/v1/search", "application/json", strings.NewReader(`{"query":"daemon"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var set models.SearchResultSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		t.Fatal(err)
	}
	if set.Status != models.StatusNoCorpus {
		t.Errorf("status = %q, want no_corpus", set.Status)
	}
}
