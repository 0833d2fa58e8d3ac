package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/midashi/internal/cli"
	"github.com/hyperjump/midashi/internal/config"
	"github.com/hyperjump/midashi/internal/fileid"
	"github.com/hyperjump/midashi/internal/models"
	"github.com/hyperjump/midashi/internal/search"
	"github.com/hyperjump/midashi/internal/server"
	"go.uber.org/zap"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after term are moved first",
			args:     []string{"apple pie", "-format", "json"},
			expected: []string{"-format", "json", "apple pie"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-format", "json", "apple pie"},
			expected: []string{"-format", "json", "apple pie"},
		},
		{
			name:     "term only returns unchanged",
			args:     []string{"apple pie"},
			expected: []string{"apple pie"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"apple", "pie", "-grouping", "merge"},
			expected: []string{"-grouping", "merge", "apple", "pie"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"apple"}, "apple"},
		{"multiple words", []string{"apple", "pie"}, "apple pie"},
		{"single quoted phrase", []string{"apple pie"}, "apple pie"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestNewSearchQuery(t *testing.T) {
	q, err := newSearchQuery("apple", "subtree", "first", "merge")
	if err != nil {
		t.Fatal(err)
	}
	want := &models.SearchQuery{Query: "apple", Granularity: models.GranularitySubtree,
		Traversal: models.TraversalFirst, Grouping: models.GroupingMerge}
	if !reflect.DeepEqual(q, want) {
		t.Errorf("got %+v, want %+v", q, want)
	}
	for _, bad := range [][3]string{{"word", "", ""}, {"", "bfs", ""}, {"", "", "nested"}} {
		if _, err := newSearchQuery("apple", bad[0], bad[1], bad[2]); err == nil {
			t.Errorf("expected error for %v", bad)
		}
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_defaultsWithoutAnyFile(t *testing.T) {
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if _, statErr := os.Stat(defaultConfigPath); statErr == nil {
		t.Skip("a system config exists at the default path")
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty", resolved)
	}
	if cfg.Search.Granularity != models.GranularityLeaf || cfg.Server.Port != 8080 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if _, _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("explicit missing config should fail")
	}
}

// writeCorpus creates two XML documents and a folders file in a temp dir and returns a
// config pointing at it.
func testCorpusConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.xml":        `<doc><section><heading>Intro</heading><text>Apple pie recipe</text></section></doc>`,
		"b.xml":        `<doc><section><heading>Other</heading><text>Nothing here</text></section></doc>`,
		"folders.json": `[{"folder": "recipes", "files": ["a.xml", "b.xml", "missing.xml"]}]`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.Default()
	cfg.Corpus.Location = filepath.Join(dir, "folders.json")
	return cfg, dir
}

func TestSearchDirect(t *testing.T) {
	cfg, dir := testCorpusConfig(t)
	q, _ := newSearchQuery("APPLE", "", "", "")
	set, err := searchDirect(context.Background(), cfg, q, search.TextMarker, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if set.Status != models.StatusOK || set.Searched != 2 || set.Skipped != 1 {
		t.Fatalf("unexpected set: status=%s searched=%d skipped=%d", set.Status, set.Searched, set.Skipped)
	}
	if len(set.Groups) != 1 || set.Groups[0].Document.Path != filepath.Join(dir, "a.xml") {
		t.Fatalf("groups = %+v", set.Groups)
	}
	if got := set.Groups[0].Excerpts[0].Text; got != "[[Apple]] pie recipe" {
		t.Errorf("excerpt = %q", got)
	}

	var buf bytes.Buffer
	if err := cli.WriteSearchResults(&buf, set, cli.OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Intro:\n[[Apple]] pie recipe") {
		t.Errorf("text output:\n%s", buf.String())
	}
}

func TestSearchDirect_missingCorpus(t *testing.T) {
	cfg := config.Default()
	cfg.Corpus.Location = filepath.Join(t.TempDir(), "nope.json")
	q, _ := newSearchQuery("apple", "", "", "")
	set, err := searchDirect(context.Background(), cfg, q, search.TextMarker, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if set.Status != models.StatusNoCorpus {
		t.Errorf("status = %s, want no_corpus", set.Status)
	}
}

func TestSearchViaHTTP(t *testing.T) {
	cfg, _ := testCorpusConfig(t)
	components, err := initializeComponents(context.Background(), cfg, zap.NewNop(), search.HTMLMarker)
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()
	srv := httptest.NewServer(server.NewServer(components.Engine, components.Corpus, components.Loader, &cfg.Server, nil).Handler())
	defer srv.Close()

	q, _ := newSearchQuery("apple", "", "", "flat")
	set, err := searchViaHTTP(context.Background(), srv.URL, q)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Groups) != 1 || !strings.Contains(set.Groups[0].Excerpts[0].Text, `<span style="background-color: yellow;">Apple</span>`) {
		t.Fatalf("groups = %+v", set.Groups)
	}
	redecorate(set, q.Grouping, search.TextMarker)
	if got := set.Groups[0].Excerpts[0].Text; got != "[[Apple]] pie recipe" {
		t.Errorf("redecorated excerpt = %q", got)
	}

	empty, _ := newSearchQuery("  ", "", "", "")
	set, err = searchViaHTTP(context.Background(), srv.URL, empty)
	if err != nil {
		t.Fatal(err)
	}
	if set.Status != models.StatusEmptyTerm {
		t.Errorf("status = %s, want empty_term", set.Status)
	}
}

func TestChangeHandler(t *testing.T) {
	cfg, dir := testCorpusConfig(t)
	components, err := initializeComponents(context.Background(), cfg, zap.NewNop(), search.TextMarker)
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()

	var watched []string
	handle := newChangeHandler(cfg.Corpus.Location, components, func(files []string) { watched = files }, zap.NewNop())

	docA := filepath.Join(dir, "a.xml")
	ref := components.Corpus.Current().Refs()[0]
	if _, err := components.Loader.Load(context.Background(), ref); err != nil {
		t.Fatal(err)
	}
	if components.Loader.Cache().Len() != 1 {
		t.Fatalf("cache len = %d", components.Loader.Cache().Len())
	}
	handle(docA)
	if components.Loader.Cache().Len() != 0 {
		t.Error("document change should invalidate its cached tree")
	}

	os.WriteFile(cfg.Corpus.Location, []byte(`[{"folder": "one", "files": ["a.xml", "https://example.com/x.xml"]}]`), 0600)
	handle(cfg.Corpus.Location)
	if n := components.Corpus.Current().Len(); n != 2 {
		t.Errorf("corpus len after reload = %d", n)
	}
	want := []string{cfg.Corpus.Location, docA}
	if !reflect.DeepEqual(watched, want) {
		t.Errorf("watched = %v, want %v", watched, want)
	}
}

func TestWriteCorpus(t *testing.T) {
	c := models.NewCorpus([]models.Folder{{ID: "g", Files: []string{"/a.xml"}}}, fileid.DocID)
	var buf bytes.Buffer
	if err := writeCorpus(&buf, c, "text"); err != nil {
		t.Fatal(err)
	}
	for _, sub := range []string{"g (1 files)", fileid.DocID("/a.xml"), "1 documents in 1 folders"} {
		if !strings.Contains(buf.String(), sub) {
			t.Errorf("text output missing %q:\n%s", sub, buf.String())
		}
	}
	buf.Reset()
	if err := writeCorpus(&buf, c, "json"); err != nil || !strings.Contains(buf.String(), `"folder": "g"`) {
		t.Errorf("json output: %v\n%s", err, buf.String())
	}
	if err := writeCorpus(&buf, c, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
