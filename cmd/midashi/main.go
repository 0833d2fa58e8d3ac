// Package main is the midashi CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/midashi/internal/cli"
	"github.com/hyperjump/midashi/internal/config"
	"github.com/hyperjump/midashi/internal/corpus"
	"github.com/hyperjump/midashi/internal/fileid"
	"github.com/hyperjump/midashi/internal/loader"
	"github.com/hyperjump/midashi/internal/models"
	"github.com/hyperjump/midashi/internal/search"
	"github.com/hyperjump/midashi/internal/server"
	"github.com/hyperjump/midashi/internal/watcher"
	"github.com/hyperjump/midashi/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/midashi/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// A missing default config is not an error: built-in defaults apply and the returned
// path is empty. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "corpus":
		runCorpus()
	case "version", "--version", "-v":
		fmt.Printf("midashi version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds the wired search stack.
type Components struct {
	Loader *loader.Loader
	Corpus *corpus.Store
	Engine *search.Engine
}

// Close releases the engine's workers.
func (c *Components) Close() {
	if c.Engine != nil {
		c.Engine.Close()
	}
}

// initializeComponents builds the loader, corpus store and engine, and loads the corpus.
// An unavailable corpus is logged and leaves the store empty; it is not an error.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, marker search.Marker) (*Components, error) {
	ld := loader.New(&cfg.Loader, loader.WithLogger(logger))
	store := corpus.NewStore(corpus.NewSource(cfg.Corpus.Location, ld), logger)
	_, _ = store.Reload(ctx)

	engine, err := search.NewEngine(ld, &cfg.Search, search.WithLogger(logger), search.WithMarker(marker))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize search engine: %w", err)
	}
	return &Components{Loader: ld, Corpus: store, Engine: engine}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (document loads, watcher events, etc.)")
	corpusLocation := fs.String("corpus", "", "folders file path or URL (overrides config)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpusLocation != "" {
		cfg.Corpus.Location = *corpusLocation
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("corpus", cfg.Corpus.Location),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(context.Background(), cfg, logger, search.HTMLMarker)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Corpus.WatchOrDefault() && !fileid.IsURL(cfg.Corpus.Location) {
		watchOpts := []watcher.WatcherOption{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		var watchSvc *watcher.Watcher
		onChange := newChangeHandler(cfg.Corpus.Location, components, func(files []string) { watchSvc.SetFiles(files) }, logger)
		watchSvc = watcher.NewWatcher(
			watchedFiles(cfg.Corpus.Location, components.Corpus.Current()),
			onChange,
			onChange,
			watchOpts...,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(components.Engine, components.Corpus, components.Loader, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// watchedFiles returns the corpus file and every local document of c.
func watchedFiles(corpusLocation string, c models.Corpus) []string {
	files := []string{corpusLocation}
	for _, ref := range c.Refs() {
		if !fileid.IsURL(ref.Path) {
			files = append(files, ref.Path)
		}
	}
	return files
}

// newChangeHandler returns the watcher callback: a change to the corpus file reloads the
// corpus and hands the new watch list to setFiles; a change to a document drops its
// cached tree.
func newChangeHandler(corpusLocation string, c *Components, setFiles func([]string), logger *zap.Logger) func(string) {
	corpusPath, err := filepath.Abs(corpusLocation)
	if err != nil {
		corpusPath = filepath.Clean(corpusLocation)
	}
	return func(path string) {
		if path == corpusPath {
			logger.Info("corpus file changed, reloading", zap.String("path", path))
			current, _ := c.Corpus.Reload(context.Background())
			c.Loader.Cache().Purge()
			setFiles(watchedFiles(corpusLocation, current))
			return
		}
		logger.Debug("document changed", zap.String("path", path))
		c.Loader.Cache().Invalidate(path)
	}
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: midashi search [flags] <term>\n\n")
	fmt.Fprintf(fs.Output(), "The term is all remaining arguments joined by spaces and is matched case-insensitively.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  midashi search apple pie
  midashi search -granularity subtree -traversal first "apple pie"
  midashi search -grouping merge -format html apple > results.html
  midashi search -server http://localhost:8080 -format json apple
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word terms
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the term
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "midashi search apple -format json"
// would otherwise leave -format unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// newSearchQuery validates the mode flags and builds the query. A blank term is allowed
// here; the engine reports it as an empty-term result.
func newSearchQuery(term, granularity, traversal, grouping string) (*models.SearchQuery, error) {
	g, err := models.ParseGranularity(granularity)
	if err != nil {
		return nil, err
	}
	tr, err := models.ParseTraversal(traversal)
	if err != nil {
		return nil, err
	}
	gr, err := models.ParseGrouping(grouping)
	if err != nil {
		return nil, err
	}
	return &models.SearchQuery{Query: term, Granularity: g, Traversal: tr, Grouping: gr}, nil
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	corpusLocation := fs.String("corpus", "", "folders file path or URL (overrides config)")
	serverURL := fs.String("server", "", "server URL (empty = search the corpus directly)")
	outputFormat := fs.String("format", "text", "output format: text, json or html")
	granularity := fs.String("granularity", "", "leaf or subtree (default from config)")
	traversal := fs.String("traversal", "", "first or exhaustive (default from config)")
	grouping := fs.String("grouping", "", "flat or merge (default from config)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	query, err := newSearchQuery(buildSearchQuery(fs.Args()), *granularity, *traversal, *grouping)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpusLocation != "" {
		cfg.Corpus.Location = *corpusLocation
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var set *models.SearchResultSet
	if *serverURL != "" {
		if query.Grouping == "" {
			// Pin the grouping so excerpts can be re-rendered the same way locally.
			query.Grouping = cfg.Search.Grouping
		}
		set, err = searchViaHTTP(ctx, *serverURL, query)
		if set != nil && format == cli.OutputText {
			redecorate(set, query.Grouping, search.TextMarker)
		}
	} else {
		set, err = searchDirect(ctx, cfg, query, markerFor(format), logger)
	}
	if set == nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, set, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if err != nil || set.Status == models.StatusEmptyTerm || set.Status == models.StatusNoCorpus {
		os.Exit(1)
	}
}

func markerFor(format cli.SearchOutputFormat) search.Marker {
	if format == cli.OutputText {
		return search.TextMarker
	}
	return search.HTMLMarker
}

// searchDirect loads the corpus named by cfg and searches it in-process.
func searchDirect(ctx context.Context, cfg *config.Config, query *models.SearchQuery, marker search.Marker, logger *zap.Logger) (*models.SearchResultSet, error) {
	components, err := initializeComponents(ctx, cfg, logger, marker)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	return components.Engine.SearchQuery(ctx, query, components.Corpus.Current())
}

// redecorate re-renders excerpts from the matches' text and spans with marker. The server
// marks excerpts up for HTML; the text format wants plain markers instead.
func redecorate(set *models.SearchResultSet, grouping models.Grouping, marker search.Marker) {
	agg := search.Aggregator{Grouping: grouping}
	for _, g := range set.Groups {
		agg.Decorate(g, marker)
	}
}

func searchViaHTTP(ctx context.Context, serverURL string, query *models.SearchQuery) (*models.SearchResultSet, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(serverURL, "/")+"/api/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var set models.SearchResultSet
		if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return &set, nil
	case http.StatusBadRequest, http.StatusServiceUnavailable:
		var out struct {
			Error  string                  `json:"error"`
			Result *models.SearchResultSet `json:"result"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.Result != nil {
			return out.Result, nil
		}
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, out.Error)
	default:
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
}

func runCorpus() {
	fs := flag.NewFlagSet("corpus", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	corpusLocation := fs.String("corpus", "", "folders file path or URL (overrides config)")
	outputFormat := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpusLocation != "" {
		cfg.Corpus.Location = *corpusLocation
	}
	fetcher := loader.NewFetcher(cfg.Loader.Timeout, cfg.Loader.MaxBytes)
	c, err := corpus.NewSource(cfg.Corpus.Location, fetcher).Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := writeCorpus(os.Stdout, c, *outputFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func writeCorpus(w io.Writer, c models.Corpus, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{"folders": c.Folders, "documents": c.Refs()})
	case "text":
		for _, f := range c.Folders {
			fmt.Fprintf(w, "%s (%d files)\n", f.ID, len(f.Files))
			for _, p := range f.Files {
				fmt.Fprintf(w, "  %s  %s\n", fileid.DocID(p), p)
			}
		}
		fmt.Fprintf(w, "\n%d documents in %d folders\n", c.Len(), len(c.Folders))
		return nil
	default:
		return fmt.Errorf("unknown output format %q; use text or json", format)
	}
}

func printUsage() {
	fmt.Println(`midashi - Search structured documents and highlight every occurrence

Usage:
  midashi server [flags]           Start the HTTP server and search page
  midashi search [flags] <term>    Search the corpus
  midashi corpus [flags]           List the documents of the corpus
  midashi version                  Show version
  midashi help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/midashi/config.yaml)
  --debug            Enable debug logging (document loads, watcher events, etc.)
  --corpus string    Folders file path or URL (overrides config)

Search Flags:
  --config string        Config file path
  --corpus string        Folders file path or URL (overrides config)
  --server string        Search through a running server instead of in-process
  --format string        Output format: text, json or html (default: text)
  --granularity string   leaf (text elements only) or subtree (any element)
  --traversal string     first (stop at the first match per branch) or exhaustive
  --grouping string      flat (one excerpt per match) or merge (one per document)

Corpus Flags:
  --config string    Config file path
  --corpus string    Folders file path or URL (overrides config)
  --format string    Output format: text or json (default: text)

Examples:
  midashi server
  midashi search apple
  midashi search -granularity subtree "apple pie"
  midashi search -format json apple   # structured JSON for other apps
  midashi corpus -corpus ./folders.json`)
}
