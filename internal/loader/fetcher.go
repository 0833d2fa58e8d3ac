package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hyperjump/midashi/internal/fileid"
	"github.com/hyperjump/midashi/internal/models"
)

// Fetcher reads the bytes behind a location: a local file path or an http(s) URL.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher returns a fetcher whose HTTP requests time out after timeout and whose reads
// are capped at maxBytes (<= 0 means unlimited).
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch returns the content at location. Every failure wraps models.ErrDocumentLoadFailed.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if fileid.IsURL(location) {
		return f.fetchURL(ctx, location)
	}
	return f.fetchFile(location)
}

func (f *Fetcher) fetchFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDocumentLoadFailed, err)
	}
	defer file.Close()
	return f.read(file, path)
}

func (f *Fetcher) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDocumentLoadFailed, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDocumentLoadFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: %s", models.ErrDocumentLoadFailed, url, resp.Status)
	}
	return f.read(resp.Body, url)
}

func (f *Fetcher) read(r io.Reader, location string) ([]byte, error) {
	if f.maxBytes > 0 {
		r = io.LimitReader(r, f.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", models.ErrDocumentLoadFailed, location, err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", models.ErrDocumentLoadFailed, location, f.maxBytes)
	}
	return data, nil
}
