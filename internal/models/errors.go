package models

import "errors"

var (
	// ErrCorpusUnavailable is returned when the corpus file cannot be fetched or parsed.
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// ErrDocumentLoadFailed is returned when a document cannot be fetched.
	ErrDocumentLoadFailed = errors.New("document load failed")

	// ErrMalformedDocument is returned when a document's bytes cannot be turned into a tree.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrEmptySearchTerm is returned when a search is requested without a term.
	ErrEmptySearchTerm = errors.New("search term is empty")
)
