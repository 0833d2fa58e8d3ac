// Package models defines core data structures for corpora, queries, and search results.
package models

// DocumentRef identifies one searchable document in the corpus.
type DocumentRef struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Group string `json:"group"`
}

// Folder is one entry of the corpus file: a logical group and its documents.
type Folder struct {
	ID    string   `json:"folder" yaml:"folder"`
	Files []string `json:"files" yaml:"files"`
}

// Corpus is the ordered list of folders to search. Paths in Files are expected to be
// resolved (absolute file paths or URLs) by the time a Corpus reaches the engine.
type Corpus struct {
	Folders []Folder `json:"folders"`
	refs    []DocumentRef
}

// NewCorpus builds a corpus and precomputes its document refs using id to derive
// each document's identity.
func NewCorpus(folders []Folder, id func(path string) string) Corpus {
	c := Corpus{Folders: folders}
	for _, f := range folders {
		for _, p := range f.Files {
			c.refs = append(c.refs, DocumentRef{ID: id(p), Path: p, Group: f.ID})
		}
	}
	return c
}

// Refs returns the documents in folder order, then file order.
func (c Corpus) Refs() []DocumentRef {
	return c.refs
}

// Len returns the number of documents in the corpus.
func (c Corpus) Len() int {
	return len(c.refs)
}

// Empty reports whether the corpus holds no documents.
func (c Corpus) Empty() bool {
	return len(c.refs) == 0
}
