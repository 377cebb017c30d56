package storage

import (
	"io"

	"github.com/q-jackboylan/skweak/document"
	"github.com/q-jackboylan/skweak/frequency"
)

// SpanHit is one span occurrence found by an indexed lookup.
type SpanHit struct {
	DocId    int
	DocTitle string
	Source   string
	Span     document.Span
}

// DocReader defines read operations for document storage
type DocReader interface {
	// List returns the metadata (Id, Title) of all documents.
	// Content (Tokens, Spans) is not loaded.
	List() (document.Library, error)

	// Read returns a document by ID, with tokens and span groups.
	Read(id int) (*document.Doc, error)

	// Labels returns all unique span labels found across all documents,
	// sorted alphabetically. If pattern is not empty, only labels
	// containing the pattern are returned.
	Labels(pattern string) ([]string, error)

	// FindSpans calls onHit for every span of the given source. If label
	// is not empty, only spans with that label are reported.
	FindSpans(source, label string, onHit func(SpanHit) error) error
}

// DocWriter defines write operations for document storage
type DocWriter interface {
	// Write persists a document and its span groups to storage
	Write(d *document.Doc) error
}

// DocRepository combines read and write operations
type DocRepository interface {
	DocReader
	DocWriter
}

// FormReader loads a form-frequency table.
type FormReader interface {
	Forms() (frequency.Table, error)
}

// FormWriter persists a form-frequency table.
type FormWriter interface {
	WriteForms(t frequency.Table) error
}

// FormRepository combines read and write operations
type FormRepository interface {
	FormReader
	FormWriter
}

// Stream returns a lazy document stream over the repository: each pull reads
// one document.
func Stream(r DocReader) (document.Stream, error) {
	metas, err := r.List()
	if err != nil {
		return nil, err
	}
	return &repoStream{repo: r, metas: metas}, nil
}

type repoStream struct {
	repo  DocReader
	metas document.Library
	pos   int
}

func (s *repoStream) Next() (*document.Doc, error) {
	if s.pos >= len(s.metas) {
		return nil, io.EOF
	}
	meta := s.metas[s.pos]
	s.pos++

	d, err := s.repo.Read(meta.Id)
	if err != nil {
		return nil, err
	}
	d.Id = meta.Id
	if d.Title == "" {
		d.Title = meta.Title
	}
	return d, nil
}
