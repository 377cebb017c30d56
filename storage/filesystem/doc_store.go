package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/q-jackboylan/skweak/document"
	"github.com/q-jackboylan/skweak/storage"
)

// DocStore keeps documents as one JSON file per document in a directory.
type DocStore struct {
	docDir string

	// In-memory cache
	docs []*document.Doc
}

var _ storage.DocRepository = (*DocStore)(nil)

// NewDocStore creates a filesystem document store over docDir.
func NewDocStore(docDir string) (*DocStore, error) {
	if _, err := os.Stat(docDir); err != nil {
		return nil, err
	}
	return &DocStore{docDir: docDir}, nil
}

// LoadList fills the cache with document metadata (Id, Title) only.
func (h *DocStore) LoadList() error {
	files, err := os.ReadDir(h.docDir)
	if err != nil {
		return err
	}

	h.docs = h.docs[:0]
	idx := 0
	for _, file := range files {
		if filepath.Ext(file.Name()) != ".json" {
			continue
		}
		h.docs = append(h.docs, &document.Doc{
			Id:    idx,
			Title: file.Name(),
		})
		idx++
	}
	return nil
}

// LoadContents reads the tokens and span groups of every listed document.
// The callback is called per file (total, current name).
func (h *DocStore) LoadContents(cb func(total int, name string)) error {
	if h.docs == nil {
		if err := h.LoadList(); err != nil {
			return err
		}
	}

	total := len(h.docs)
	for _, doc := range h.docs {
		if cb != nil {
			cb(total, doc.Title)
		}

		full, err := ReadDoc(filepath.Join(h.docDir, doc.Title))
		if err != nil {
			return err
		}
		doc.Tokens = full.Tokens
		doc.Spans = full.Spans
	}
	return nil
}

func (h *DocStore) List() (document.Library, error) {
	if h.docs == nil {
		if err := h.LoadList(); err != nil {
			return nil, err
		}
	}

	metas := make(document.Library, len(h.docs))
	for i, doc := range h.docs {
		metas[i] = &document.Doc{Id: doc.Id, Title: doc.Title}
	}
	return metas, nil
}

func (h *DocStore) Read(id int) (*document.Doc, error) {
	if id < 0 || id >= len(h.docs) {
		return nil, fmt.Errorf("doc id out of range: %d", id)
	}

	doc := h.docs[id]
	if doc.Tokens == nil {
		full, err := ReadDoc(filepath.Join(h.docDir, doc.Title))
		if err != nil {
			return nil, err
		}
		doc.Tokens = full.Tokens
		doc.Spans = full.Spans
	}
	return doc, nil
}

// Write persists the document as <title>.json, or doc_<id>.json when the
// document carries no title.
func (h *DocStore) Write(d *document.Doc) error {
	name := d.Title
	if name == "" {
		name = fmt.Sprintf("doc_%d.json", d.Id)
	}
	if filepath.Ext(name) != ".json" {
		name += ".json"
	}
	return WriteDoc(filepath.Join(h.docDir, name), d)
}

func (h *DocStore) Labels(pattern string) ([]string, error) {
	if err := h.LoadContents(nil); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, doc := range h.docs {
		for _, group := range doc.Spans {
			for _, span := range group {
				if pattern == "" || strings.Contains(span.Label, pattern) {
					seen[span.Label] = true
				}
			}
		}
	}

	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels, nil
}

func (h *DocStore) FindSpans(source, label string, onHit func(storage.SpanHit) error) error {
	if err := h.LoadContents(nil); err != nil {
		return err
	}

	for _, doc := range h.docs {
		for _, span := range doc.Spans[source] {
			if label != "" && span.Label != label {
				continue
			}
			hit := storage.SpanHit{DocId: doc.Id, DocTitle: doc.Title, Source: source, Span: span}
			if err := onHit(hit); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadDoc reads a Doc JSON from the given path and unmarshals it.
func ReadDoc(path string) (*document.Doc, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc document.Doc
	if err := json.Unmarshal(f, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// WriteDoc marshals the Doc to the given path.
func WriteDoc(path string, d *document.Doc) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
