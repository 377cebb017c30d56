package annotate

import (
	"fmt"

	"github.com/q-jackboylan/skweak/document"
)

// Mapping assigns one canonical label to a set of source labels, e.g.
// {From: ["DATE", "EVENT"], To: "MISC"}.
type Mapping struct {
	From []string `json:"from"`
	To   string   `json:"to"`
}

// LabelMapper reconciles label vocabularies across existing span groups,
// collapsing or renaming labels according to a flat mapping. Span boundaries
// are never touched; labels absent from the mapping pass through unchanged.
//
// In in-place mode the source groups are overwritten with the relabeled
// spans, preserving membership and order. Otherwise the relabeled spans are
// surfaced as the mapper's own annotation output and collected under its
// name; spans whose label is not in the mapping are not surfaced in that
// mode.
type LabelMapper struct {
	name    string
	mapping map[string]string
	sources []string
	inplace bool
}

// NewLabelMapper expands the sparse pairs into a one-to-one label mapping.
// The same source label appearing in more than one pair is a configuration
// error: a silent last-write-wins would hide a broken specification.
func NewLabelMapper(name string, pairs []Mapping, sources []string, inplace bool) (*LabelMapper, error) {
	mapping := make(map[string]string)
	for _, pair := range pairs {
		for _, from := range pair.From {
			if prev, ok := mapping[from]; ok {
				return nil, fmt.Errorf("annotate: label %q mapped to both %q and %q", from, prev, pair.To)
			}
			mapping[from] = pair.To
		}
	}

	// Sources are walked in caller order, duplicates ignored.
	seen := make(map[string]bool, len(sources))
	uniq := make([]string, 0, len(sources))
	for _, s := range sources {
		if !seen[s] {
			seen[s] = true
			uniq = append(uniq, s)
		}
	}

	return &LabelMapper{name: name, mapping: mapping, sources: uniq, inplace: inplace}, nil
}

func (m *LabelMapper) Name() string { return m.name }

// FindSpans walks the requested span groups present on the document. In
// in-place mode it rewrites the group labels directly and yields nothing;
// otherwise it yields only the spans whose label was found in the mapping.
func (m *LabelMapper) FindSpans(d *document.Doc) ([]document.Span, error) {
	var out []document.Span
	for _, source := range m.sources {
		group, ok := d.Spans[source]
		if !ok {
			continue
		}

		for i, span := range group {
			label, mapped := m.mapping[span.Label]
			if !mapped {
				continue
			}
			if m.inplace {
				group[i].Label = label
			} else {
				span.Label = label
				out = append(out, span)
			}
		}
	}
	return out, nil
}

func (m *LabelMapper) Pipe(in document.Stream) document.Stream {
	return Pipe(m, in)
}
