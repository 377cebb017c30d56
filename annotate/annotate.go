// Package annotate implements weak-supervision labelling sources that attach
// candidate entity spans to tokenized documents. Every source implements the
// Annotator contract; model-backed sources delegate to an external inference
// pipeline over a clean clone of the document, so that annotations already
// present never leak into the model.
package annotate

import (
	"github.com/q-jackboylan/skweak/document"
)

// Annotator is the uniform capability of a labelling source: produce labeled
// spans for one document, or annotate a lazy stream of documents.
type Annotator interface {
	// Name is the span-group name the annotator writes to.
	Name() string

	// FindSpans returns candidate spans for the document. It must not
	// mutate the document beyond what Apply does afterwards.
	FindSpans(d *document.Doc) ([]document.Span, error)

	// Pipe consumes a stream of documents one at a time and yields the
	// same documents, annotated, in the same order. It never skips or
	// duplicates documents; errors from the underlying source propagate
	// through Next.
	Pipe(in document.Stream) document.Stream
}

// Apply runs the annotator over a single document and materializes the
// result as the annotator's named span group. The group is always present
// afterwards, possibly empty; a previous group under the same name is reset.
func Apply(a Annotator, d *document.Doc) error {
	spans, err := a.FindSpans(d)
	if err != nil {
		return err
	}
	return d.SetSpans(a.Name(), spans)
}

// Pipe is the default streaming entry point, implemented in terms of
// FindSpans: each pull advances the input by one document and applies the
// annotator to it.
func Pipe(a Annotator, in document.Stream) document.Stream {
	return &applyStream{annotator: a, in: in}
}

type applyStream struct {
	annotator Annotator
	in        document.Stream
}

func (s *applyStream) Next() (*document.Doc, error) {
	d, err := s.in.Next()
	if err != nil {
		return nil, err
	}
	if err := Apply(s.annotator, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Chain pipes the stream through every annotator in order.
func Chain(in document.Stream, annotators ...Annotator) document.Stream {
	out := in
	for _, a := range annotators {
		out = a.Pipe(out)
	}
	return out
}
