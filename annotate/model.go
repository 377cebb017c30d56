package annotate

import (
	"errors"
	"io"

	"github.com/q-jackboylan/skweak/document"
	"github.com/q-jackboylan/skweak/pipeline"
)

// ErrLockstep reports that an inference pipeline dropped, duplicated or
// invented documents while piping a stream: the annotated view no longer
// pairs one-to-one with the original documents. This is a bug in the stage,
// not a recoverable condition.
var ErrLockstep = errors.New("annotate: annotated stream out of lockstep with source documents")

// NormalizeFunc derives the clean document handed to the inference pipeline.
// It must preserve token count and whitespace layout.
type NormalizeFunc func(*document.Doc) (*document.Doc, error)

// ModelAnnotator bridges the Annotator contract to an external inference
// pipeline. Before inference the input document is replaced by a clean clone
// (same tokenization, no span groups), so the pipeline only ever sees virgin
// text; the resulting entities are copied back onto the original document
// under the annotator's name.
type ModelAnnotator struct {
	name     string
	pipeline pipeline.Pipeline

	// normalize builds the clean document. The zero value clones the input
	// verbatim; the truecase annotator plugs in a rewriting variant.
	normalize NormalizeFunc
}

// NewModel creates an annotator around an already-configured pipeline.
func NewModel(name string, p pipeline.Pipeline) *ModelAnnotator {
	return &ModelAnnotator{name: name, pipeline: p}
}

func (a *ModelAnnotator) Name() string { return a.name }

func (a *ModelAnnotator) newDoc(d *document.Doc) (*document.Doc, error) {
	if a.normalize != nil {
		return a.normalize(d)
	}
	return d.Clone(), nil
}

// FindSpans annotates one document: clone, run every stage in sequence over
// the clone, read off the resulting entities. Clone tokenization is identical
// to the original, so the entity ranges are valid against it.
func (a *ModelAnnotator) FindSpans(d *document.Doc) ([]document.Span, error) {
	clone, err := a.newDoc(d)
	if err != nil {
		return nil, err
	}
	clone, err = a.pipeline.Process(clone)
	if err != nil {
		return nil, err
	}
	return clone.Ents, nil
}

// Pipe annotates a stream through the batched interface of every stage.
// The input is split into two lazily advanced views: the originals, retained
// for re-attachment, and the clones pushed through the pipeline. Both views
// advance at the same cadence, one document per pull, so the retained queue
// only grows by whatever the stages read ahead for batching.
func (a *ModelAnnotator) Pipe(in document.Stream) document.Stream {
	t := &tee{src: in, normalize: a.newDoc}
	return &modelStream{name: a.name, originals: t, annotated: a.pipeline.Pipe(t)}
}

// tee is the clone view over the source stream. Every pull advances the
// source by one document, queues the original and emits its clone.
type tee struct {
	src       document.Stream
	normalize NormalizeFunc
	pending   []*document.Doc
}

func (t *tee) Next() (*document.Doc, error) {
	d, err := t.src.Next()
	if err != nil {
		return nil, err
	}
	clone, err := t.normalize(d)
	if err != nil {
		return nil, err
	}
	t.pending = append(t.pending, d)
	return clone, nil
}

func (t *tee) take() (*document.Doc, bool) {
	if len(t.pending) == 0 {
		return nil, false
	}
	d := t.pending[0]
	t.pending = t.pending[1:]
	return d, true
}

type modelStream struct {
	name      string
	originals *tee
	annotated document.Stream
}

func (s *modelStream) Next() (*document.Doc, error) {
	clone, err := s.annotated.Next()
	if err == io.EOF {
		if len(s.originals.pending) != 0 {
			// A stage consumed originals it never yielded back.
			return nil, ErrLockstep
		}
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	orig, ok := s.originals.take()
	if !ok {
		// A stage yielded more documents than it consumed.
		return nil, ErrLockstep
	}

	if err := orig.SetSpans(s.name, clone.Ents); err != nil {
		return nil, err
	}
	return orig, nil
}
