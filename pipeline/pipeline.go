// Package pipeline defines the boundary to external inference pipelines: an
// ordered sequence of named stages, each callable on one document or on a
// lazy stream of documents. Stages are opaque, already-configured
// collaborators; loading and configuring the underlying models is not this
// package's concern.
package pipeline

import (
	"github.com/q-jackboylan/skweak/document"
)

// Stage is one named processing step of an inference pipeline. Both entry
// points must preserve the order and cardinality of their input; failures
// propagate to the caller unchanged.
type Stage interface {
	Name() string

	// Process annotates a single document and returns it.
	Process(d *document.Doc) (*document.Doc, error)

	// Pipe annotates a lazy stream of documents. Implementations may read
	// ahead for batching, but must yield exactly the input documents,
	// annotated, in input order.
	Pipe(in document.Stream) document.Stream
}

// Pipeline is an ordered sequence of stages.
type Pipeline []Stage

// Process runs every stage in sequence over a single document.
func (p Pipeline) Process(d *document.Doc) (*document.Doc, error) {
	var err error
	for _, stage := range p {
		d, err = stage.Process(d)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Pipe chains the batched entry points of all stages over the stream.
func (p Pipeline) Pipe(in document.Stream) document.Stream {
	out := in
	for _, stage := range p {
		out = stage.Pipe(out)
	}
	return out
}

// StageFunc adapts a plain function into a Stage. The batched entry point
// applies the function one document at a time.
type StageFunc struct {
	StageName string
	Fn        func(*document.Doc) (*document.Doc, error)
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Process(d *document.Doc) (*document.Doc, error) {
	return s.Fn(d)
}

func (s StageFunc) Pipe(in document.Stream) document.Stream {
	return Each(s, in)
}

// Each implements a batched entry point in terms of a stage's single-item
// call: every pull advances the input by one document and processes it.
func Each(s Stage, in document.Stream) document.Stream {
	return &eachStream{stage: s, in: in}
}

type eachStream struct {
	stage Stage
	in    document.Stream
}

func (e *eachStream) Next() (*document.Doc, error) {
	d, err := e.in.Next()
	if err != nil {
		return nil, err
	}
	return e.stage.Process(d)
}
