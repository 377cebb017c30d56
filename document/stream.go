package document

import "io"

// Stream is a pull-based cursor over documents. Next returns io.EOF when the
// stream is exhausted. Streams are lazy and single-threaded: each Next call
// advances the underlying source by exactly one document.
type Stream interface {
	Next() (*Doc, error)
}

type sliceStream struct {
	docs []*Doc
	pos  int
}

// FromSlice returns a Stream yielding the given documents in order.
func FromSlice(docs ...*Doc) Stream {
	return &sliceStream{docs: docs}
}

func (s *sliceStream) Next() (*Doc, error) {
	if s.pos >= len(s.docs) {
		return nil, io.EOF
	}
	d := s.docs[s.pos]
	s.pos++
	return d, nil
}

// Collect drains a stream into a slice. The first error other than io.EOF
// is returned along with the documents consumed so far.
func Collect(s Stream) ([]*Doc, error) {
	var docs []*Doc
	for {
		d, err := s.Next()
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return docs, err
		}
		docs = append(docs, d)
	}
}
