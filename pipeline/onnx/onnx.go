// Package onnx provides a pipeline stage that runs a local ONNX
// token-classification model over a document. The model directory holds
// model.onnx, labels.json (class index to BIO tag) and tokenizer.json
// (WordPiece vocabulary); per-word BIO tags are merged into entity spans on
// the document.
//
// The native runtime backend is only compiled in with the 'onnxruntime'
// build tag; without it the stage reports a configuration error on first use.
package onnx

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/q-jackboylan/skweak/document"
	"github.com/q-jackboylan/skweak/pipeline"
)

// Config locates and tunes the model.
type Config struct {
	// ModelDir holds model.onnx, labels.json and tokenizer.json.
	ModelDir string

	// MinScore drops merged spans whose mean softmax score is lower.
	MinScore float64
}

// Stage runs the model. Resources are loaded once, on first use; a load
// failure is cached and returned for every subsequent call.
type Stage struct {
	name string
	cfg  Config

	once    sync.Once
	loadErr error
	labels  map[int]string
	tok     *wordPiece
	sess    session
}

var _ pipeline.Stage = (*Stage)(nil)

// session is the runtime backend: one forward pass over a single encoded
// sequence, returning per-piece logits.
type session interface {
	run(inputIDs, attentionMask, tokenTypeIDs []int64) ([][]float32, error)
}

func New(name string, cfg Config) *Stage {
	return &Stage{name: name, cfg: cfg}
}

func (s *Stage) Name() string { return s.name }

func (s *Stage) init() error {
	s.once.Do(func() {
		labelsRaw, err := os.ReadFile(filepath.Join(s.cfg.ModelDir, "labels.json"))
		if err != nil {
			s.loadErr = fmt.Errorf("onnx: load labels: %w", err)
			return
		}
		var byName map[string]string
		if err := json.Unmarshal(labelsRaw, &byName); err != nil {
			s.loadErr = fmt.Errorf("onnx: load labels: %w", err)
			return
		}
		s.labels = make(map[int]string, len(byName))
		for k, v := range byName {
			var idx int
			if _, err := fmt.Sscanf(k, "%d", &idx); err != nil {
				s.loadErr = fmt.Errorf("onnx: load labels: bad class index %q", k)
				return
			}
			s.labels[idx] = v
		}

		s.tok, err = loadWordPiece(filepath.Join(s.cfg.ModelDir, "tokenizer.json"))
		if err != nil {
			s.loadErr = fmt.Errorf("onnx: load tokenizer: %w", err)
			return
		}

		s.sess, err = createSession(filepath.Join(s.cfg.ModelDir, "model.onnx"))
		if err != nil {
			s.loadErr = fmt.Errorf("onnx: load model: %w", err)
		}
	})
	return s.loadErr
}

// Process classifies every word of the document and merges the BIO tags into
// entity spans on it. The per-word tag comes from the word's first piece.
func (s *Stage) Process(d *document.Doc) (*document.Doc, error) {
	if err := s.init(); err != nil {
		return nil, err
	}
	if len(d.Tokens) == 0 {
		d.Ents = nil
		return d, nil
	}

	enc := s.tok.encode(d.Words())
	logits, err := s.sess.run(enc.inputIDs, enc.attentionMask, enc.tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("onnx: inference: %w", err)
	}
	if len(logits) != len(enc.inputIDs) {
		return nil, fmt.Errorf("onnx: model returned %d rows for %d pieces", len(logits), len(enc.inputIDs))
	}

	tags := make([]string, len(d.Tokens))
	scores := make([]float64, len(d.Tokens))
	for i := range tags {
		tags[i] = "O"
	}
	for piece, word := range enc.pieceToWord {
		if word < 0 || word >= len(tags) {
			continue
		}
		if piece > 0 && enc.pieceToWord[piece-1] == word {
			// Only the first piece of a word votes.
			continue
		}
		class, score := argmax(logits[piece])
		tag, ok := s.labels[class]
		if !ok {
			return nil, fmt.Errorf("onnx: model predicted unknown class %d", class)
		}
		tags[word] = tag
		scores[word] = score
	}

	ents := make([]document.Span, 0)
	for _, sp := range mergeBIO(tags, scores) {
		if sp.score < s.cfg.MinScore {
			continue
		}
		ents = append(ents, document.Span{Start: sp.start, End: sp.end, Label: sp.label})
	}
	d.Ents = ents
	return d, nil
}

func (s *Stage) Pipe(in document.Stream) document.Stream {
	return pipeline.Each(s, in)
}

// argmax returns the class with maximal logit and its softmax score.
func argmax(row []float32) (int, float64) {
	if len(row) == 0 {
		return 0, 0
	}
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}

	var sum float64
	for _, v := range row {
		sum += math.Exp(float64(v - row[best]))
	}
	return best, 1 / sum
}
