package onnx

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// wordPiece encodes pre-tokenized words into the model's piece ids. The
// vocabulary comes from a Hugging Face tokenizer.json export.
type wordPiece struct {
	vocab      map[string]int
	unkID      int
	clsID      int
	sepID      int
	maxWordLen int
	maxSeqLen  int
	lowercase  bool
}

type encoding struct {
	inputIDs      []int64
	attentionMask []int64
	tokenTypeIDs  []int64

	// pieceToWord maps a piece position to the document token index it
	// belongs to, -1 for the special [CLS]/[SEP] positions.
	pieceToWord []int
}

type tokenizerJSON struct {
	Model struct {
		Vocab map[string]int `json:"vocab"`
	} `json:"model"`
	Normalizer struct {
		Lowercase *bool `json:"lowercase"`
	} `json:"normalizer"`
}

func loadWordPiece(path string) (*wordPiece, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg tokenizerJSON
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Model.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer.json model.vocab is empty")
	}

	t := &wordPiece{
		vocab:      cfg.Model.Vocab,
		maxWordLen: 100,
		maxSeqLen:  512,
		lowercase:  true,
	}
	if cfg.Normalizer.Lowercase != nil {
		t.lowercase = *cfg.Normalizer.Lowercase
	}

	var ok bool
	if t.unkID, ok = t.vocab["[UNK]"]; !ok {
		return nil, fmt.Errorf("tokenizer vocab is missing [UNK]")
	}
	if t.clsID, ok = t.vocab["[CLS]"]; !ok {
		return nil, fmt.Errorf("tokenizer vocab is missing [CLS]")
	}
	if t.sepID, ok = t.vocab["[SEP]"]; !ok {
		return nil, fmt.Errorf("tokenizer vocab is missing [SEP]")
	}
	return t, nil
}

func (t *wordPiece) encode(words []string) *encoding {
	out := &encoding{
		inputIDs:      []int64{int64(t.clsID)},
		attentionMask: []int64{1},
		tokenTypeIDs:  []int64{0},
		pieceToWord:   []int{-1},
	}
	for wi, word := range words {
		for _, pieceID := range t.wordToPieces(word) {
			if len(out.inputIDs) >= t.maxSeqLen-1 {
				break
			}
			out.inputIDs = append(out.inputIDs, int64(pieceID))
			out.attentionMask = append(out.attentionMask, 1)
			out.tokenTypeIDs = append(out.tokenTypeIDs, 0)
			out.pieceToWord = append(out.pieceToWord, wi)
		}
		if len(out.inputIDs) >= t.maxSeqLen-1 {
			break
		}
	}
	out.inputIDs = append(out.inputIDs, int64(t.sepID))
	out.attentionMask = append(out.attentionMask, 1)
	out.tokenTypeIDs = append(out.tokenTypeIDs, 0)
	out.pieceToWord = append(out.pieceToWord, -1)
	return out
}

func (t *wordPiece) wordToPieces(word string) []int {
	if word == "" {
		return []int{t.unkID}
	}
	normalized := word
	if t.lowercase {
		normalized = strings.ToLower(word)
	}
	runes := []rune(normalized)
	if len(runes) > t.maxWordLen {
		return []int{t.unkID}
	}
	if id, ok := t.vocab[string(runes)]; ok {
		return []int{id}
	}

	ids := make([]int, 0)
	start := 0
	for start < len(runes) {
		end := len(runes)
		found := -1
		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab[piece]; ok {
				found = id
				break
			}
			end--
		}
		if found == -1 {
			return []int{t.unkID}
		}
		ids = append(ids, found)
		start = end
	}
	return ids
}
