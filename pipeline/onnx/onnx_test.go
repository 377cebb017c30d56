package onnx

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/q-jackboylan/skweak/document"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

const testTokenizer = `{"model":{"vocab":{"[UNK]":0,"[CLS]":1,"[SEP]":2,"pierre":3,"lives":4,"in":5,"os":7,"##lo":8}}}`

func TestStageMissingModelDir(t *testing.T) {
	s := New("onnx", Config{ModelDir: filepath.Join(t.TempDir(), "missing")})
	d, _ := document.New([]string{"Oslo"}, []bool{false})

	_, err := s.Process(d)
	if err == nil || !strings.Contains(err.Error(), "load labels") {
		t.Fatalf("unexpected err %v", err)
	}

	// The load failure is cached.
	if _, err2 := s.Process(d); err2 == nil {
		t.Fatal("expected cached load error")
	}
}

func TestStageInvalidLabelsJSON(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "labels.json"), "{")
	mustWrite(t, filepath.Join(dir, "tokenizer.json"), testTokenizer)
	mustWrite(t, filepath.Join(dir, "model.onnx"), "x")

	s := New("onnx", Config{ModelDir: dir})
	d, _ := document.New([]string{"Oslo"}, []bool{false})
	if _, err := s.Process(d); err == nil || !strings.Contains(err.Error(), "load labels") {
		t.Fatalf("unexpected err %v", err)
	}
}

func TestStageInvalidTokenizerJSON(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "labels.json"), `{"0":"O"}`)
	mustWrite(t, filepath.Join(dir, "tokenizer.json"), "{")
	mustWrite(t, filepath.Join(dir, "model.onnx"), "x")

	s := New("onnx", Config{ModelDir: dir})
	d, _ := document.New([]string{"Oslo"}, []bool{false})
	if _, err := s.Process(d); err == nil || !strings.Contains(err.Error(), "load tokenizer") {
		t.Fatalf("unexpected err %v", err)
	}
}

// fakeSession answers fixed per-piece class predictions.
type fakeSession struct {
	classes []int
	width   int
}

func (f *fakeSession) run(inputIDs, attentionMask, tokenTypeIDs []int64) ([][]float32, error) {
	out := make([][]float32, len(f.classes))
	for i, c := range f.classes {
		row := make([]float32, f.width)
		row[c] = 8
		out[i] = row
	}
	return out, nil
}

func testStage(t *testing.T, classes []int) *Stage {
	t.Helper()
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "labels.json"), `{"0":"O","1":"B-PER","2":"I-PER","3":"B-LOC"}`)
	mustWrite(t, filepath.Join(dir, "tokenizer.json"), testTokenizer)
	mustWrite(t, filepath.Join(dir, "model.onnx"), "x")

	s := New("onnx", Config{ModelDir: dir})
	if err := s.init(); err == nil {
		t.Fatal("expected stub backend to refuse session creation")
	}
	// Swap in the fake backend behind the cached loader.
	s.loadErr = nil
	s.sess = &fakeSession{classes: classes, width: 4}
	return s
}

func TestStageProcessMergesEntities(t *testing.T) {
	// Pieces: [CLS] pierre lives in os ##lo [SEP]
	s := testStage(t, []int{0, 1, 0, 0, 3, 2, 0})
	d, _ := document.New([]string{"Pierre", "lives", "in", "Oslo"}, []bool{true, true, true, false})

	out, err := s.Process(d)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := []document.Span{
		{Start: 0, End: 1, Label: "PER"},
		{Start: 3, End: 4, Label: "LOC"},
	}
	if !reflect.DeepEqual(out.Ents, want) {
		t.Fatalf("expected %v, got %v", want, out.Ents)
	}
}

func TestStageOnlyFirstPieceVotes(t *testing.T) {
	// "Oslo" splits into os + ##lo; the ##lo prediction must be ignored.
	s := testStage(t, []int{0, 0, 0, 0, 3, 1, 0})
	d, _ := document.New([]string{"Pierre", "lives", "in", "Oslo"}, []bool{true, true, true, false})

	out, err := s.Process(d)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := []document.Span{{Start: 3, End: 4, Label: "LOC"}}
	if !reflect.DeepEqual(out.Ents, want) {
		t.Fatalf("expected %v, got %v", want, out.Ents)
	}
}

func TestWordPieceEncode(t *testing.T) {
	tok, err := loadWordPieceFromString(t, testTokenizer)
	if err != nil {
		t.Fatalf("loadWordPiece: %v", err)
	}

	enc := tok.encode([]string{"Pierre", "Oslo"})

	// [CLS] pierre os ##lo [SEP]
	wantIDs := []int64{1, 3, 7, 8, 2}
	if !reflect.DeepEqual(enc.inputIDs, wantIDs) {
		t.Fatalf("expected ids %v, got %v", wantIDs, enc.inputIDs)
	}
	wantWords := []int{-1, 0, 1, 1, -1}
	if !reflect.DeepEqual(enc.pieceToWord, wantWords) {
		t.Fatalf("expected piece map %v, got %v", wantWords, enc.pieceToWord)
	}
}

func TestWordPieceUnknownWord(t *testing.T) {
	tok, err := loadWordPieceFromString(t, testTokenizer)
	if err != nil {
		t.Fatalf("loadWordPiece: %v", err)
	}

	enc := tok.encode([]string{"zzz"})
	if enc.inputIDs[1] != int64(tok.unkID) {
		t.Fatalf("expected [UNK], got %v", enc.inputIDs)
	}
}

func loadWordPieceFromString(t *testing.T, content string) (*wordPiece, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	mustWrite(t, path, content)
	return loadWordPiece(path)
}

func TestMergeBIO(t *testing.T) {
	tags := []string{"B-PER", "I-PER", "O", "B-LOC", "B-LOC", "I-ORG"}
	scores := []float64{1, 1, 0, 1, 1, 1}

	spans := mergeBIO(tags, scores)
	want := []bioSpan{
		{label: "PER", start: 0, end: 2, score: 1},
		{label: "LOC", start: 3, end: 4, score: 1},
		{label: "LOC", start: 4, end: 5, score: 1},
		{label: "ORG", start: 5, end: 6, score: 1},
	}
	if !reflect.DeepEqual(spans, want) {
		t.Fatalf("expected %v, got %v", want, spans)
	}
}

func TestMergeBIODanglingInside(t *testing.T) {
	// An I- tag without a matching open span starts a new one.
	spans := mergeBIO([]string{"O", "I-PER"}, []float64{0, 1})
	want := []bioSpan{{label: "PER", start: 1, end: 2, score: 1}}
	if !reflect.DeepEqual(spans, want) {
		t.Fatalf("expected %v, got %v", want, spans)
	}
}
