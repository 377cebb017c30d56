package document

import (
	"testing"
)

func newTestDoc(t *testing.T, words []string, spaces []bool) *Doc {
	t.Helper()
	d, err := New(words, spaces)
	if err != nil {
		t.Fatalf("failed to build doc: %v", err)
	}
	return d
}

func TestNewComputesOffsets(t *testing.T) {
	d := newTestDoc(t, []string{"Pierre", "lives", "in", "Oslo", "."}, []bool{true, true, true, false, false})

	if got := d.Text(); got != "Pierre lives in Oslo." {
		t.Errorf("unexpected text: %q", got)
	}

	wantIdx := []int{0, 7, 13, 16, 20}
	for i, tok := range d.Tokens {
		if tok.Idx != wantIdx[i] {
			t.Errorf("token %d: expected idx %d, got %d", i, wantIdx[i], tok.Idx)
		}
		if tok.Index != i {
			t.Errorf("token %d: expected index %d, got %d", i, i, tok.Index)
		}
	}

	if !d.Tokens[0].SentStart {
		t.Error("first token should start a sentence")
	}
	if d.Tokens[1].SentStart {
		t.Error("second token should not start a sentence")
	}
}

func TestNewLengthMismatch(t *testing.T) {
	if _, err := New([]string{"a", "b"}, []bool{true}); err == nil {
		t.Fatal("expected error for mismatched words and spaces")
	}
}

func TestClonePreservesTokenization(t *testing.T) {
	d := newTestDoc(t, []string{"The", "NATO", "summit"}, []bool{true, true, false})
	if err := d.SetSpans("ner", []Span{{Start: 1, End: 2, Label: "ORG"}}); err != nil {
		t.Fatalf("SetSpans: %v", err)
	}
	d.Ents = []Span{{Start: 0, End: 1, Label: "X"}}

	clone := d.Clone()

	if len(clone.Tokens) != len(d.Tokens) {
		t.Fatalf("expected %d tokens, got %d", len(d.Tokens), len(clone.Tokens))
	}
	for i := range d.Tokens {
		if clone.Tokens[i].Text != d.Tokens[i].Text {
			t.Errorf("token %d: text %q != %q", i, clone.Tokens[i].Text, d.Tokens[i].Text)
		}
		if clone.Tokens[i].Whitespace != d.Tokens[i].Whitespace {
			t.Errorf("token %d: whitespace flag differs", i)
		}
	}
	if len(clone.Spans) != 0 {
		t.Errorf("clone should carry no span groups, got %d", len(clone.Spans))
	}
	if len(clone.Ents) != 0 {
		t.Errorf("clone should carry no ents, got %d", len(clone.Ents))
	}
}

func TestSetSpansResetsGroup(t *testing.T) {
	d := newTestDoc(t, []string{"a", "b", "c"}, []bool{true, true, false})

	if err := d.SetSpans("ner", []Span{{Start: 0, End: 1, Label: "X"}, {Start: 1, End: 3, Label: "Y"}}); err != nil {
		t.Fatalf("SetSpans: %v", err)
	}
	if err := d.SetSpans("ner", []Span{{Start: 2, End: 3, Label: "Z"}}); err != nil {
		t.Fatalf("SetSpans: %v", err)
	}

	group := d.Spans["ner"]
	if len(group) != 1 || group[0].Label != "Z" {
		t.Fatalf("expected group to be reset to single Z span, got %v", group)
	}
}

func TestSetSpansRejectsInvalidRange(t *testing.T) {
	d := newTestDoc(t, []string{"a", "b"}, []bool{true, false})

	for _, sp := range []Span{
		{Start: -1, End: 1},
		{Start: 1, End: 1},
		{Start: 1, End: 0},
		{Start: 0, End: 3},
	} {
		if err := d.SetSpans("src", []Span{sp}); err == nil {
			t.Errorf("expected error for span [%d, %d)", sp.Start, sp.End)
		}
	}
}

func TestTokenCasePredicates(t *testing.T) {
	cases := []struct {
		text                               string
		alpha, upper, title, firstUpper    bool
	}{
		{"NATO", true, true, false, true},
		{"Nato", true, false, true, true},
		{"nato", true, false, false, false},
		{"N.", false, false, true, true},
		{"", false, false, false, false},
		{"iPhone", true, false, false, false},
	}

	for _, c := range cases {
		tok := Token{Text: c.text}
		if got := tok.IsAlpha(); got != c.alpha {
			t.Errorf("%q: IsAlpha = %t", c.text, got)
		}
		if got := tok.IsUpper(); got != c.upper {
			t.Errorf("%q: IsUpper = %t", c.text, got)
		}
		if got := tok.IsTitle(); got != c.title {
			t.Errorf("%q: IsTitle = %t", c.text, got)
		}
		if got := tok.FirstUpper(); got != c.firstUpper {
			t.Errorf("%q: FirstUpper = %t", c.text, got)
		}
	}
}

func TestStreamCollectPreservesOrder(t *testing.T) {
	d1 := newTestDoc(t, []string{"one"}, []bool{false})
	d2 := newTestDoc(t, []string{"two"}, []bool{false})
	d3 := newTestDoc(t, []string{"three"}, []bool{false})

	docs, err := Collect(FromSlice(d1, d2, d3))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 docs, got %d", len(docs))
	}
	if docs[0] != d1 || docs[1] != d2 || docs[2] != d3 {
		t.Error("documents reordered or replaced")
	}
}
