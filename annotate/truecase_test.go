package annotate

import (
	"errors"
	"testing"

	"github.com/q-jackboylan/skweak/document"
	"github.com/q-jackboylan/skweak/frequency"
	"github.com/q-jackboylan/skweak/pipeline"
)

func truecaseWords(t *testing.T, forms frequency.Table, d *document.Doc) []string {
	t.Helper()
	a := NewTruecase("tc", nil, forms)
	clone, err := a.truecase(d)
	if err != nil {
		t.Fatalf("truecase: %v", err)
	}
	return clone.Words()
}

func TestTruecaseRewritesRareUppercase(t *testing.T) {
	forms := frequency.Table{
		"brussels": {"Brussels": 0.95, "BRUSSELS": 0.05},
	}
	// Mid-sentence all-caps token with a rare exact form is rewritten to
	// the dominant variant.
	d := newDoc(t, []string{"meeting", "in", "BRUSSELS", "today"}, []bool{true, true, true, false})

	words := truecaseWords(t, forms, d)
	if words[2] != "Brussels" {
		t.Errorf("expected BRUSSELS -> Brussels, got %q", words[2])
	}
}

func TestTruecaseNeverUppercasesTitleToken(t *testing.T) {
	forms := frequency.Table{
		"nato": {"NATO": 0.9, "Nato": 0.1},
	}
	// "Nato" is rare (0.1 < 0.25) and "NATO" dominates, but rewriting a
	// title-cased token to an all-uppercase variant is disallowed.
	d := newDoc(t, []string{"the", "Nato", "summit"}, []bool{true, true, false})

	words := truecaseWords(t, forms, d)
	if words[1] != "Nato" {
		t.Errorf("expected Nato to stay untouched, got %q", words[1])
	}
}

func TestTruecaseLowercasesSpuriousTitle(t *testing.T) {
	forms := frequency.Table{
		"said": {"said": 0.98, "Said": 0.02},
	}
	d := newDoc(t, []string{"he", "Said", "so"}, []bool{true, true, false})

	words := truecaseWords(t, forms, d)
	if words[1] != "said" {
		t.Errorf("expected Said -> said, got %q", words[1])
	}
}

func TestTruecaseNoopOnLowercaseDoc(t *testing.T) {
	forms := frequency.Table{
		"nato": {"NATO": 0.9, "Nato": 0.1},
	}
	d := newDoc(t, []string{"nato", "talks", "resume"}, []bool{true, true, false})

	words := truecaseWords(t, forms, d)
	for i, w := range words {
		if w != d.Tokens[i].Text {
			t.Errorf("token %d rewritten: %q -> %q", i, d.Tokens[i].Text, w)
		}
	}
}

func TestTruecaseNoopAboveThreshold(t *testing.T) {
	forms := frequency.Table{
		"paris": {"Paris": 0.8, "PARIS": 0.2},
	}
	d := newDoc(t, []string{"visit", "Paris", "soon"}, []bool{true, true, false})

	words := truecaseWords(t, forms, d)
	if words[1] != "Paris" {
		t.Errorf("frequent form must not be rewritten, got %q", words[1])
	}
}

func TestTruecaseSkipsSentenceStartTitle(t *testing.T) {
	forms := frequency.Table{
		"may": {"may": 0.9, "May": 0.1},
	}
	// Sentence-initial title token only qualifies through the all-uppercase
	// rule, which does not apply here.
	d := newDoc(t, []string{"May", "I", "go"}, []bool{true, true, false})

	words := truecaseWords(t, forms, d)
	if words[0] != "May" {
		t.Errorf("sentence-start title token must stay, got %q", words[0])
	}
}

func TestTruecaseSkipsShortUppercase(t *testing.T) {
	forms := frequency.Table{
		"un": {"un": 0.9, "UN": 0.1},
	}
	// Two-rune uppercase tokens at sentence start never qualify.
	d := newDoc(t, []string{"UN", "votes"}, []bool{true, false})

	words := truecaseWords(t, forms, d)
	if words[0] != "UN" {
		t.Errorf("short uppercase token must stay, got %q", words[0])
	}
}

func TestTruecaseUnknownFormUnchanged(t *testing.T) {
	forms := frequency.Table{
		"nato": {"NATO": 0.9},
	}
	d := newDoc(t, []string{"the", "Zorblax", "device"}, []bool{true, true, false})

	words := truecaseWords(t, forms, d)
	if words[1] != "Zorblax" {
		t.Errorf("unknown form must stay, got %q", words[1])
	}
}

func TestTruecasePreservesLayout(t *testing.T) {
	forms := frequency.Table{
		"brussels": {"Brussels": 0.95, "BRUSSELS": 0.05},
	}
	d := newDoc(t, []string{"in", "BRUSSELS", ",", "today"}, []bool{true, false, true, false})

	a := NewTruecase("tc", nil, forms)
	clone, err := a.truecase(d)
	if err != nil {
		t.Fatalf("truecase: %v", err)
	}

	if len(clone.Tokens) != len(d.Tokens) {
		t.Fatalf("token count changed: %d -> %d", len(d.Tokens), len(clone.Tokens))
	}
	for i := range d.Tokens {
		if clone.Tokens[i].Whitespace != d.Tokens[i].Whitespace {
			t.Errorf("token %d: whitespace flag changed", i)
		}
	}
}

func TestTruecasePreservesWideGapLayout(t *testing.T) {
	forms := frequency.Table{
		"brussels": {"Brussels": 0.95, "BRUSSELS": 0.05},
	}
	// Imported documents may carry rune offsets encoding gaps wider than one
	// space. The clone's whitespace flags must still match the original
	// flags positionally.
	d := &document.Doc{Tokens: []document.Token{
		{Text: "in", Whitespace: true, Idx: 0, Index: 0, SentStart: true},
		{Text: "BRUSSELS", Whitespace: true, Idx: 4, Index: 1},
		{Text: "today", Whitespace: false, Idx: 14, Index: 2},
	}}

	a := NewTruecase("tc", nil, forms)
	clone, err := a.truecase(d)
	if err != nil {
		t.Fatalf("truecase: %v", err)
	}

	if clone.Tokens[1].Text != "Brussels" {
		t.Errorf("expected BRUSSELS -> Brussels, got %q", clone.Tokens[1].Text)
	}
	for i := range d.Tokens {
		if clone.Tokens[i].Whitespace != d.Tokens[i].Whitespace {
			t.Errorf("token %d (%q): whitespace original=%t clone=%t",
				i, d.Tokens[i].Text, d.Tokens[i].Whitespace, clone.Tokens[i].Whitespace)
		}
	}
}

func TestTruecaseKnownFormWithoutVariantsUnchanged(t *testing.T) {
	forms := frequency.Table{
		"brussels": {},
	}
	// A form present in the table but with no recorded variants has no
	// rewrite target; the token must stay, never become empty.
	d := newDoc(t, []string{"in", "BRUSSELS", "today"}, []bool{true, true, false})

	words := truecaseWords(t, forms, d)
	if words[1] != "BRUSSELS" {
		t.Errorf("variant-less form must stay, got %q", words[1])
	}
}

func TestTruecaseWithoutTableFails(t *testing.T) {
	a := NewTruecase("tc", nil, nil)
	d := newDoc(t, []string{"NATO"}, []bool{false})

	if _, err := a.FindSpans(d); !errors.Is(err, ErrNoFormFrequencies) {
		t.Fatalf("expected ErrNoFormFrequencies, got %v", err)
	}
	if _, err := document.Collect(a.Pipe(document.FromSlice(d))); !errors.Is(err, ErrNoFormFrequencies) {
		t.Fatalf("expected ErrNoFormFrequencies from pipe, got %v", err)
	}
}

func TestTruecaseFeedsRewrittenTextToPipeline(t *testing.T) {
	var seen []string
	capture := pipeline.StageFunc{
		StageName: "capture",
		Fn: func(d *document.Doc) (*document.Doc, error) {
			seen = d.Words()
			return d, nil
		},
	}

	forms := frequency.Table{
		"brussels": {"Brussels": 0.95, "BRUSSELS": 0.05},
	}
	a := NewTruecase("tc", pipeline.Pipeline{capture}, forms)
	d := newDoc(t, []string{"in", "BRUSSELS"}, []bool{true, false})

	if _, err := document.Collect(a.Pipe(document.FromSlice(d))); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(seen) != 2 || seen[1] != "Brussels" {
		t.Fatalf("pipeline saw %v, expected rewritten text", seen)
	}
	// The original document keeps its own surface forms.
	if d.Tokens[1].Text != "BRUSSELS" {
		t.Fatalf("original document was rewritten: %q", d.Tokens[1].Text)
	}
}
