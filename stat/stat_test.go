package stat

import (
	"testing"

	"github.com/q-jackboylan/skweak/document"
)

func buildDoc(t *testing.T, words []string) *document.Doc {
	t.Helper()
	spaces := make([]bool, len(words))
	for i := range spaces {
		spaces[i] = i < len(words)-1
	}
	d, err := document.New(words, spaces)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestAggregate(t *testing.T) {
	first := buildDoc(t, []string{"Pierre", "lives", "in", "Oslo"})
	if err := first.SetSpans("ner", []document.Span{
		{Start: 0, End: 1, Label: "PERSON"},
		{Start: 3, End: 4, Label: "LOC"},
	}); err != nil {
		t.Fatalf("SetSpans: %v", err)
	}

	second := buildDoc(t, []string{"Oslo", "again"})
	if err := second.SetSpans("gazetteer", []document.Span{
		{Start: 0, End: 1, Label: "LOC"},
	}); err != nil {
		t.Fatalf("SetSpans: %v", err)
	}

	hdl := NewHandler()
	hdl.Aggregate(first)
	hdl.Aggregate(second)

	stats := hdl.Get()
	if stats.NumDocs != 2 {
		t.Errorf("expected 2 docs, got %d", stats.NumDocs)
	}
	if stats.NumTokens != 6 {
		t.Errorf("expected 6 tokens, got %d", stats.NumTokens)
	}
	if stats.NumSpans != 3 {
		t.Errorf("expected 3 spans, got %d", stats.NumSpans)
	}
	if stats.TokensPerDocMean != 3 {
		t.Errorf("expected mean 3, got %d", stats.TokensPerDocMean)
	}
	if stats.SpansPerSource["ner"] != 2 || stats.SpansPerSource["gazetteer"] != 1 {
		t.Errorf("unexpected per-source counts: %v", stats.SpansPerSource)
	}
	if stats.SpansPerLabel["LOC"] != 2 || stats.SpansPerLabel["PERSON"] != 1 {
		t.Errorf("unexpected per-label counts: %v", stats.SpansPerLabel)
	}
	if stats.TokensPerDocDis[4] != 1 || stats.TokensPerDocDis[2] != 1 {
		t.Errorf("unexpected distribution: %v", stats.TokensPerDocDis)
	}
}
