package annotate

import (
	"reflect"
	"testing"

	"github.com/q-jackboylan/skweak/document"
)

func nerDoc(t *testing.T) *document.Doc {
	t.Helper()
	d := newDoc(t, []string{"Monday", "the", "president", "spoke"}, []bool{true, true, true, false})
	err := d.SetSpans("ner", []document.Span{
		{Start: 0, End: 1, Label: "DATE"},
		{Start: 2, End: 3, Label: "PERSON"},
	})
	if err != nil {
		t.Fatalf("SetSpans: %v", err)
	}
	return d
}

func TestLabelMapperInPlace(t *testing.T) {
	m, err := NewLabelMapper("coarse", []Mapping{{From: []string{"DATE", "EVENT"}, To: "MISC"}}, []string{"ner"}, true)
	if err != nil {
		t.Fatalf("NewLabelMapper: %v", err)
	}

	d := nerDoc(t)
	out, err := document.Collect(m.Pipe(document.FromSlice(d)))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(out) != 1 || out[0] != d {
		t.Fatal("pipe must yield the same document")
	}

	want := []document.Span{
		{Start: 0, End: 1, Label: "MISC"},
		{Start: 2, End: 3, Label: "PERSON"},
	}
	if !reflect.DeepEqual(d.Spans["ner"], want) {
		t.Fatalf("expected %v, got %v", want, d.Spans["ner"])
	}

	// The mapper still materializes its own (empty) group.
	if group, ok := d.Spans["coarse"]; !ok || len(group) != 0 {
		t.Fatalf("expected empty own group, got %v (ok=%t)", group, ok)
	}
}

func TestLabelMapperInPlaceIdempotent(t *testing.T) {
	m, err := NewLabelMapper("coarse", []Mapping{{From: []string{"DATE", "EVENT"}, To: "MISC"}}, []string{"ner"}, true)
	if err != nil {
		t.Fatalf("NewLabelMapper: %v", err)
	}

	d := nerDoc(t)
	if err := Apply(m, d); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	once := append([]document.Span(nil), d.Spans["ner"]...)

	if err := Apply(m, d); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if !reflect.DeepEqual(d.Spans["ner"], once) {
		t.Fatalf("mapping not idempotent: %v != %v", d.Spans["ner"], once)
	}
}

func TestLabelMapperNewGroup(t *testing.T) {
	m, err := NewLabelMapper("coarse", []Mapping{{From: []string{"DATE", "EVENT"}, To: "MISC"}}, []string{"ner"}, false)
	if err != nil {
		t.Fatalf("NewLabelMapper: %v", err)
	}

	d := nerDoc(t)
	if err := Apply(m, d); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Only the mapped span is surfaced in the new group.
	want := []document.Span{{Start: 0, End: 1, Label: "MISC"}}
	if !reflect.DeepEqual(d.Spans["coarse"], want) {
		t.Fatalf("expected %v, got %v", want, d.Spans["coarse"])
	}

	// The source group stays untouched.
	wantSrc := []document.Span{
		{Start: 0, End: 1, Label: "DATE"},
		{Start: 2, End: 3, Label: "PERSON"},
	}
	if !reflect.DeepEqual(d.Spans["ner"], wantSrc) {
		t.Fatalf("source group changed: %v", d.Spans["ner"])
	}
}

func TestLabelMapperMissingSourceIgnored(t *testing.T) {
	m, err := NewLabelMapper("coarse", []Mapping{{From: []string{"DATE"}, To: "MISC"}}, []string{"absent", "ner"}, true)
	if err != nil {
		t.Fatalf("NewLabelMapper: %v", err)
	}

	d := nerDoc(t)
	if err := Apply(m, d); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if d.Spans["ner"][0].Label != "MISC" {
		t.Fatalf("present source not mapped: %v", d.Spans["ner"])
	}
}

func TestLabelMapperDuplicateKeyRejected(t *testing.T) {
	_, err := NewLabelMapper("coarse", []Mapping{
		{From: []string{"DATE", "EVENT"}, To: "MISC"},
		{From: []string{"EVENT"}, To: "ORG"},
	}, []string{"ner"}, true)
	if err == nil {
		t.Fatal("expected error for duplicate source label")
	}
}
