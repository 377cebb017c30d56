package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/q-jackboylan/skweak/document"
)

const Defaultformat = "all"

var (
	Black   = "\033[1;30m"
	Red     = "\033[1;31m"
	Green   = "\033[1;32m"
	Yellow  = "\033[0;33m"
	Purple  = "\033[1;34m"
	Magenta = "\033[1;35m"
	Teal    = "\033[1;36m"
	Gray    = "\033[0;37m"
	White   = "\033[1;37m"
	Off     = "\033[0m"
	//Yellow256  = "\033[1;38;5;202m"
	Yellow256 = "\033[1;38;5;130m"
	Grey256   = "\033[1;38;5;145m"
	Green256  = "\033[1;38;5;70m"
	ClearLine = "\033[K"
)

func SupportedFormats() []string {
	return []string{"all", "spans", "aggr"}
}

type Renderer struct {
	W io.Writer

	HasColor bool

	HasPrefix bool

	// Format determines what is printed for a document
	//
	// all: print the full document text, highlighting annotated tokens
	// spans: print one line per span with its label
	// aggr: aggregate label counts over all rendered documents
	Format string

	DocNames map[int]string

	aggrLabels map[string]int
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{
		W:          w,
		DocNames:   map[int]string{},
		aggrLabels: map[string]int{},
	}
}

func (r *Renderer) AddDocName(docId int, name string) {
	r.DocNames[docId] = name
}

// Doc renders the spans of one annotation source of a document, according to
// the Format option.
func (r *Renderer) Doc(d *document.Doc, source string) {
	group := d.Spans[source]

	switch r.Format {
	case "all":
		prefix := r.buildPrefixDoc(d, source)
		text := r.text(d.Tokens, group)
		fmt.Fprintf(r.W, "%s%s\n", prefix, strings.ReplaceAll(text, "\n", " "))

	case "spans":
		for _, span := range group {
			prefix := r.buildPrefixSpan(d, span)
			fmt.Fprintf(r.W, "%s%s %s\n", prefix, r.label(span.Label), r.SpanText(d, span))
		}

	case "aggr":
		for _, span := range group {
			r.aggrLabels[span.Label]++
		}
	}
}

// Flush prints the aggregated label counts collected by the aggr format.
func (r *Renderer) Flush() {
	if r.Format != "aggr" {
		return
	}

	// flatten map to use sortSlice
	sl := []struct {
		NumSpans int
		Label    string
	}{}

	for label, n := range r.aggrLabels {
		sl = append(sl, struct {
			NumSpans int
			Label    string
		}{n, label})
	}

	sort.SliceStable(sl, func(i, j int) bool {
		if sl[i].NumSpans != sl[j].NumSpans {
			return sl[i].NumSpans > sl[j].NumSpans
		}

		return sl[i].Label < sl[j].Label
	})

	var prefix string
	for _, s := range sl {
		if r.HasPrefix {
			prefix = fmt.Sprintf("[%5d] ✍  ", s.NumSpans)
		}

		fmt.Fprintf(r.W, "%s%s\n", prefix, s.Label)
	}
}

// SpanText returns the original text covered by the span, with the spacing of
// the source document.
func (r *Renderer) SpanText(d *document.Doc, s document.Span) string {
	if err := d.CheckSpan(s); err != nil {
		return ""
	}

	text := r.text(d.Tokens[s.Start:s.End], nil)
	return strings.ReplaceAll(text, "\n", " ")
}

// text rebuilds the document text from the token rune offsets.
//
// The `idx` field of each token is the rune offset of the token in the
// original text. The gap between consecutive offsets, minus the rune length
// of the previous token, is the whitespace to restore between them.
func (r *Renderer) text(tokens []document.Token, spans []document.Span) string {
	var str strings.Builder
	var lastIdx, lastLen int
	for i, token := range tokens {
		l := len([]rune(token.Text))
		if i == 0 {
			str.WriteString(r.colorToken(token, spans))
			lastIdx = token.Idx
			lastLen = l
			continue
		}

		diff := token.Idx - lastIdx

		if diff > 0 {
			str.WriteString(strings.Repeat(" ", diff-lastLen))
			str.WriteString(r.colorToken(token, spans))
		}

		lastIdx = token.Idx
		lastLen = l
	}

	return str.String()
}

func (r *Renderer) colorToken(token document.Token, spans []document.Span) string {
	if !r.HasColor {
		return token.Text
	}

	for _, s := range spans {
		if token.Index >= s.Start && token.Index < s.End {
			return Green256 + token.Text + Off
		}
	}

	return token.Text
}

func (r *Renderer) label(label string) string {
	if !r.HasColor {
		return label
	}

	return Yellow256 + label + Off
}

func (r *Renderer) buildPrefixDoc(d *document.Doc, source string) string {
	if !r.HasPrefix {
		return ""
	}

	return fmt.Sprintf("[%s %2d 🏷  %-12s] ✍  ", r.title(d.Id), d.Id, source)
}

func (r *Renderer) buildPrefixSpan(d *document.Doc, s document.Span) string {
	if !r.HasPrefix {
		return ""
	}

	return fmt.Sprintf("[%s %2d %3d:%-3d] ✍  ", r.title(d.Id), d.Id, s.Start, s.End)
}

func (r *Renderer) title(docId int) string {
	title := r.DocNames[docId]
	l := len(title)
	var part string
	if l <= 20 {
		part = fmt.Sprintf("%-20s", title)
	} else {
		part = title[:20]
	}

	if !r.HasColor {
		return part
	}

	return Grey256 + part + Off
}

// NextFormat sets the Renderer Format option to a different one, following
// the SupportedFormats() order.
func (r *Renderer) NextFormat() {

	supported := SupportedFormats()
	for i, format := range supported {
		if format == r.Format {
			switch i {
			case len(supported) - 1:
				r.Format = supported[0]
			default:
				r.Format = supported[i+1]
			}

			break
		}
	}
}

func (r *Renderer) NextPrefix() {

	// toggle
	r.HasPrefix = !r.HasPrefix
}
