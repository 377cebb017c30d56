package document

import (
	"fmt"
	"strings"
	"unicode"
)

// Token represents a word of the document, with layout and sentence metadata.
// Tokens are immutable once the Doc is constructed.
type Token struct {
	// The surface text of the word.
	Text string `json:"text"`

	// Whitespace reports whether the token is followed by a space in the
	// original text.
	Whitespace bool `json:"ws"`

	// the index of the start rune of the token in the original doc text
	Idx int `json:"idx"`

	// The index of the token in the document, starting at 0.
	Index int `json:"index"`

	// SentenceId is the index of the sentence the token belongs to.
	SentenceId int `json:"sent"`

	// SentStart reports whether the token opens its sentence.
	SentStart bool `json:"sent_start"`
}

// IsAlpha reports whether the token text consists only of letters.
func (t Token) IsAlpha() bool {
	if t.Text == "" {
		return false
	}
	for _, r := range t.Text {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// IsUpper reports whether all cased runes of the token are uppercase.
func (t Token) IsUpper() bool {
	if t.Text == "" {
		return false
	}
	hasCased := false
	for _, r := range t.Text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}

// IsTitle reports whether the token is title-cased: first rune uppercase,
// remaining cased runes lowercase.
func (t Token) IsTitle() bool {
	runes := []rune(t.Text)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// FirstUpper reports whether the first rune of the token is uppercase.
func (t Token) FirstUpper() bool {
	for _, r := range t.Text {
		return unicode.IsUpper(r)
	}
	return false
}

// Span is a half-open token-index range [Start, End) with a label,
// always interpreted against the document that owns it.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

// Doc is an ordered token sequence sharing one whitespace layout, plus named
// span groups keyed by annotator name. Groups are independent and may overlap.
type Doc struct {
	Id int `json:"id,omitempty"`

	Title string `json:"title,omitempty"`

	Tokens []Token `json:"tokens"`

	// Spans maps a source name to its span group.
	Spans map[string][]Span `json:"spans,omitempty"`

	// Ents is the entity slot an inference pipeline stage writes to.
	// It is only ever populated on clean clones, never on caller documents.
	Ents []Span `json:"ents,omitempty"`
}

// Library is a collection of Doc
type Library []*Doc

// New builds a Doc from token texts and their trailing-whitespace flags.
// Rune offsets and token indices are recomputed from scratch; sentence
// boundaries default to a single sentence starting at token 0.
func New(words []string, spaces []bool) (*Doc, error) {
	if len(words) != len(spaces) {
		return nil, fmt.Errorf("document: %d words but %d space flags", len(words), len(spaces))
	}

	tokens := make([]Token, len(words))
	idx := 0
	for i, w := range words {
		tokens[i] = Token{
			Text:       w,
			Whitespace: spaces[i],
			Idx:        idx,
			Index:      i,
			SentStart:  i == 0,
		}
		idx += len([]rune(w))
		if spaces[i] {
			idx++
		}
	}

	return &Doc{Tokens: tokens}, nil
}

// Text reconstructs the document text from the tokens and their whitespace
// layout.
func (d *Doc) Text() string {
	var b strings.Builder
	for _, tok := range d.Tokens {
		b.WriteString(tok.Text)
		if tok.Whitespace {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Words returns the surface texts of all tokens.
func (d *Doc) Words() []string {
	words := make([]string, len(d.Tokens))
	for i, tok := range d.Tokens {
		words[i] = tok.Text
	}
	return words
}

// Clone returns a clean document: same token texts, offsets and whitespace
// layout as d, but no span groups and no entity slot. Annotators hand clones
// to inference pipelines so prior annotations cannot leak into the model.
func (d *Doc) Clone() *Doc {
	tokens := make([]Token, len(d.Tokens))
	copy(tokens, d.Tokens)
	return &Doc{Tokens: tokens}
}

// CheckSpan validates a span range against the document.
func (d *Doc) CheckSpan(s Span) error {
	if s.Start < 0 || s.Start >= s.End || s.End > len(d.Tokens) {
		return fmt.Errorf("document: invalid span [%d, %d) for %d tokens", s.Start, s.End, len(d.Tokens))
	}
	return nil
}

// SetSpans resets the span group of the given source to the provided spans.
// The previous group content under that name is discarded, never appended to.
func (d *Doc) SetSpans(source string, spans []Span) error {
	for _, s := range spans {
		if err := d.CheckSpan(s); err != nil {
			return err
		}
	}
	if d.Spans == nil {
		d.Spans = map[string][]Span{}
	}
	group := make([]Span, len(spans))
	copy(group, spans)
	d.Spans[source] = group
	return nil
}

// Sources returns the names of all span groups present on the document,
// in unspecified order.
func (d *Doc) Sources() []string {
	sources := make([]string, 0, len(d.Spans))
	for name := range d.Spans {
		sources = append(sources, name)
	}
	return sources
}
