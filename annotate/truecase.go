package annotate

import (
	"errors"
	"strings"

	"github.com/q-jackboylan/skweak/document"
	"github.com/q-jackboylan/skweak/frequency"
	"github.com/q-jackboylan/skweak/pipeline"
)

// DefaultMinFreq is the relative frequency below which an observed surface
// form is rewritten to its most frequent variant.
const DefaultMinFreq = 0.25

// ErrNoFormFrequencies reports a truecase annotator without a loaded
// form-frequency table. Truecasing without frequency evidence is
// meaningless, so this is a configuration error, never skipped silently.
var ErrNoFormFrequencies = errors.New("annotate: cannot truecase without a table of form frequencies")

// TruecaseAnnotator is a model annotator that rewrites noisy token casing to
// the statistically most likely form before inference. NER models are mostly
// trained on properly-cased text and degrade on all-caps headlines or
// inconsistent title-casing; truecasing only changes what text the model
// sees, never the token boundaries the spans are attached back to.
type TruecaseAnnotator struct {
	*ModelAnnotator

	forms frequency.Table

	// MinFreq is the rewrite threshold, DefaultMinFreq unless changed
	// before use.
	MinFreq float64
}

// NewTruecase creates a truecasing annotator around an already-configured
// pipeline and a loaded form-frequency table.
func NewTruecase(name string, p pipeline.Pipeline, forms frequency.Table) *TruecaseAnnotator {
	a := &TruecaseAnnotator{
		ModelAnnotator: NewModel(name, p),
		forms:          forms,
		MinFreq:        DefaultMinFreq,
	}
	a.normalize = a.truecase
	return a
}

// truecase builds the clean clone with normalized casing. A token is
// rewritten when it is alphabetic with an uppercase first rune, qualifies by
// case shape (all-uppercase longer than two runes, or uppercase-first but
// not sentence-initial), and its exact surface form is rarer than MinFreq in
// the table. A title-cased token is never rewritten to an all-uppercase
// variant.
func (a *TruecaseAnnotator) truecase(d *document.Doc) (*document.Doc, error) {
	if len(a.forms) == 0 {
		return nil, ErrNoFormFrequencies
	}

	words := make([]string, 0, len(d.Tokens))
	spaces := make([]bool, 0, len(d.Tokens))

	for _, tok := range d.Tokens {
		text := tok.Text

		if tok.IsAlpha() && tok.FirstUpper() {
			cond1 := tok.IsUpper() && len([]rune(text)) > 2
			cond2 := tok.FirstUpper() && !tok.SentStart
			if cond1 || cond2 {
				lower := strings.ToLower(text)
				if _, known := a.forms[lower]; known {
					if a.forms.Freq(lower, text) < a.MinFreq {
						alternative, ok := a.forms.Best(lower)
						if ok && (!tok.IsTitle() || !allUpper(alternative)) {
							text = alternative
						}
					}
				}
			}
		}

		words = append(words, text)

		// The whitespace flag is carried over from the original token, so
		// the clone keeps the source layout even when the rewritten text
		// differs in length. Token rune offsets may encode gaps wider than
		// one space, so the flags are the ground truth, not the offsets.
		spaces = append(spaces, tok.Whitespace)
	}

	return document.New(words, spaces)
}

func allUpper(s string) bool {
	return document.Token{Text: s}.IsUpper()
}
