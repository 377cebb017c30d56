package inspect

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/q-jackboylan/skweak/document"
	"github.com/q-jackboylan/skweak/render"
	"github.com/q-jackboylan/skweak/storage"

	"github.com/c-bata/go-prompt"
)

type Handler struct {
	DocRepo  storage.DocReader
	Renderer *render.Renderer

	// doc cache for span text rendering
	docs map[int]*document.Doc
}

func NewHandler(dr storage.DocReader, r *render.Renderer) *Handler {
	return &Handler{
		DocRepo:  dr,
		Renderer: r,
		docs:     map[int]*document.Doc{},
	}
}

func (h *Handler) Run() error {

	fmt.Println("🔑 Ctrl+X: Toggle prefix, Ctrl+F: next Format, 🔧 quit")

	sources, err := h.sources()
	if err != nil {
		return err
	}

	labels, err := h.DocRepo.Labels("")
	if err != nil {
		return err
	}

	// initialize prompt history
	history := []string{}

	for {

		in := prompt.Input("      🔖 ", h.completer(sources, labels),
			prompt.OptionTitle("skweak inspect"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(12),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlF,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.NextFormat()
					fmt.Println("Format set to: " + h.Renderer.Format)
				}}),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlX,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.NextPrefix()
					fmt.Println("Prefix set to " + fmt.Sprintf("%t", h.Renderer.HasPrefix))
				}}),
		)

		if in == "quit" {
			return nil
		}

		history = append(history, in)
		source, label, err := h.parse(in)
		if err != nil {
			continue
		}

		if err := h.show(source, label); err != nil {
			fmt.Printf("Error finding spans: %v\n", err)
			continue
		}
	}
}

func (h *Handler) show(source, label string) error {
	err := h.DocRepo.FindSpans(source, label, func(hit storage.SpanHit) error {
		doc, err := h.doc(hit.DocId)
		if err != nil {
			return err
		}

		h.Renderer.AddDocName(hit.DocId, hit.DocTitle)
		h.Renderer.Doc(&document.Doc{
			Id:     hit.DocId,
			Title:  hit.DocTitle,
			Tokens: doc.Tokens,
			Spans:  map[string][]document.Span{hit.Source: {hit.Span}},
		}, hit.Source)
		return nil
	})
	if err != nil {
		return err
	}

	h.Renderer.Flush()
	return nil
}

func (h *Handler) doc(id int) (*document.Doc, error) {
	if d, ok := h.docs[id]; ok {
		return d, nil
	}

	d, err := h.DocRepo.Read(id)
	if err != nil {
		return nil, err
	}
	h.docs[id] = d
	return d, nil
}

// sources collects the annotation source names present in the repository.
func (h *Handler) sources() ([]string, error) {
	metas, err := h.DocRepo.List()
	if err != nil {
		return nil, err
	}

	set := map[string]struct{}{}
	for _, meta := range metas {
		doc, err := h.doc(meta.Id)
		if err != nil {
			return nil, err
		}
		for _, source := range doc.Sources() {
			set[source] = struct{}{}
		}
	}

	sources := make([]string, 0, len(set))
	for source := range set {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources, nil
}

func (h *Handler) completer(sources, labels []string) func(in prompt.Document) []prompt.Suggest {
	return func(in prompt.Document) []prompt.Suggest {

		s := []prompt.Suggest{}
		befCursor := in.TextBeforeCursor()

		// Only one character in line
		if "" == befCursor {
			return s
		}

		tokens := strings.Split(befCursor, " ")

		if len(tokens) == 1 {
			for _, source := range sources {
				if strings.HasPrefix(source, tokens[0]) {
					s = append(s, prompt.Suggest{Text: source, Description: "🔖 source"})
				}
			}
			return s
		}

		if len(tokens) == 2 {
			for _, label := range labels {
				if strings.HasPrefix(label, tokens[1]) {
					s = append(s, prompt.Suggest{Text: label, Description: "🏷  label"})
				}
			}
		}

		return s
	}
}

// parse splits the prompt line into a source name and an optional label.
func (h *Handler) parse(in string) (string, string, error) {

	tokens := strings.Fields(in)

	if len(tokens) == 0 {
		return "", "", errors.New("no source given")
	}

	source := tokens[0]
	label := ""
	if len(tokens) > 1 {
		label = tokens[1]
	}

	return source, label, nil
}
