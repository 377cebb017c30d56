package stat

import (
	"github.com/q-jackboylan/skweak/document"
)

type Handler struct {
	stats Stats
}

type Stats struct {
	NumDocs          int
	NumTokens        int
	NumSpans         int
	TokensPerDocMean int
	TokensPerDocDis  map[int]int
	SpansPerSource   map[string]int
	SpansPerLabel    map[string]int
}

func (h *Handler) Get() Stats {
	return h.stats
}

func NewHandler() *Handler {
	stats := Stats{
		TokensPerDocDis: map[int]int{},
		SpansPerSource:  map[string]int{},
		SpansPerLabel:   map[string]int{},
	}
	return &Handler{
		stats: stats,
	}
}

func (h *Handler) Aggregate(doc *document.Doc) {
	h.stats.NumDocs++
	h.stats.NumTokens += len(doc.Tokens)
	h.stats.TokensPerDocDis[len(doc.Tokens)]++

	for source, group := range doc.Spans {
		h.stats.NumSpans += len(group)
		h.stats.SpansPerSource[source] += len(group)
		for _, span := range group {
			h.stats.SpansPerLabel[span.Label]++
		}
	}

	h.stats.TokensPerDocMean = h.stats.NumTokens / h.stats.NumDocs
}
