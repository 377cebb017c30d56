package render

import (
	"encoding/json"
	"io"

	"github.com/q-jackboylan/skweak/document"
)

// JSONRenderer writes documents as JSON to a writer.
type JSONRenderer struct {
	W io.Writer
}

// NewJSONRenderer creates a JSONRenderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{W: w}
}

// Render serializes the documents as a JSON array.
func (r *JSONRenderer) Render(docs document.Library) error {
	return json.NewEncoder(r.W).Encode(docs)
}
