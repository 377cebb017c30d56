// Package ner provides a pipeline stage that calls an external NER model
// served as an HTTP sidecar. The sidecar receives the document's token texts
// and answers with token-index spans; any transport or sidecar failure
// propagates to the caller unchanged.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/q-jackboylan/skweak/document"
	"github.com/q-jackboylan/skweak/pipeline"
)

const defaultTimeout = 10 * time.Second

// Client calls the sidecar's /spans endpoint.
type Client struct {
	name string
	url  string
	http *http.Client
}

var _ pipeline.Stage = (*Client)(nil)

// New creates a stage pointing at the given base URL
// (e.g. "http://skweak-ner:8001").
func New(name, baseURL string) *Client {
	return &Client{
		name: name,
		url:  baseURL + "/spans",
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

type spansRequest struct {
	Tokens []string `json:"tokens"`
}

type spansResponse struct {
	Spans []sidecarSpan `json:"spans"`
}

type sidecarSpan struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

func (c *Client) Name() string { return c.name }

// Process sends the document's tokens to the sidecar and stores the returned
// entities on the document.
func (c *Client) Process(d *document.Doc) (*document.Doc, error) {
	body, err := json.Marshal(spansRequest{Tokens: d.Words()})
	if err != nil {
		return nil, fmt.Errorf("ner: marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ner: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ner: sidecar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ner: sidecar returned status %d", resp.StatusCode)
	}

	var decoded spansResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("ner: decode response: %w", err)
	}

	ents := make([]document.Span, 0, len(decoded.Spans))
	for _, s := range decoded.Spans {
		span := document.Span{Start: s.Start, End: s.End, Label: s.Label}
		if err := d.CheckSpan(span); err != nil {
			return nil, fmt.Errorf("ner: sidecar span: %w", err)
		}
		ents = append(ents, span)
	}
	d.Ents = ents

	slog.Debug("ner sidecar annotated doc", "tokens", len(d.Tokens), "spans", len(ents))
	return d, nil
}

// Pipe applies Process one document at a time; the sidecar protocol has no
// batch endpoint.
func (c *Client) Pipe(in document.Stream) document.Stream {
	return pipeline.Each(c, in)
}
