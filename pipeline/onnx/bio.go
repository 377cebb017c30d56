package onnx

import "strings"

type bioSpan struct {
	label      string
	start, end int
	score      float64
}

// mergeBIO collapses per-token BIO tags into half-open token-index spans.
// The span score is the mean score of its member tokens. Malformed tags are
// skipped.
func mergeBIO(tags []string, scores []float64) []bioSpan {
	out := make([]bioSpan, 0)
	var cur *bioSpan
	count := 0.0

	flush := func() {
		if cur != nil {
			cur.score /= count
			out = append(out, *cur)
			cur = nil
			count = 0
		}
	}

	for i, tag := range tags {
		if tag == "O" || tag == "" {
			flush()
			continue
		}
		parts := strings.SplitN(tag, "-", 2)
		if len(parts) != 2 {
			continue
		}
		prefix, label := parts[0], parts[1]
		if prefix != "B" && prefix != "I" {
			continue
		}
		if prefix == "B" || cur == nil || cur.label != label {
			flush()
			cur = &bioSpan{label: label, start: i, end: i + 1, score: scores[i]}
			count = 1
			continue
		}
		cur.end = i + 1
		cur.score += scores[i]
		count++
	}
	flush()
	return out
}
