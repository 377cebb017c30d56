// Package frequency holds the form-frequency tables driving truecasing:
// for each lowercased word form, the relative frequency of every surface-case
// variant observed in a reference corpus.
package frequency

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// Table maps a lowercased word form to the relative frequencies of its
// observed surface variants. Frequencies are non-negative and the variants
// of one form sum to at most 1. A Table is loaded once and read-only
// afterwards.
type Table map[string]map[string]float64

// Load reads a JSON-encoded table from r.
func Load(r io.Reader) (Table, error) {
	var t Table
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("frequency: decode table: %w", err)
	}
	return t, nil
}

// LoadFile reads a JSON-encoded table from the file at path.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("frequency: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Freq returns the recorded relative frequency of the exact surface form
// under its lowercased entry, or 0 if the variant was never observed.
func (t Table) Freq(form, variant string) float64 {
	return t[form][variant]
}

// Best returns the most frequent recorded variant for the given lowercased
// form. Variants are scanned in lexicographic key order and ties are broken
// towards the later key, so the result is deterministic. The second return
// is false when the form is absent or has no variants.
func (t Table) Best(form string) (string, bool) {
	variants := t[form]
	if len(variants) == 0 {
		return "", false
	}

	keys := make([]string, 0, len(variants))
	for k := range variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := keys[0]
	for _, k := range keys[1:] {
		if variants[k] >= variants[best] {
			best = k
		}
	}
	return best, true
}
