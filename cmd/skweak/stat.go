package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/q-jackboylan/skweak/stat"
	"github.com/q-jackboylan/skweak/storage"
)

func statCommand(opts StatOptions, docId *int, ui UI) error {
	p := &Pool{}
	defer p.Close()

	repo, err := NewDocRepository(p, opts.DocPath)
	if err != nil {
		return err
	}

	hdl := stat.NewHandler()

	if docId != nil {
		doc, err := repo.Read(*docId)
		if err != nil {
			return err
		}
		hdl.Aggregate(doc)
	} else {
		in, err := storage.Stream(repo)
		if err != nil {
			return err
		}

		for {
			doc, err := in.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}
			hdl.Aggregate(doc)
		}
	}

	stats := hdl.Get()
	fmt.Fprintf(ui.Out, "Num docs %d, num tokens %d, num spans %d, tokens per doc %d\n",
		stats.NumDocs, stats.NumTokens, stats.NumSpans, stats.TokensPerDocMean)

	for _, source := range sortedKeys(stats.SpansPerSource) {
		fmt.Fprintf(ui.Out, "🔖 %-20s %5d\n", source, stats.SpansPerSource[source])
	}

	for _, label := range sortedKeys(stats.SpansPerLabel) {
		fmt.Fprintf(ui.Out, "🏷  %-20s %5d\n", label, stats.SpansPerLabel[label])
	}

	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
