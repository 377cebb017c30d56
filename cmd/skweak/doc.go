package main

import (
	"fmt"
	"sort"

	"github.com/q-jackboylan/skweak/render"
)

func docCommand(opts DocOptions, docId *int, ui UI) error {
	p := &Pool{}
	defer p.Close()

	repo, err := NewDocRepository(p, opts.DocPath)
	if err != nil {
		return err
	}

	if docId == nil {
		metas, err := repo.List()
		if err != nil {
			return err
		}

		for _, meta := range metas {
			fmt.Fprintf(ui.Out, "📖 %d %s \n", meta.Id, meta.Title)
		}

		return nil
	}

	doc, err := repo.Read(*docId)
	if err != nil {
		return err
	}

	r := render.NewRenderer(ui.Out)
	r.HasColor = !opts.NoColor
	r.HasPrefix = !opts.NoPrefix
	r.Format = opts.Format
	r.AddDocName(doc.Id, doc.Title)

	sources := []string{opts.Source}
	if opts.Source == "" {
		sources = doc.Sources()
		sort.Strings(sources)
	}

	for _, source := range sources {
		r.Doc(doc, source)
	}
	r.Flush()

	return nil
}
