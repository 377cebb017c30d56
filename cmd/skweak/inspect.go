package main

import (
	"github.com/q-jackboylan/skweak/inspect"
	"github.com/q-jackboylan/skweak/render"
)

func inspectCommand(opts InspectOptions, ui UI) error {
	p := &Pool{}
	defer p.Close()

	repo, err := NewDocRepository(p, opts.DocPath)
	if err != nil {
		return err
	}

	r := render.NewRenderer(ui.Out)
	r.HasColor = !opts.NoColor
	r.HasPrefix = !opts.NoPrefix
	r.Format = opts.Format

	h := inspect.NewHandler(repo, r)
	return h.Run()
}
