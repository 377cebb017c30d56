package main

import (
	"fmt"
	"strings"
)

func lsLabelsCommand(opts LsLabelsOptions, ui UI) error {
	p := &Pool{}
	defer p.Close()

	repo, err := NewDocRepository(p, opts.DocPath)
	if err != nil {
		return err
	}

	labels, err := repo.Labels(opts.Match)
	if err != nil {
		return err
	}

	if len(labels) > 0 {
		fmt.Fprintln(ui.Out, strings.Join(labels, ", "))
	}

	return nil
}
