package main

import (
	"fmt"

	"github.com/q-jackboylan/skweak/storage/filesystem"
	"github.com/q-jackboylan/skweak/storage/sqlite/zombiezen"
)

func importFormsCommand(opts ImportFormsOptions, ui UI) error {
	src := filesystem.NewFormStore(opts.From)
	table, err := src.Forms()
	if err != nil {
		return err
	}

	pool, err := zombiezen.NewPool(opts.To)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := zombiezen.CreateFormTables(pool); err != nil {
		return fmt.Errorf("failed to create forms table: %w", err)
	}

	dst := zombiezen.NewFormStore(pool)
	if err := dst.WriteForms(table); err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "Successfully imported %d forms from %s to %s\n", len(table), opts.From, opts.To)
	return nil
}
