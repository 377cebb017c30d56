package main

import (
	"fmt"

	"github.com/gosuri/uiprogress"
	"github.com/q-jackboylan/skweak/storage/filesystem"
	"github.com/q-jackboylan/skweak/storage/sqlite/zombiezen"
)

func importDocCommand(opts ImportDocOptions, ui UI) error {
	src, err := filesystem.NewDocStore(opts.From)
	if err != nil {
		return err
	}
	if err := src.LoadList(); err != nil {
		return err
	}
	if err := src.LoadContents(nil); err != nil {
		return err
	}

	pool, err := zombiezen.NewPool(opts.To)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := zombiezen.CreateDocTables(pool); err != nil {
		return fmt.Errorf("failed to create docs table: %w", err)
	}

	dst := zombiezen.NewDocStore(pool)

	fmt.Fprintf(ui.Out, "Reading docs from %s...\n", opts.From)
	docs, err := src.List()
	if err != nil {
		return err
	}

	uiprogress.Start()
	bar := uiprogress.AddBar(len(docs))
	bar.AppendCompleted()
	bar.PrependElapsed()

	count := 0
	for _, meta := range docs {
		doc, err := src.Read(meta.Id)
		if err != nil {
			uiprogress.Stop()
			return fmt.Errorf("failed to read doc %s: %w", meta.Title, err)
		}

		doc.Id = meta.Id
		if doc.Title == "" {
			doc.Title = meta.Title
		}

		if err := dst.Write(doc); err != nil {
			uiprogress.Stop()
			return fmt.Errorf("failed to write doc %s: %w", meta.Title, err)
		}
		count++
		bar.Incr()
	}
	uiprogress.Stop()

	fmt.Fprintf(ui.Out, "Successfully imported %d docs from %s to %s\n", count, opts.From, opts.To)
	return nil
}
