package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/q-jackboylan/skweak/annotate"
	"github.com/q-jackboylan/skweak/pipeline"
	"github.com/q-jackboylan/skweak/pipeline/ner"
	"github.com/q-jackboylan/skweak/pipeline/onnx"
	"github.com/q-jackboylan/skweak/storage"

	"github.com/gosuri/uiprogress"
)

func annotateCommand(opts AnnotateOptions, ui UI) error {
	p := &Pool{}
	defer p.Close()

	repo, err := NewDocRepository(p, opts.DocPath)
	if err != nil {
		return err
	}

	annotators, err := buildAnnotators(p, opts)
	if err != nil {
		return err
	}

	metas, err := repo.List()
	if err != nil {
		return err
	}

	in, err := storage.Stream(repo)
	if err != nil {
		return err
	}

	out := annotate.Chain(in, annotators...)

	// Start progress indicator
	uiprogress.Start()
	bar := uiprogress.AddBar(len(metas))
	bar.AppendCompleted()
	bar.PrependElapsed()
	// Append Doc name to the progress bar
	bar.AppendFunc(func(b *uiprogress.Bar) string {
		i := b.Current() - 1
		if i < 0 || i >= len(metas) {
			return ""
		}
		return metas[i].Title
	})

	count := 0
	for {
		doc, err := out.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			uiprogress.Stop()
			return err
		}

		if err := repo.Write(doc); err != nil {
			uiprogress.Stop()
			return fmt.Errorf("failed to write doc %s: %w", doc.Title, err)
		}
		count++
		bar.Incr()
	}
	uiprogress.Stop()

	fmt.Fprintf(ui.Out, "Annotated %d docs\n", count)
	return nil
}

func buildAnnotators(p *Pool, opts AnnotateOptions) ([]annotate.Annotator, error) {
	var stages pipeline.Pipeline
	if opts.NerUrl != "" {
		stages = append(stages, ner.New("ner-sidecar", opts.NerUrl))
	}
	if opts.OnnxDir != "" {
		stages = append(stages, onnx.New("onnx", onnx.Config{
			ModelDir: opts.OnnxDir,
			MinScore: opts.MinScore,
		}))
	}

	var annotators []annotate.Annotator

	if len(stages) > 0 {
		if opts.FormPath != "" {
			formRepo, err := NewFormRepository(p, opts.FormPath)
			if err != nil {
				return nil, err
			}
			forms, err := formRepo.Forms()
			if err != nil {
				return nil, err
			}

			tc := annotate.NewTruecase(opts.Name, stages, forms)
			if opts.MinFreq > 0 {
				tc.MinFreq = opts.MinFreq
			}
			annotators = append(annotators, tc)
		} else {
			annotators = append(annotators, annotate.NewModel(opts.Name, stages))
		}
	}

	if len(opts.Maps) > 0 {
		pairs, err := parseMappings(opts.Maps)
		if err != nil {
			return nil, err
		}

		lm, err := annotate.NewLabelMapper(opts.MapName, pairs, opts.Sources, opts.Inplace)
		if err != nil {
			return nil, err
		}
		annotators = append(annotators, lm)
	}

	return annotators, nil
}

// parseMappings parses -map values of the form TO=FROM1,FROM2.
func parseMappings(specs []string) ([]annotate.Mapping, error) {
	var pairs []annotate.Mapping
	for _, spec := range specs {
		to, from, ok := strings.Cut(spec, "=")
		if !ok || to == "" || from == "" {
			return nil, fmt.Errorf("invalid mapping %q, expected TO=FROM1,FROM2", spec)
		}
		pairs = append(pairs, annotate.Mapping{From: strings.Split(from, ","), To: to})
	}
	return pairs, nil
}
