package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/q-jackboylan/skweak/render"
)

// Option structs for subcommands that have flags
type AnnotateOptions struct {
	DocPath  string
	Name     string
	NerUrl   string
	OnnxDir  string
	MinScore float64
	FormPath string
	MinFreq  float64
	Maps     []string
	MapName  string
	Sources  []string
	Inplace  bool
}

type DocOptions struct {
	DocPath  string
	Source   string
	NoColor  bool
	NoPrefix bool
	Format   string
}

type LsLabelsOptions struct {
	DocPath string
	Match   string
}

type StatOptions struct {
	DocPath string
}

type InspectOptions struct {
	DocPath  string
	NoColor  bool
	NoPrefix bool
	Format   string
}

type ImportDocOptions struct {
	From string
	To   string
}

type ImportFormsOptions struct {
	From string
	To   string
}

// stringSliceFlag implements flag.Value for multi-value strings
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// enumFlag implements flag.Value for restricted strings
type enumFlag struct {
	allowed []string
	value   *string
}

func (e *enumFlag) String() string {
	if e.value == nil {
		return ""
	}
	return *e.value
}

func (e *enumFlag) Set(value string) error {
	for _, a := range e.allowed {
		if a == value {
			*e.value = value
			return nil
		}
	}
	return fmt.Errorf("allowed values are %s", strings.Join(e.allowed, ", "))
}

func parseMainArgs(args []string, ui UI) (string, []string, error) {
	fs := flag.NewFlagSet("skweak", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	setupUsage(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return "", nil, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return "", nil, err
	}

	if fs.NArg() == 0 {
		fs.SetOutput(ui.Err)
		fs.Usage()
		return "", nil, errors.New("no command provided")
	}

	cmd := fs.Arg(0)
	cmdArgs := fs.Args()[1:]
	return cmd, cmdArgs, nil
}

func parseAnnotateArgs(args []string, ui UI) (AnnotateOptions, error) {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts AnnotateOptions
	fs.StringVar(&opts.DocPath, "doc-path", os.Getenv("SKWEAK_DOC_PATH"), "Path to docs directory or SQLite file")
	fs.StringVar(&opts.DocPath, "d", os.Getenv("SKWEAK_DOC_PATH"), "alias for -doc-path")

	fs.StringVar(&opts.Name, "name", "ner", "Name of the span group written by the model annotator")
	fs.StringVar(&opts.NerUrl, "ner-url", os.Getenv("SKWEAK_NER_URL"), "Base URL of the NER sidecar service")
	fs.StringVar(&opts.OnnxDir, "onnx", "", "Directory with model.onnx, labels.json and tokenizer.json")
	fs.Float64Var(&opts.MinScore, "min-score", 0, "Discard spans below this model score")

	fs.StringVar(&opts.FormPath, "truecase", os.Getenv("SKWEAK_FORMS_PATH"), "Form frequency table (JSON file or SQLite file) to truecase documents before annotation")
	fs.Float64Var(&opts.MinFreq, "min-freq", 0, "Frequency threshold below which a form is rewritten")

	maps := (*stringSliceFlag)(&opts.Maps)
	fs.Var(maps, "map", "Label mapping TO=FROM1,FROM2 (repeatable)")
	fs.Var(maps, "m", "alias for -map")

	fs.StringVar(&opts.MapName, "map-name", "mapped", "Name of the span group written by the label mapper")

	sources := (*stringSliceFlag)(&opts.Sources)
	fs.Var(sources, "source", "Span group the label mapper reads (repeatable)")
	fs.Var(sources, "s", "alias for -source")

	fs.BoolVar(&opts.Inplace, "inplace", false, "Rewrite the source span groups instead of writing a new one")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s annotate [options]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Run an annotator chain over the stored documents and persist the spans.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return opts, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return opts, err
	}

	if opts.DocPath == "" {
		return opts, errors.New("Doc path must be specified via -d or SKWEAK_DOC_PATH")
	}

	if _, err := os.Stat(opts.DocPath); err != nil {
		return opts, fmt.Errorf("Doc path not found: %s", opts.DocPath)
	}

	if opts.NerUrl == "" && opts.OnnxDir == "" && len(opts.Maps) == 0 {
		return opts, errors.New("no annotator configured: need -ner-url, -onnx or -map")
	}

	if len(opts.Sources) == 0 {
		opts.Sources = []string{opts.Name}
	}

	return opts, nil
}

func parseDocArgs(args []string, ui UI) (DocOptions, *int, error) {
	fs := flag.NewFlagSet("doc", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts DocOptions
	fs.StringVar(&opts.DocPath, "doc-path", os.Getenv("SKWEAK_DOC_PATH"), "Path to docs directory or SQLite file")
	fs.StringVar(&opts.DocPath, "d", os.Getenv("SKWEAK_DOC_PATH"), "alias for -doc-path")

	fs.StringVar(&opts.Source, "source", "", "Span group to show")
	fs.StringVar(&opts.Source, "s", "", "alias for -source")

	fs.BoolVar(&opts.NoColor, "no-color", false, "Show the document without formatting (color)")
	fs.BoolVar(&opts.NoColor, "c", false, "alias for -no-color")

	fs.BoolVar(&opts.NoPrefix, "no-prefix", false, "Show the document without prefixes with metadata")
	fs.BoolVar(&opts.NoPrefix, "x", false, "alias for -no-prefix")

	opts.Format = render.Defaultformat
	formatFlag := &enumFlag{allowed: render.SupportedFormats(), value: &opts.Format}
	fs.Var(formatFlag, "format", "Show whole document (all), one line per span (spans) or label counts (aggr)")
	fs.Var(formatFlag, "f", "alias for -format")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s doc [options] [docId]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  List documents, or show the spans of the document with the given id.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return opts, nil, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return opts, nil, err
	}

	if opts.DocPath == "" {
		return opts, nil, errors.New("Doc path must be specified via -d or SKWEAK_DOC_PATH")
	}

	if _, err := os.Stat(opts.DocPath); err != nil {
		return opts, nil, fmt.Errorf("Doc path not found: %s", opts.DocPath)
	}

	if fs.NArg() > 1 {
		fs.SetOutput(ui.Err)
		fs.Usage()
		return opts, nil, errors.New("doc command accepts at most one argument")
	}

	var docId *int
	if fs.NArg() == 1 {
		v, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return opts, nil, fmt.Errorf("invalid docId: %v", err)
		}
		docId = &v
	}

	return opts, docId, nil
}

func parseLsLabelsArgs(args []string, ui UI) (LsLabelsOptions, error) {
	fs := flag.NewFlagSet("ls-labels", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts LsLabelsOptions
	fs.StringVar(&opts.DocPath, "doc-path", os.Getenv("SKWEAK_DOC_PATH"), "Path to docs directory or SQLite file")
	fs.StringVar(&opts.DocPath, "d", os.Getenv("SKWEAK_DOC_PATH"), "alias for -doc-path")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s ls-labels [options] [match]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  List the span labels present in the repository (contains match).\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return opts, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return opts, err
	}

	if opts.DocPath == "" {
		return opts, errors.New("Doc path must be specified via -d or SKWEAK_DOC_PATH")
	}

	if _, err := os.Stat(opts.DocPath); err != nil {
		return opts, fmt.Errorf("Doc path not found: %s", opts.DocPath)
	}

	if fs.NArg() > 0 {
		opts.Match = fs.Arg(0)
	}

	return opts, nil
}

func parseStatArgs(args []string, ui UI) (StatOptions, *int, error) {
	fs := flag.NewFlagSet("stat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts StatOptions
	fs.StringVar(&opts.DocPath, "doc-path", os.Getenv("SKWEAK_DOC_PATH"), "Path to docs directory or SQLite file")
	fs.StringVar(&opts.DocPath, "d", os.Getenv("SKWEAK_DOC_PATH"), "alias for -doc-path")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s stat [options] [docId]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Show annotation statistics for all documents or one document.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return opts, nil, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return opts, nil, err
	}

	if opts.DocPath == "" {
		return opts, nil, errors.New("Doc path must be specified via -d or SKWEAK_DOC_PATH")
	}

	if _, err := os.Stat(opts.DocPath); err != nil {
		return opts, nil, fmt.Errorf("Doc path not found: %s", opts.DocPath)
	}

	var docId *int
	if fs.NArg() > 0 {
		v, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return opts, nil, fmt.Errorf("invalid docId: %v", err)
		}
		docId = &v
	}

	return opts, docId, nil
}

func parseInspectArgs(args []string, ui UI) (InspectOptions, error) {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts InspectOptions
	fs.StringVar(&opts.DocPath, "doc-path", os.Getenv("SKWEAK_DOC_PATH"), "Path to docs directory or SQLite file")
	fs.StringVar(&opts.DocPath, "d", os.Getenv("SKWEAK_DOC_PATH"), "alias for -doc-path")

	fs.BoolVar(&opts.NoColor, "no-color", false, "Show spans without formatting (color)")
	fs.BoolVar(&opts.NoColor, "c", false, "alias for -no-color")

	fs.BoolVar(&opts.NoPrefix, "no-prefix", false, "Show spans without prefixes with metadata")
	fs.BoolVar(&opts.NoPrefix, "x", false, "alias for -no-prefix")

	opts.Format = render.Defaultformat
	formatFlag := &enumFlag{allowed: render.SupportedFormats(), value: &opts.Format}
	fs.Var(formatFlag, "format", "Show whole document (all), one line per span (spans) or label counts (aggr)")
	fs.Var(formatFlag, "f", "alias for -format")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s inspect [options]\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Enter interactive span inspection mode.\n")
		_, _ = fmt.Fprintf(fs.Output(), "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return opts, err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return opts, err
	}

	if opts.DocPath == "" {
		return opts, errors.New("Doc path must be specified via -d or SKWEAK_DOC_PATH")
	}

	if _, err := os.Stat(opts.DocPath); err != nil {
		return opts, fmt.Errorf("Doc path not found: %s", opts.DocPath)
	}

	return opts, nil
}

func parseImportDocArgs(args []string, ui UI) (ImportDocOptions, error) {
	fs := flag.NewFlagSet("import-doc", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts ImportDocOptions
	fs.StringVar(&opts.From, "from", "", "Source directory with JSON docs")
	fs.StringVar(&opts.To, "to", "", "Target SQLite database file")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s import-doc --from <dir> --to <sqlite_file>\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.From == "" || opts.To == "" {
		return opts, errors.New("--from and --to are required")
	}

	return opts, nil
}

func parseImportFormsArgs(args []string, ui UI) (ImportFormsOptions, error) {
	fs := flag.NewFlagSet("import-forms", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts ImportFormsOptions
	fs.StringVar(&opts.From, "from", "", "Source JSON form frequency file")
	fs.StringVar(&opts.To, "to", "", "Target SQLite database file")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s import-forms --from <json_file> --to <sqlite_file>\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.From == "" || opts.To == "" {
		return opts, errors.New("--from and --to are required")
	}

	return opts, nil
}

func parseBashArgs(args []string, ui UI) error {
	fs := flag.NewFlagSet("bash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s bash\n", os.Args[0])
		_, _ = fmt.Fprintf(fs.Output(), "\nDescription:\n")
		_, _ = fmt.Fprintf(fs.Output(), "  Output bash completion script.\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.Usage()
			return err
		}
		fs.SetOutput(ui.Err)
		fprintErr(ui.Err, err)
		fs.Usage()
		return err
	}
	return nil
}

func parseCompleteArgs(args []string, ui UI) ([]string, error) {
	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return fs.Args(), nil
}
