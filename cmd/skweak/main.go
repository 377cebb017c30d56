package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
)

// UI contains the output streams for the application.
// Used for injecting buffers during testing.
type UI struct {
	Out io.Writer
	Err io.Writer
}

func main() {
	// optional, flags and environment take over
	_ = godotenv.Load()

	ui := UI{Out: os.Stdout, Err: os.Stderr}

	cmd, args, err := parseMainArgs(os.Args[1:], ui)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := runCommand(cmd, args, ui); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fprintErr(ui.Err, err)
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "skweak: %v\n", err)
}

func runCommand(cmd string, args []string, ui UI) error {
	switch cmd {
	case "help":
		if len(args) > 0 {
			return runCommand(args[0], []string{"--help"}, ui)
		}
		fs := flag.NewFlagSet("skweak", flag.ContinueOnError)
		fs.SetOutput(ui.Out)
		setupUsage(fs)
		fs.Usage()
		return nil

	case "annotate":
		opts, err := parseAnnotateArgs(args, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return annotateCommand(opts, ui)

	case "doc":
		opts, docId, err := parseDocArgs(args, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return docCommand(opts, docId, ui)

	case "ls-labels":
		opts, err := parseLsLabelsArgs(args, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return lsLabelsCommand(opts, ui)

	case "stat":
		opts, docId, err := parseStatArgs(args, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return statCommand(opts, docId, ui)

	case "inspect":
		opts, err := parseInspectArgs(args, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return inspectCommand(opts, ui)

	case "import-doc":
		opts, err := parseImportDocArgs(args, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return importDocCommand(opts, ui)

	case "import-forms":
		opts, err := parseImportFormsArgs(args, ui)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return importFormsCommand(opts, ui)

	case "bash":
		if err := parseBashArgs(args, ui); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil
			}
			return err
		}
		return bashCommand(ui)

	case "complete":
		completeArgs, err := parseCompleteArgs(args, ui)
		if err != nil {
			return err
		}
		return completeCommand(completeArgs, ui)

	case "version":
		return versionCommand(ui)
	}

	return fmt.Errorf("unknown command: %s", cmd)
}

func setupUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: %s command [command options] [arguments...]\n", os.Args[0])
		_, _ = fmt.Fprintf(output, "\nDescription:\n")
		_, _ = fmt.Fprintf(output, "  Weak supervision span annotation for tokenized documents\n")
		_, _ = fmt.Fprintf(output, "\nCommands:\n")
		_, _ = fmt.Fprintf(output, "  annotate      Run an annotator chain over the stored documents.\n")
		_, _ = fmt.Fprintf(output, "  doc           List documents or show the spans of one document.\n")
		_, _ = fmt.Fprintf(output, "  ls-labels     List the span labels present in the repository.\n")
		_, _ = fmt.Fprintf(output, "  stat          Show annotation statistics.\n")
		_, _ = fmt.Fprintf(output, "  inspect       Enter interactive span inspection mode.\n")
		_, _ = fmt.Fprintf(output, "  import-doc    Import docs from filesystem to SQLite.\n")
		_, _ = fmt.Fprintf(output, "  import-forms  Import a form frequency table to SQLite.\n")
		_, _ = fmt.Fprintf(output, "  bash          Output bash completion script.\n")
		_, _ = fmt.Fprintf(output, "  version       Show version information.\n")
		_, _ = fmt.Fprintf(output, "  help          Show help for a command.\n")
	}
}
