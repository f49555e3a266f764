package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"ursa/internal/liner"
	"ursa/internal/output"
)

type linerFlags struct {
	outputFile string
	json       bool
}

func (a *App) setupLinerFlags() (*flag.FlagSet, *linerFlags) {
	fs := a.newFlagSet("liner")
	flags := &linerFlags{}

	fs.StringVar(&flags.outputFile, "output-file", "", "write to this file instead of to the console")
	fs.StringVar(&flags.outputFile, "o", "", "shorthand for --output-file")
	fs.BoolVar(&flags.json, "json", false, "convert the contents to JSON")
	fs.BoolVar(&flags.json, "j", false, "shorthand for --json")

	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintf(out, "Usage: ursa liner [flags] <input_file>\n\n")
		_, _ = fmt.Fprintf(out, "Prefix each line of a file with its line number.\n\n")
		_, _ = fmt.Fprintf(out, "Flags:\n")
		fs.PrintDefaults()
	}

	return fs, flags
}

func (a *App) HandleLiner(ctx context.Context, args []string) error {
	fs, flags := a.setupLinerFlags()

	ok, err := parseFlags(fs, args)
	if !ok {
		return err
	}

	if fs.NArg() != 1 {
		return usageError(fs, "liner requires exactly one input file")
	}

	inputFile := fs.Arg(0)

	f, err := os.Open(inputFile) //nolint:gosec // user-provided input path
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			a.log.ErrorContext(ctx, "Failed to close input file",
				"error", closeErr,
				"inputFile", inputFile)
		}
	}()

	lines, err := liner.Number(f)
	if err != nil {
		return fmt.Errorf("number lines: %w", err)
	}

	data := liner.Format(lines)
	if flags.json {
		raw, jsonErr := liner.FormatJSON(lines)
		if jsonErr != nil {
			return jsonErr
		}
		data = string(raw)
	}

	if flags.outputFile != "" {
		writeErr := os.WriteFile(flags.outputFile, []byte(data), output.FileMode)
		if writeErr == nil {
			return nil
		}

		a.log.ErrorContext(ctx, "Failed to write data, printing to console instead",
			"error", writeErr,
			"outputFile", flags.outputFile)
	}

	if !strings.HasSuffix(data, "\n") {
		data += "\n"
	}

	if _, err = fmt.Fprint(a.stdout, data); err != nil {
		return fmt.Errorf("write console: %w", err)
	}

	return nil
}
