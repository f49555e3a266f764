package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"ursa/internal/jsoncheck"
)

func (a *App) setupVerifyJSONFlags() *flag.FlagSet {
	fs := a.newFlagSet("verify-json")

	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintf(out, "Usage: ursa verify-json <json_file>\n\n")
		_, _ = fmt.Fprintf(out, "Report whether a file contains valid JSON.\n")
	}

	return fs
}

// HandleVerifyJSON reports on the file and succeeds whether or not it is
// valid; only unexpected read failures are returned.
func (a *App) HandleVerifyJSON(ctx context.Context, args []string) error {
	fs := a.setupVerifyJSONFlags()

	ok, err := parseFlags(fs, args)
	if !ok {
		return err
	}

	if fs.NArg() != 1 {
		return usageError(fs, "verify-json requires exactly one file")
	}

	path := fs.Arg(0)
	err = jsoncheck.VerifyFile(path)

	a.log.DebugContext(ctx, "Verified JSON file",
		"path", path,
		"valid", err == nil)

	var msg string
	switch {
	case err == nil:
		msg = fmt.Sprintf("The file '%s' contains valid JSON.", path)
	case errors.Is(err, jsoncheck.ErrNotFound):
		msg = fmt.Sprintf("Could not find the file '%s'", path)
	case errors.Is(err, jsoncheck.ErrSyntax):
		msg = fmt.Sprintf("Invalid JSON: %v", err)
	default:
		return fmt.Errorf("verify JSON: %w", err)
	}

	if _, err = fmt.Fprintln(a.stdout, msg); err != nil {
		return fmt.Errorf("write console: %w", err)
	}

	return nil
}
