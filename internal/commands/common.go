// Package commands implements the ursa subcommands.
package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"ursa/internal/config"
	"ursa/internal/output"
	"ursa/internal/placeholder"
)

// ErrUsage marks errors caused by bad command-line input.
var ErrUsage = errors.New("usage error")

type App struct {
	cfg         config.Config
	version     string
	log         *slog.Logger
	stdout      io.Writer
	stderr      io.Writer
	interactive bool
	httpClient  *http.Client
}

// New wires the subcommands. interactive tells whether stdout is a terminal.
func New(
	cfg config.Config,
	version string,
	log *slog.Logger,
	stdout io.Writer,
	stderr io.Writer,
	interactive bool,
) *App {
	return &App{
		cfg:         cfg,
		version:     version,
		log:         log,
		stdout:      stdout,
		stderr:      stderr,
		interactive: interactive,
		httpClient:  &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (a *App) client() *placeholder.Client {
	userAgent := a.cfg.UserAgent
	if userAgent == "" {
		userAgent = "ursa/" + a.version
	}

	return placeholder.New(a.cfg.BaseURL, a.httpClient, userAgent, a.log)
}

func (a *App) writer(format output.Format, truncate bool) *output.Writer {
	return output.New(a.stdout, output.Options{
		Format:      format,
		Interactive: a.interactive,
		Truncate:    truncate,
	}, a.log)
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	return fs
}

// parseFlags parses args, mapping -h to a nil error the caller should
// treat as "done".
func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	return true, nil
}

func usageError(fs *flag.FlagSet, format string, args ...any) error {
	fs.Usage()
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}
