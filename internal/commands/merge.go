package commands

import (
	"context"
	"flag"
	"fmt"
	"ursa/internal/database"
	"ursa/internal/export"
	"ursa/internal/output"
	"ursa/internal/scheduler"
)

type mergeFlags struct {
	file         string
	truncate     bool
	noTruncation bool
	format       string
	sqlitePath   string
	every        string
}

func (a *App) setupMergeFlags() (*flag.FlagSet, *mergeFlags) {
	fs := a.newFlagSet("merge")
	flags := &mergeFlags{}

	fs.StringVar(&flags.file, "file", "", "write to this file instead of to the console")
	fs.StringVar(&flags.file, "f", "", "shorthand for --file")
	fs.BoolVar(&flags.truncate, "truncate", false, "preview at most 60 records and shorten long values when printing to a terminal")
	fs.BoolVar(&flags.noTruncation, "no-truncation", false, "print every record in full (the default; overrides --truncate)")
	fs.BoolVar(&flags.noTruncation, "t", false, "shorthand for --no-truncation")
	fs.StringVar(&flags.format, "format", string(output.FormatJSON), "output format: json or yaml")
	fs.StringVar(&flags.sqlitePath, "sqlite", "", "also upsert the merged records into this SQLite database")
	fs.StringVar(&flags.every, "every", "", "repeat the export on this cron schedule until interrupted")

	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintf(out, "Usage: ursa merge [flags]\n\n")
		_, _ = fmt.Fprintf(out, "Fetch posts and users, join each post with its author and output the result.\n\n")
		_, _ = fmt.Fprintf(out, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(out, "\nExamples:\n")
		_, _ = fmt.Fprintf(out, "  ursa merge\n")
		_, _ = fmt.Fprintf(out, "  ursa merge --file merged.json\n")
		_, _ = fmt.Fprintf(out, "  ursa merge --format yaml\n")
		_, _ = fmt.Fprintf(out, "  ursa merge --sqlite ursa.sqlite --every @hourly\n")
	}

	return fs, flags
}

func (a *App) HandleMerge(ctx context.Context, args []string) error {
	fs, flags := a.setupMergeFlags()

	ok, err := parseFlags(fs, args)
	if !ok {
		return err
	}

	if fs.NArg() != 0 {
		return usageError(fs, "merge takes no arguments (got %q)", fs.Args())
	}

	format, err := output.ParseFormat(flags.format)
	if err != nil {
		return usageError(fs, "%v", err)
	}

	if flags.every != "" {
		if err = scheduler.ValidateSpec(flags.every); err != nil {
			return usageError(fs, "%v", err)
		}
	}

	var store export.Store
	if flags.sqlitePath != "" {
		db, dbErr := database.New(ctx, flags.sqlitePath, a.log)
		if dbErr != nil {
			return fmt.Errorf("open database: %w", dbErr)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				a.log.ErrorContext(ctx, "Failed to close db",
					"error", closeErr,
					"dbPath", flags.sqlitePath)
			}
		}()

		store = db
	}

	exporter := export.New(
		a.client(),
		a.writer(format, flags.truncate && !flags.noTruncation),
		store,
		flags.file,
		a.log,
	)

	if flags.every == "" {
		return exporter.Run(ctx)
	}

	return a.runScheduled(ctx, flags.every, exporter)
}

func (a *App) runScheduled(ctx context.Context, spec string, job scheduler.Job) error {
	sched := scheduler.New(ctx, spec, job, a.log)

	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.log.InfoContext(ctx, "Scheduler is started",
		"spec", spec,
		"timezone", scheduler.Timezone)

	<-ctx.Done()

	a.log.InfoContext(ctx, "Shutdown signal is received, stopping scheduler",
		"spec", spec)
	sched.Stop()

	return nil
}
