// Package output renders records to the console or to a file.
package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"ursa/internal/domain"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const (
	// Console limits, as pandas' display.max_rows and display.max_colwidth.
	maxConsoleRecords  = 60
	maxConsoleValueLen = 50
	ellipsis           = "..."

	// FileMode is the permission for files created by Write.
	FileMode os.FileMode = 0o644
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format (format = %s)", s)
	}
}

type Options struct {
	Format Format
	// Interactive is set when the console is a terminal.
	Interactive bool
	// Truncate limits interactive console output to a pandas-like preview.
	// Console output is complete unless it is set.
	Truncate bool
}

type Writer struct {
	stdout io.Writer
	opts   Options
	log    *slog.Logger
}

func New(stdout io.Writer, opts Options, log *slog.Logger) *Writer {
	if opts.Format == "" {
		opts.Format = FormatJSON
	}

	return &Writer{
		stdout: stdout,
		opts:   opts,
		log:    log,
	}
}

// Write serializes records as one array to destination, replacing its
// content, or prints them to the console when destination is empty.
func (w *Writer) Write(
	ctx context.Context,
	records []domain.Record,
	destination string,
) error {
	if destination != "" {
		raw, err := domain.MarshalRecords(records)
		if err != nil {
			return fmt.Errorf("marshal records: %w", err)
		}

		return w.writeFile(ctx, raw, destination, len(records))
	}

	shown, hidden := records, 0
	if w.truncate() {
		shown, hidden = truncateRecords(records, maxConsoleRecords)
		shown = truncateValues(shown, maxConsoleValueLen)
	}

	raw, err := domain.MarshalRecords(shown)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	if err = w.print(raw); err != nil {
		return err
	}

	if hidden > 0 {
		if _, err = fmt.Fprintf(w.stdout, "%s %d more records (drop --truncate to show all)\n",
			ellipsis, hidden); err != nil {
			return fmt.Errorf("write console: %w", err)
		}
	}

	return nil
}

// WriteRecord is Write for a single object.
func (w *Writer) WriteRecord(
	ctx context.Context,
	record domain.Record,
	destination string,
) error {
	raw, err := record.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if destination != "" {
		return w.writeFile(ctx, raw, destination, 1)
	}

	return w.print(raw)
}

func (w *Writer) truncate() bool {
	return w.opts.Interactive && w.opts.Truncate
}

func (w *Writer) writeFile(
	ctx context.Context,
	raw []byte,
	destination string,
	count int,
) error {
	data, err := w.encode(raw, false)
	if err != nil {
		return err
	}

	w.log.DebugContext(ctx, "Writing records to file",
		"destination", destination,
		"format", w.opts.Format,
		"count", count)

	if err = os.WriteFile(destination, data, FileMode); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

func (w *Writer) print(raw []byte) error {
	data, err := w.encode(raw, true)
	if err != nil {
		return err
	}

	if _, err = w.stdout.Write(data); err != nil {
		return fmt.Errorf("write console: %w", err)
	}

	return nil
}

func (w *Writer) encode(raw []byte, indent bool) ([]byte, error) {
	switch w.opts.Format {
	case FormatYAML:
		data, err := toYAML(raw)
		if err != nil {
			return nil, fmt.Errorf("encode YAML: %w", err)
		}
		return data, nil
	case FormatJSON:
		if indent {
			return pretty.Pretty(raw), nil
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown output format (format = %s)", w.opts.Format)
	}
}

func truncateRecords(records []domain.Record, limit int) ([]domain.Record, int) {
	if len(records) <= limit {
		return records, 0
	}

	return records[:limit], len(records) - limit
}

func truncateValues(records []domain.Record, limit int) []domain.Record {
	out := make([]domain.Record, 0, len(records))

	for _, r := range records {
		shortened := r
		for _, f := range r {
			v := gjson.Parse(f.Value)
			if v.Type != gjson.String {
				continue
			}

			runes := []rune(v.String())
			if len(runes) <= limit {
				continue
			}

			short := string(runes[:limit-len(ellipsis)]) + ellipsis
			shortened = shortened.With(f.Key, string(gjson.AppendJSONString(nil, short)))
		}
		out = append(out, shortened)
	}

	return out
}
