// Package export runs the fetch, merge and write pipeline once.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"ursa/internal/domain"
	"ursa/internal/merge"
)

type Source interface {
	Posts(ctx context.Context) ([]domain.Record, error)
	Users(ctx context.Context) ([]domain.Record, error)
}

type RecordWriter interface {
	Write(ctx context.Context, records []domain.Record, destination string) error
}

type Store interface {
	SaveMergedRecords(ctx context.Context, records []domain.Record) (int, error)
}

type Exporter struct {
	source      Source
	writer      RecordWriter
	store       Store
	destination string
	log         *slog.Logger
}

// New builds an exporter. store may be nil; destination may be empty for
// console output.
func New(
	source Source,
	writer RecordWriter,
	store Store,
	destination string,
	log *slog.Logger,
) *Exporter {
	return &Exporter{
		source:      source,
		writer:      writer,
		store:       store,
		destination: destination,
		log:         log,
	}
}

// Run fetches posts then users, merges them and writes the result. Nothing
// is written unless both fetches succeed.
func (e *Exporter) Run(ctx context.Context) error {
	start := time.Now()

	posts, err := e.source.Posts(ctx)
	if err != nil {
		return fmt.Errorf("fetch posts: %w", err)
	}

	users, err := e.source.Users(ctx)
	if err != nil {
		return fmt.Errorf("fetch users: %w", err)
	}

	merged := merge.Merge(posts, users)

	e.log.InfoContext(ctx, "Merged posts and users",
		"postCount", len(posts),
		"userCount", len(users),
		"mergedCount", len(merged),
		"droppedCount", len(posts)-len(merged))

	if err = e.writer.Write(ctx, merged, e.destination); err != nil {
		return fmt.Errorf("write records: %w", err)
	}

	if e.store != nil {
		saved, saveErr := e.store.SaveMergedRecords(ctx, merged)
		if saveErr != nil {
			return fmt.Errorf("save records: %w", saveErr)
		}

		e.log.InfoContext(ctx, "Saved merged records",
			"savedCount", saved)
	}

	e.log.DebugContext(ctx, "Export finished",
		"destination", e.destination,
		"elapsedSeconds", time.Since(start).Seconds())

	return nil
}
