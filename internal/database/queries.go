package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"ursa/internal/domain"
)

// SaveMergedRecords upserts records keyed by postId in one transaction and
// returns how many rows were written. Records without an integral postId or
// userId are skipped.
func (d *Database) SaveMergedRecords(ctx context.Context, records []domain.Record) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	query := `insert into merged_records (post_id, user_id, title, author, record, exported_at)
	values (?, ?, ?, ?, ?, ?)
	on conflict (post_id) do update
	set user_id = excluded.user_id,
	title = excluded.title,
	author = excluded.author,
	record = excluded.record,
	exported_at = excluded.exported_at`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, errors.Join(fmt.Errorf("prepare statement: %w", err), rollback(tx))
	}
	defer func() {
		if err = stmt.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close statement",
				"error", err,
				"operation", "SaveMergedRecords")
		}
	}()

	exportedAt := time.Now().UTC()
	saved := 0

	for i, record := range records {
		postID, ok := record.Int(domain.PostIDKey)
		if !ok {
			d.log.WarnContext(ctx, "Skipping record without postId",
				"index", i)
			continue
		}

		userID, ok := record.Int(domain.UserIDKey)
		if !ok {
			d.log.WarnContext(ctx, "Skipping record without userId",
				"index", i,
				"postID", postID)
			continue
		}

		raw, marshalErr := record.MarshalJSON()
		if marshalErr != nil {
			return 0, errors.Join(fmt.Errorf("marshal record (postID = %d): %w", postID, marshalErr), rollback(tx))
		}

		if _, execErr := stmt.ExecContext(
			ctx,
			postID,
			userID,
			stringField(record, domain.TitleKey),
			stringField(record, domain.NameKey),
			string(raw),
			exportedAt,
		); execErr != nil {
			return 0, errors.Join(fmt.Errorf("upsert record (postID = %d): %w", postID, execErr), rollback(tx))
		}

		saved++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return saved, nil
}

// MergedRecords returns stored records ordered by postId.
func (d *Database) MergedRecords(ctx context.Context) ([]domain.Record, error) {
	query := "select record from merged_records order by post_id"

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "MergedRecords")
		}
	}()

	records := []domain.Record{}
	for rows.Next() {
		var raw string
		if err = rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		record, parseErr := domain.ParseRecord([]byte(raw))
		if parseErr != nil {
			return nil, fmt.Errorf("parse stored record: %w", parseErr)
		}

		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}

func stringField(record domain.Record, key string) string {
	v, ok := record.Get(key)
	if !ok {
		return ""
	}

	return strings.TrimSpace(v.String())
}

func rollback(tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}

	return nil
}
