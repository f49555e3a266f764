package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // Required by the library implementation.
)

const migrationsTable = "ursa_schema_migrations"

type Database struct {
	db  *sql.DB
	log *slog.Logger
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

// New opens the SQLite file at dbPath, creating it if needed, and brings its
// schema up to date.
func New(ctx context.Context, dbPath string, log *slog.Logger) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open DB file: %w", err)
	}

	d := &Database{db: db, log: log.With("dbPath", dbPath)}

	if err = d.upgradeSchema(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close DB file: %w", closeErr))
		}
		return nil, err
	}

	return d, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) upgradeSchema(ctx context.Context) error {
	m, err := d.migrator()
	if err != nil {
		return err
	}

	from, err := schemaVersion(m)
	if err != nil {
		return err
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("upgrade schema from version %d: %w", from, err)
	}

	to, err := schemaVersion(m)
	if err != nil {
		return err
	}

	if from == to {
		d.log.DebugContext(ctx, "Schema is up to date",
			"version", to)
		return nil
	}

	d.log.InfoContext(ctx, "Schema is upgraded",
		"fromVersion", from,
		"toVersion", to)

	return nil
}

// migrator binds the embedded migrations to the open handle. The returned
// value must not be closed, since that would close d.db as well.
func (d *Database) migrator() (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(d.db, &sqlite3.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return nil, fmt.Errorf("wrap DB for migrations: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	return m, nil
}

// schemaVersion reports 0 for a database no migration has touched and fails
// on a dirty one, which needs manual repair.
func schemaVersion(m *migrate.Migrate) (uint, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}

	return version, nil
}
