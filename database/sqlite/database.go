package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	filecrud "github.com/Yashchauhan008/file-crud"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB is a SQLite metadata backend.
type DB struct {
	db     *sql.DB
	tables filecrud.Tables
}

// Connect opens a SQLite database. Tables should be validated before
// calling Connect.
//
// An in-memory DSN is pinned to a single connection so every query sees the
// same database.
func Connect(ctx context.Context, dsn string, tables filecrud.Tables) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	if isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite: set busy timeout: %w", err)
	}

	return &DB{
		db:     db,
		tables: tables,
	}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate creates the resources table and its list index.
func (d *DB) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *DB) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

func (d *DB) GetRepo() filecrud.ResourceRepo {
	return &repo{db: d.db, tableName: d.tables.Resources}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
