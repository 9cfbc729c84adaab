package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	filecrud "github.com/Yashchauhan008/file-crud"
)

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// resourceStatements returns the DDL for the resources table. seq breaks
// ties between records uploaded in the same instant.
func resourceStatements(table string) []string {
	t := quoteIdentifier(table)
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + t + ` (
			seq         INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			id          TEXT    NOT NULL UNIQUE,
			topic       TEXT    NOT NULL,
			title       TEXT    NOT NULL,
			description TEXT    NOT NULL,
			file_name   TEXT    NOT NULL,
			file_url    TEXT    NOT NULL,
			blob_id     TEXT    NOT NULL,
			file_type   TEXT    NOT NULL,
			size        INTEGER NOT NULL,
			uploaded_at TEXT    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ` + quoteIdentifier("idx_"+table+"_uploaded_at") +
			` ON ` + t + ` (uploaded_at DESC, seq DESC)`,
		`CREATE INDEX IF NOT EXISTS ` + quoteIdentifier("idx_"+table+"_blob_id") +
			` ON ` + t + ` (blob_id)`,
	}
}

// Migrate creates the resources table and its indexes. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB, tables filecrud.Tables) error {
	if !filecrud.IsValidTableName(tables.Resources) {
		return fmt.Errorf("migrate: invalid table name: %s", tables.Resources)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range resourceStatements(tables.Resources) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", tables.Resources, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit: %w", err)
	}
	return nil
}

// DropTables removes the resources table along with its indexes.
func DropTables(ctx context.Context, db *sql.DB, tables filecrud.Tables) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS `+quoteIdentifier(tables.Resources)); err != nil {
		return fmt.Errorf("drop %s: %w", tables.Resources, err)
	}
	return nil
}
