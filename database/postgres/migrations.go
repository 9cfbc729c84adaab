package postgres

import (
	"context"
	"fmt"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func pgxIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// resourceStatements returns the DDL for the resources table. seq breaks
// ties between records uploaded in the same instant.
func resourceStatements(table string) []string {
	t := pgxIdent(table)
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + t + ` (
			seq         BIGSERIAL   PRIMARY KEY,
			id          UUID        NOT NULL UNIQUE DEFAULT gen_random_uuid(),
			topic       TEXT        NOT NULL,
			title       TEXT        NOT NULL,
			description TEXT        NOT NULL,
			file_name   TEXT        NOT NULL,
			file_url    TEXT        NOT NULL,
			blob_id     TEXT        NOT NULL,
			file_type   TEXT        NOT NULL,
			size        BIGINT      NOT NULL,
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + pgxIdent("idx_"+table+"_uploaded_at") +
			` ON ` + t + ` (uploaded_at DESC, seq DESC)`,
		`CREATE INDEX IF NOT EXISTS ` + pgxIdent("idx_"+table+"_blob_id") +
			` ON ` + t + ` (blob_id)`,
	}
}

// Migrate creates the resources table and its indexes in one transaction.
// It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables filecrud.Tables) error {
	if !filecrud.IsValidTableName(tables.Resources) {
		return fmt.Errorf("migrate: invalid table name: %s", tables.Resources)
	}

	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, stmt := range resourceStatements(tables.Resources) {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("migrate %s: %w", tables.Resources, err)
	}
	return nil
}

// DropTables removes the resources table along with its indexes.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables filecrud.Tables) error {
	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS `+pgxIdent(tables.Resources)+` CASCADE`); err != nil {
		return fmt.Errorf("drop %s: %w", tables.Resources, err)
	}
	return nil
}
