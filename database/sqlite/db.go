package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/Yashchauhan008/file-crud/database/internal/schema"
)

// SQLite reports declared types, so these mirror the CREATE TABLE in
// migrations.go rather than storage classes.
var resourceColumns = schema.Columns{
	"seq":         {Type: "integer"},
	"id":          {Type: "text"},
	"topic":       {Type: "text"},
	"title":       {Type: "text"},
	"description": {Type: "text"},
	"file_name":   {Type: "text"},
	"file_url":    {Type: "text"},
	"blob_id":     {Type: "text"},
	"file_type":   {Type: "text"},
	"size":        {Type: "integer"},
	"uploaded_at": {Type: "text"},
}

// ValidateSchema checks that the resources table exists and carries the
// columns Migrate creates.
func ValidateSchema(ctx context.Context, db *sql.DB, tables filecrud.Tables) error {
	name := tables.Resources
	if !filecrud.IsValidTableName(name) {
		return fmt.Errorf("validate schema: invalid table name: %s", name)
	}

	got, err := readColumns(ctx, db, name)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", name, err)
	}
	if len(got) == 0 {
		return fmt.Errorf("validate schema: table %s does not exist", name)
	}

	if err := schema.Compare(name, resourceColumns, got); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	return nil
}

func readColumns(ctx context.Context, db *sql.DB, table string) (schema.Columns, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, type, "notnull" FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols := schema.Columns{}
	for rows.Next() {
		var (
			name, declared string
			notNull        bool
		)
		if err := rows.Scan(&name, &declared, &notNull); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols[name] = schema.Column{Type: declared, Nullable: !notNull}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	return cols, nil
}
