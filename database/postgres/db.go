package postgres

import (
	"context"
	"fmt"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/Yashchauhan008/file-crud/database/internal/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var resourceColumns = schema.Columns{
	"seq":         {Type: "bigint"},
	"id":          {Type: "uuid"},
	"topic":       {Type: "text"},
	"title":       {Type: "text"},
	"description": {Type: "text"},
	"file_name":   {Type: "text"},
	"file_url":    {Type: "text"},
	"blob_id":     {Type: "text"},
	"file_type":   {Type: "text"},
	"size":        {Type: "bigint"},
	"uploaded_at": {Type: "timestamp with time zone"},
}

const columnsQuery = `
	SELECT column_name, data_type, is_nullable = 'YES'
	FROM information_schema.columns
	WHERE table_schema = current_schema() AND table_name = $1`

// ValidateSchema checks that the resources table exists in the current
// schema and carries the columns Migrate creates.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables filecrud.Tables) error {
	name := tables.Resources
	if !filecrud.IsValidTableName(name) {
		return fmt.Errorf("validate schema: invalid table name: %s", name)
	}

	got, err := readColumns(ctx, pool, name)
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

func readColumns(ctx context.Context, pool *pgxpool.Pool, table string) (schema.Columns, error) {
	rows, err := pool.Query(ctx, columnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	cols := schema.Columns{}
	var (
		name, dataType string
		nullable       bool
	)
	_, err = pgx.ForEachRow(rows, []any{&name, &dataType, &nullable}, func() error {
		cols[name] = schema.Column{Type: dataType, Nullable: nullable}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan columns: %w", err)
	}
	return cols, nil
}
