// Package postgres implements filecrud.ResourceRepo using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `id::text, topic, title, description, file_name, file_url, blob_id, file_type, size, uploaded_at`

type repo struct {
	pool *pgxpool.Pool
	// tableName is already quoted.
	tableName string
}

func (r *repo) Insert(ctx context.Context, res filecrud.Resource) (filecrud.Resource, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (topic, title, description, file_name, file_url, blob_id, file_type, size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id::text
	`, r.tableName)

	err := r.pool.QueryRow(ctx, query,
		res.Topic, res.Title, res.Description, res.FileName,
		res.FileURL, res.BlobID, res.FileType, res.Size, res.UploadedAt,
	).Scan(&res.ID)
	if err != nil {
		return filecrud.Resource{}, fmt.Errorf("insert: %w", err)
	}

	res.UploadedAt = res.UploadedAt.UTC()
	return res, nil
}

func (r *repo) Get(ctx context.Context, id string) (filecrud.Resource, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return filecrud.Resource{}, filecrud.ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, selectColumns, r.tableName)

	res, err := scanResource(r.pool.QueryRow(ctx, query, u.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return filecrud.Resource{}, filecrud.ErrNotFound
		}
		return filecrud.Resource{}, fmt.Errorf("get: %w", err)
	}

	return res, nil
}

func (r *repo) List(ctx context.Context) ([]filecrud.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY uploaded_at DESC, seq DESC`, selectColumns, r.tableName)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	resources := []filecrud.Resource{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		resources = append(resources, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return resources, nil
}

// Delete accepts any form uuid.Parse understands (braced, urn:uuid:) and
// queries with the canonical one.
func (r *repo) Delete(ctx context.Context, id string) error {
	u, err := uuid.Parse(id)
	if err != nil {
		return filecrud.ErrNotFound
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tableName)

	tag, err := r.pool.Exec(ctx, query, u.String())
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return filecrud.ErrNotFound
	}

	return nil
}

func scanResource(row pgx.Row) (filecrud.Resource, error) {
	var res filecrud.Resource
	err := row.Scan(
		&res.ID, &res.Topic, &res.Title, &res.Description, &res.FileName,
		&res.FileURL, &res.BlobID, &res.FileType, &res.Size, &res.UploadedAt,
	)
	if err != nil {
		return filecrud.Resource{}, err
	}
	res.UploadedAt = res.UploadedAt.UTC()
	return res, nil
}
