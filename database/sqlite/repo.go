// Package sqlite implements filecrud.ResourceRepo using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/google/uuid"
)

// timeLayout is fixed width so text comparison orders like time.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type repo struct {
	db        *sql.DB
	tableName string
}

func (r *repo) Insert(ctx context.Context, res filecrud.Resource) (filecrud.Resource, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return filecrud.Resource{}, fmt.Errorf("insert: generate id: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, topic, title, description, file_name, file_url, blob_id, file_type, size, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, r.tableName)

	uploadedAt := res.UploadedAt.UTC()
	_, err = r.db.ExecContext(ctx, query,
		id.String(), res.Topic, res.Title, res.Description, res.FileName,
		res.FileURL, res.BlobID, res.FileType, res.Size, uploadedAt.Format(timeLayout),
	)
	if err != nil {
		return filecrud.Resource{}, fmt.Errorf("insert: %w", err)
	}

	res.ID = id.String()
	res.UploadedAt = uploadedAt
	return res, nil
}

func (r *repo) Get(ctx context.Context, id string) (filecrud.Resource, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return filecrud.Resource{}, filecrud.ErrNotFound
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, topic, title, description, file_name, file_url, blob_id, file_type, size, uploaded_at
		FROM %s
		WHERE id = ?`, r.tableName)

	res, err := scanResource(r.db.QueryRowContext(ctx, query, u.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filecrud.Resource{}, filecrud.ErrNotFound
		}
		return filecrud.Resource{}, fmt.Errorf("get: %w", err)
	}

	return res, nil
}

func (r *repo) List(ctx context.Context) ([]filecrud.Resource, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, topic, title, description, file_name, file_url, blob_id, file_type, size, uploaded_at
		FROM %s
		ORDER BY uploaded_at DESC, seq DESC`, r.tableName)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

// Ids are stored in canonical lowercase form, so lookups canonicalize
// whatever uuid.Parse accepts.
func (r *repo) Delete(ctx context.Context, id string) error {
	u, err := uuid.Parse(id)
	if err != nil {
		return filecrud.ErrNotFound
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.tableName) //nolint:gosec // table name is validated

	result, err := r.db.ExecContext(ctx, query, u.String())
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return filecrud.ErrNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResource(row scanner) (filecrud.Resource, error) {
	var res filecrud.Resource
	var uploadedAt string

	err := row.Scan(
		&res.ID, &res.Topic, &res.Title, &res.Description, &res.FileName,
		&res.FileURL, &res.BlobID, &res.FileType, &res.Size, &uploadedAt,
	)
	if err != nil {
		return filecrud.Resource{}, err
	}

	res.UploadedAt, err = time.Parse(timeLayout, uploadedAt)
	if err != nil {
		return filecrud.Resource{}, fmt.Errorf("parse uploaded_at: %w", err)
	}

	return res, nil
}
