package postgres

import (
	"context"
	"fmt"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "filecrud"

// DB is a PostgreSQL metadata backend built on a pgx connection pool.
type DB struct {
	pool   *pgxpool.Pool
	tables filecrud.Tables
}

// Connect parses dsn and creates a pool. Connections are established
// lazily, so an unreachable server surfaces on the first Ping. The caller
// is expected to have validated tables.
func Connect(ctx context.Context, dsn string, tables filecrud.Tables) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: parse dsn: %w", err)
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &DB{pool: pool, tables: tables}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

func (d *DB) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.pool, d.tables)
}

func (d *DB) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.pool, d.tables)
}

// GetRepo returns a ResourceRepo sharing this pool.
func (d *DB) GetRepo() filecrud.ResourceRepo {
	return &repo{pool: d.pool, tableName: pgxIdent(d.tables.Resources)}
}

// Close releases every pooled connection. It always returns nil.
func (d *DB) Close() error {
	d.pool.Close()
	return nil
}
