package database

import (
	"context"
	"fmt"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/Yashchauhan008/file-crud/database/mongodb"
	"github.com/Yashchauhan008/file-crud/database/postgres"
	"github.com/Yashchauhan008/file-crud/database/sqlite"
)

// Config holds the configuration for connecting to a metadata backend.
type Config struct {
	// Type specifies the backend: "mongo", "postgres" or "sqlite".
	Type string
	// DSN is the connection string (MongoDB URI, PostgreSQL DSN or SQLite path).
	DSN string
	// Name is the MongoDB database name.
	Name string
	// Collection is the MongoDB collection name.
	Collection string
	// Tables holds the SQL table names.
	Tables filecrud.Tables
}

// Database is a connected metadata backend.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	GetRepo() filecrud.ResourceRepo
	Close() error
}

// Connect opens the configured backend. It does not run migrations.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	switch cfg.Type {
	case "mongo", "mongodb":
		return mongodb.Connect(ctx, cfg.DSN, cfg.Name, cfg.Collection)
	case "postgres":
		if err := cfg.Tables.Validate(); err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		return postgres.Connect(ctx, cfg.DSN, cfg.Tables)
	case "sqlite":
		if err := cfg.Tables.Validate(); err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		return sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Open connects, migrates and validates in one step, closing the backend
// again if any step fails.
func Open(ctx context.Context, cfg Config) (Database, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Type, err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.Type, err)
	}

	if err := db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("validate %s: %w", cfg.Type, err)
	}

	return db, nil
}
