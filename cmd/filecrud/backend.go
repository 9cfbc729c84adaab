package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/Yashchauhan008/file-crud/blobstore"
	"github.com/Yashchauhan008/file-crud/config"
	"github.com/Yashchauhan008/file-crud/database"
)

// backend bundles the opened stores and the service built on them.
type backend struct {
	db      database.Database
	store   blobstore.Store
	service *filecrud.ResourceService
}

// openBackend connects the metadata database (migrating it) and the blob
// store named in cfg.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	db, err := database.Open(ctx, cfg.DatabaseConfig())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	slog.Info("connected to database", "type", cfg.Database.Type)

	store, err := blobstore.Open(ctx, cfg.BlobStoreConfig())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	slog.Info("opened blob store", "type", cfg.Storage.Type)

	service, err := filecrud.NewResourceService(db.GetRepo(), store, cfg.ServiceConfig())
	if err != nil {
		_ = store.Close()
		_ = db.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}

	return &backend{db: db, store: store, service: service}, nil
}

func (b *backend) Close() error {
	return errors.Join(b.store.Close(), b.db.Close())
}
