// Package blobstore opens the configured filecrud.BlobStore backend.
//
// # Supported Backends
//
//   - filesystem: a local directory, served by the API under /files
//   - minio: a MinIO bucket via minio-go
//   - s3: an S3 bucket via the AWS SDK, or any S3-compatible endpoint
//
// Every backend names blobs "<folder>/<uuid><ext>" and reports a missing
// blob on Delete as filecrud.ErrNotFound.
package blobstore

import (
	"context"
	"errors"
	"fmt"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/Yashchauhan008/file-crud/blobstore/filesystem"
	"github.com/Yashchauhan008/file-crud/blobstore/minio"
	"github.com/Yashchauhan008/file-crud/blobstore/s3"
)

// Config holds the settings for every backend; only the fields relevant to
// Type are read.
type Config struct {
	Type      string
	Path      string
	PublicURL string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store is a BlobStore that holds resources needing release.
type Store interface {
	filecrud.BlobStore
	Close() error
}

// Open connects the backend named by cfg.Type. Buckets are created when
// missing.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case "filesystem":
		if cfg.Path == "" {
			return nil, errors.New("open blob store: filesystem path is required")
		}
		return filesystem.Open(cfg.Path, cfg.PublicURL)
	case "minio":
		return minio.New(ctx, minio.Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
			PublicURL: cfg.PublicURL,
		})
	case "s3":
		store, err := s3.New(ctx, s3.Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			PublicURL: cfg.PublicURL,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
