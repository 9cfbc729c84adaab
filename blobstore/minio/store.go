// Package minio stores blobs in a MinIO (or any S3-compatible) bucket using
// the MinIO client.
package minio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	filecrud "github.com/Yashchauhan008/file-crud"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds the connection settings for a MinIO bucket.
type Config struct {
	Endpoint  string // host:port, no scheme
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// PublicURL overrides the base of returned blob URLs. Defaults to
	// the endpoint with the bucket as the first path segment.
	PublicURL string
}

type Store struct {
	client  *miniogo.Client
	bucket  string
	baseURL string
}

// New connects to MinIO and creates the bucket if it does not exist.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("new minio store: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("new minio store: bucket is required")
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("new minio store: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("new minio store: check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, miniogo.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("new minio store: make bucket: %w", err)
		}
	}

	baseURL := strings.TrimRight(cfg.PublicURL, "/")
	if baseURL == "" {
		baseURL = client.EndpointURL().String() + "/" + cfg.Bucket
	}

	return &Store{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

// URL returns the public URL of key.
func (s *Store) URL(key string) string {
	return s.baseURL + "/" + key
}

func (s *Store) Upload(ctx context.Context, localPath, folder, contentType string) (filecrud.BlobRef, error) {
	if !filecrud.IsValidPath(folder) {
		return filecrud.BlobRef{}, fmt.Errorf("upload: invalid folder: %s", folder)
	}

	key := filecrud.NewBlobKey(folder, localPath)
	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return filecrud.BlobRef{}, fmt.Errorf("upload %s: %w", key, err)
	}

	return filecrud.BlobRef{ID: key, URL: s.URL(key)}, nil
}

// Delete removes the object. S3 deletes are idempotent, so the object is
// stat'ed first to report filecrud.ErrNotFound.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, key, miniogo.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return filecrud.ErrNotFound
		}
		return fmt.Errorf("delete %s: stat: %w", key, err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, miniogo.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, folder string) ([]filecrud.BlobInfo, error) {
	blobs := []filecrud.BlobInfo{}

	objects := s.client.ListObjects(ctx, s.bucket, miniogo.ListObjectsOptions{
		Prefix:    strings.TrimRight(folder, "/") + "/",
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", folder, obj.Err)
		}
		blobs = append(blobs, filecrud.BlobInfo{ID: obj.Key, Size: obj.Size})
	}

	return blobs, nil
}

// Close is a no-op; the MinIO client holds no resources that need releasing.
func (s *Store) Close() error {
	return nil
}

func isNotFound(err error) bool {
	resp := miniogo.ToErrorResponse(err)
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
}
