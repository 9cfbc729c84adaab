// Package s3 stores blobs in an Amazon S3 bucket, or any service speaking
// the S3 API, using the AWS SDK for Go v2.
package s3

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Config holds the connection settings for an S3 bucket.
type Config struct {
	Bucket string
	Region string
	// Endpoint is a full URL for S3-compatible services. It switches the
	// client to path-style addressing.
	Endpoint string
	// AccessKey and SecretKey are optional; without them the default AWS
	// credential chain is used.
	AccessKey string
	SecretKey string
	// PublicURL overrides the base of returned blob URLs.
	PublicURL string
}

type Store struct {
	client  *awss3.Client
	bucket  string
	baseURL string
}

// New builds an S3 client from cfg. It does not contact the service.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("new s3 store: bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("new s3 store: load config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimRight(cfg.PublicURL, "/")
	switch {
	case baseURL != "":
	case endpoint != "":
		baseURL = endpoint + "/" + cfg.Bucket
	default:
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
	}

	return &Store{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	if _, err := s.client.CreateBucket(ctx, &awss3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("ensure bucket: create: %w", err)
	}
	return nil
}

// URL returns the public URL of key.
func (s *Store) URL(key string) string {
	return s.baseURL + "/" + key
}

func (s *Store) Upload(ctx context.Context, localPath, folder, contentType string) (filecrud.BlobRef, error) {
	if !filecrud.IsValidPath(folder) {
		return filecrud.BlobRef{}, fmt.Errorf("upload: invalid folder: %s", folder)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return filecrud.BlobRef{}, fmt.Errorf("upload: open source: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return filecrud.BlobRef{}, fmt.Errorf("upload: stat source: %w", err)
	}

	key := filecrud.NewBlobKey(folder, localPath)
	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return filecrud.BlobRef{}, fmt.Errorf("upload %s: %w", key, err)
	}

	return filecrud.BlobRef{ID: key, URL: s.URL(key)}, nil
}

// Delete removes the object, reporting filecrud.ErrNotFound when a HEAD
// finds nothing to delete.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return filecrud.ErrNotFound
		}
		return fmt.Errorf("delete %s: head: %w", key, err)
	}

	_, err = s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, folder string) ([]filecrud.BlobInfo, error) {
	blobs := []filecrud.BlobInfo{}

	paginator := awss3.NewListObjectsV2Paginator(s.client, &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(strings.TrimRight(folder, "/") + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", folder, err)
		}
		for _, obj := range page.Contents {
			blobs = append(blobs, filecrud.BlobInfo{
				ID:   aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			})
		}
	}

	return blobs, nil
}

func (s *Store) Close() error {
	return nil
}
