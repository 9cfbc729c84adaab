// Package blobtest holds the behaviour every filecrud.BlobStore backend must
// share, plus a MinIO container for the S3-speaking backends.
package blobtest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
)

// Minio describes a running MinIO server.
type Minio struct {
	Endpoint  string // host:port
	AccessKey string
	SecretKey string
}

var (
	minioOnce    sync.Once
	minioServer  Minio
	minioErr     error
	minioCleanup func()
)

// StartMinio starts one MinIO container per test binary and skips in
// short mode.
func StartMinio(t *testing.T) Minio {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping minio container test in short mode")
	}

	minioOnce.Do(func() {
		ctx := context.Background()

		container, err := tcminio.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z")
		if err != nil {
			minioErr = err
			return
		}

		minioCleanup = func() { _ = testcontainers.TerminateContainer(container) }

		endpoint, err := container.ConnectionString(ctx)
		if err != nil {
			minioErr = err
			return
		}

		minioServer = Minio{
			Endpoint:  endpoint,
			AccessKey: container.Username,
			SecretKey: container.Password,
		}
	})

	require.NoError(t, minioErr, "failed to start minio container")
	return minioServer
}

// StopMinio terminates the container started by StartMinio, if any.
func StopMinio() {
	if minioCleanup != nil {
		minioCleanup()
	}
}

func stage(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

// Run exercises store against the BlobStore contract. folder must be
// empty and unique to this run.
func Run(t *testing.T, store filecrud.BlobStore, folder string) {
	ctx := context.Background()

	empty, err := store.List(ctx, folder)
	require.NoError(t, err)
	assert.Empty(t, empty)

	local := stage(t, "deck.pptx", "pptx bytes")
	ref, err := store.Upload(ctx, local, folder, filecrud.MIMETypePPTX)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref.ID, folder+"/"))
	assert.True(t, strings.HasSuffix(ref.ID, ".pptx"))
	assert.True(t, strings.HasSuffix(ref.URL, "/"+ref.ID))

	_, err = os.Stat(local)
	assert.NoError(t, err, "upload must not consume the staged file")

	other, err := store.Upload(ctx, stage(t, "a.zip", "zip"), folder, filecrud.MIMETypeZip)
	require.NoError(t, err)
	assert.NotEqual(t, ref.ID, other.ID)

	listed, err := store.List(ctx, folder)
	require.NoError(t, err)
	assert.ElementsMatch(t, []filecrud.BlobInfo{
		{ID: ref.ID, Size: int64(len("pptx bytes"))},
		{ID: other.ID, Size: int64(len("zip"))},
	}, listed)

	require.NoError(t, store.Delete(ctx, ref.ID))
	assert.ErrorIs(t, store.Delete(ctx, ref.ID), filecrud.ErrNotFound)

	listed, err = store.List(ctx, folder)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, other.ID, listed[0].ID)
}
