package e2e_test

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/Yashchauhan008/file-crud/clientcli"
)

func sqliteServer(t *testing.T, maxUpload int64) (string, ServerConfig) {
	t.Helper()

	cfg := ServerConfig{
		Port:          getOpenPort(t),
		DBType:        "sqlite",
		DBDSN:         filepath.Join(t.TempDir(), "test.db"),
		StoragePath:   t.TempDir(),
		MaxUploadSize: maxUpload,
	}
	baseURL, _ := startServer(t, cfg)
	return baseURL, cfg
}

func newClient(t *testing.T, baseURL string) *clientcli.Client {
	t.Helper()
	client, err := clientcli.New(&clientcli.Config{Endpoint: baseURL})
	require.NoError(t, err)
	return client
}

// TestE2E_Lifecycle_SQLite runs the full resource lifecycle on SQLite.
func TestE2E_Lifecycle_SQLite(t *testing.T) {
	baseURL, cfg := sqliteServer(t, 0)
	runLifecycleTests(t, baseURL, cfg.StoragePath)
}

// TestE2E_Lifecycle_Postgres runs the full resource lifecycle on PostgreSQL.
func TestE2E_Lifecycle_Postgres(t *testing.T) {
	cfg := ServerConfig{
		Port:        getOpenPort(t),
		DBType:      "postgres",
		DBDSN:       getSharedPostgresDSN(t),
		StoragePath: t.TempDir(),
	}
	baseURL, _ := startServer(t, cfg)
	runLifecycleTests(t, baseURL, cfg.StoragePath)
}

// TestE2E_Lifecycle_Mongo runs the full resource lifecycle on MongoDB.
func TestE2E_Lifecycle_Mongo(t *testing.T) {
	cfg := ServerConfig{
		Port:        getOpenPort(t),
		DBType:      "mongo",
		DBDSN:       getSharedMongoURI(t),
		DBName:      "filecrud_e2e",
		StoragePath: t.TempDir(),
	}
	baseURL, _ := startServer(t, cfg)
	runLifecycleTests(t, baseURL, cfg.StoragePath)
}

// runLifecycleTests uploads two resources, then lists, gets, downloads and
// deletes them through the client library.
func runLifecycleTests(t *testing.T, baseURL, storagePath string) {
	t.Helper()
	ctx := context.Background()
	client := newClient(t, baseURL)
	srcDir := t.TempDir()

	notesPath, notesBytes := writeArchive(t, srcDir, "notes.pptx")
	bundlePath, _ := writeArchive(t, srcDir, "bundle.zip")

	var first, second *filecrud.Resource

	t.Run("upload returns the created resource", func(t *testing.T) {
		var err error
		first, err = client.Upload(ctx, clientcli.UploadOptions{
			LocalPath:   notesPath,
			Topic:       "math",
			Title:       "Algebra Notes",
			Description: "chapter 1",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, first.ID)
		assert.Equal(t, "notes.pptx", first.FileName)
		assert.Equal(t, filecrud.MIMETypePPTX, first.FileType)
		assert.Equal(t, int64(len(notesBytes)), first.Size)
		assert.Contains(t, first.FileURL, baseURL+"/files/resources/")
		assert.WithinDuration(t, time.Now(), first.UploadedAt, time.Minute)

		// Millisecond ordering must separate the two uploads.
		time.Sleep(5 * time.Millisecond)

		second, err = client.Upload(ctx, clientcli.UploadOptions{
			LocalPath:   bundlePath,
			Topic:       "physics",
			Title:       "Lab Bundle",
			Description: "all labs",
		})
		require.NoError(t, err)
		assert.Equal(t, filecrud.MIMETypeZip, second.FileType)
	})

	require.NotNil(t, first)
	require.NotNil(t, second)

	t.Run("blob is stored under the resources folder", func(t *testing.T) {
		_, err := os.Stat(filepath.Join(storagePath, first.BlobID))
		assert.NoError(t, err)
	})

	t.Run("list is newest first", func(t *testing.T) {
		result, err := client.List(ctx)
		require.NoError(t, err)

		positions := map[string]int{}
		for i, r := range result.Items {
			positions[r.ID] = i
		}
		require.Contains(t, positions, first.ID)
		require.Contains(t, positions, second.ID)
		assert.Less(t, positions[second.ID], positions[first.ID])
	})

	t.Run("get returns the stored metadata", func(t *testing.T) {
		got, err := client.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, "math", got.Topic)
		assert.Equal(t, "Algebra Notes", got.Title)
		assert.Equal(t, "chapter 1", got.Description)
		assert.True(t, first.UploadedAt.Equal(got.UploadedAt))
	})

	t.Run("download returns the uploaded bytes", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "copy.pptx")
		result, _, err := client.Download(ctx, clientcli.DownloadOptions{ID: first.ID, LocalPath: out})
		require.NoError(t, err)
		assert.Equal(t, int64(len(notesBytes)), result.Size)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, notesBytes, data)
	})

	t.Run("delete removes record and blob", func(t *testing.T) {
		results, err := client.Delete(ctx, clientcli.DeleteOptions{IDs: []string{first.ID, second.ID}})
		require.NoError(t, err)
		assert.False(t, clientcli.HasDeleteErrors(results))

		_, err = client.Get(ctx, first.ID)
		assert.ErrorIs(t, err, clientcli.ErrNotFound)

		resp, err := http.Get(first.FileURL)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		_, err = os.Stat(filepath.Join(storagePath, first.BlobID))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("second delete is not found", func(t *testing.T) {
		results, err := client.Delete(ctx, clientcli.DeleteOptions{IDs: []string{first.ID}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.ErrorIs(t, results[0].Err, clientcli.ErrNotFound)
	})
}

// TestE2E_UploadRejections_SQLite checks that invalid uploads are rejected
// before anything is stored.
func TestE2E_UploadRejections_SQLite(t *testing.T) {
	baseURL, cfg := sqliteServer(t, 4<<10)
	_, archive := writeArchive(t, t.TempDir(), "notes.pptx")

	fields := map[string]string{"topic": "math", "title": "Algebra", "description": "chapter 1"}
	big := make([]byte, 8<<10)

	tests := []struct {
		name        string
		fields      map[string]string
		fileName    string
		contentType string
		content     []byte
		message     string
	}{
		{"no file", fields, "", "", nil, "No file uploaded"},
		{"disallowed type", fields, "notes.txt", "text/plain", []byte("hello"), "File type not allowed. Only zip, docx and pptx are accepted"},
		{"missing title", map[string]string{"topic": "math", "description": "chapter 1"}, "notes.pptx", filecrud.MIMETypePPTX, archive, "Missing required fields: title"},
		{"blank topic", map[string]string{"topic": "  ", "title": "Algebra", "description": "chapter 1"}, "notes.pptx", filecrud.MIMETypePPTX, archive, "Missing required fields: topic"},
		{"too large", fields, "big.zip", filecrud.MIMETypeZip, big, "File too large. Maximum size is 4.0 KiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := postUpload(t, baseURL, tt.fields, tt.fileName, tt.contentType, tt.content)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.Equal(t, "validation_error", env.Error)
			assert.Equal(t, tt.message, env.Message)
		})
	}

	t.Run("nothing was stored", func(t *testing.T) {
		result, err := newClient(t, baseURL).List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, result.Items)

		entries, err := os.ReadDir(filepath.Join(cfg.StoragePath, filecrud.DefaultFolder))
		if err == nil {
			assert.Empty(t, entries)
		}
	})
}

// TestE2E_ErrorResponses_SQLite checks the JSON error envelope for routing
// and lookup failures.
func TestE2E_ErrorResponses_SQLite(t *testing.T) {
	baseURL, _ := sqliteServer(t, 0)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		code   string
	}{
		{"unknown id", http.MethodGet, "/api/resources/does-not-exist", http.StatusNotFound, "not_found"},
		{"delete unknown id", http.MethodDelete, "/api/resources/does-not-exist", http.StatusNotFound, "not_found"},
		{"unknown route", http.MethodGet, "/api/nothing", http.StatusNotFound, "not_found"},
		{"wrong method", http.MethodPut, "/api/resources/upload", http.StatusMethodNotAllowed, "method_not_allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, baseURL+tt.path, http.NoBody)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

			var env apiEnvelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error)
		})
	}
}
