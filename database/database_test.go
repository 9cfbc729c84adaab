package database_test

import (
	"context"
	"testing"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/Yashchauhan008/file-crud/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(tableName string) database.Config {
	return database.Config{
		Type:   "sqlite",
		DSN:    ":memory:",
		Tables: filecrud.Tables{Resources: tableName},
	}
}

func TestConnect_SQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Connect(ctx, newTestConfig("connect_test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.NoError(t, db.Ping(ctx))
	assert.Error(t, db.Validate(ctx), "connect does not migrate")
}

func TestConnect_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*database.Config)
		wantMsg string
	}{
		{"unknown type", func(c *database.Config) { c.Type = "cassandra" }, "unsupported database type: cassandra"},
		{"empty type", func(c *database.Config) { c.Type = "" }, "unsupported database type"},
		{"bad table name", func(c *database.Config) { c.Tables.Resources = "Bad-Name" }, "resources"},
		{"empty table name", func(c *database.Config) { c.Tables.Resources = "" }, "cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := newTestConfig("whatever")
			tt.mutate(&cfg)

			_, err := database.Connect(context.Background(), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestOpen_SQLiteMissingDirectory(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig("resources")
	cfg.DSN = t.TempDir() + "/missing/dir/filecrud.db"

	_, err := database.Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpen_SQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Open(ctx, newTestConfig("open_test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.NoError(t, db.Validate(ctx))

	repo := db.GetRepo()
	created, err := repo.Insert(ctx, filecrud.Resource{
		Topic: "math", Title: "notes", Description: "d", FileName: "n.docx",
		FileURL: "u", BlobID: "resources/n.docx", FileType: filecrud.MIMETypeDOCX, Size: 3,
	})
	require.NoError(t, err)

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, created.ID, got[0].ID)
}

func TestDatabase_Close(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Connect(ctx, newTestConfig("close_test"))
	require.NoError(t, err)

	assert.NoError(t, db.Close())
	assert.Error(t, db.Ping(ctx), "ping should fail after close")
}
