package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/Yashchauhan008/file-crud/config"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, filecrud.MaxUploadSize, cfg.Server.MaxUploadSize)
	assert.Equal(t, filepath.Join(os.TempDir(), "filecrud-staging"), cfg.Server.StagingDir)
	assert.Equal(t, "http://localhost:5000", cfg.Server.PublicURL)
	assert.Equal(t, "resources", cfg.Service.Folder)
	assert.Equal(t, 30, cfg.Service.CleanupTimeout)
	assert.False(t, cfg.Service.CompensateOrphans)
	assert.Equal(t, "mongo", cfg.Database.Type)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.DSN)
	assert.Equal(t, "filecrud", cfg.Database.Name)
	assert.Equal(t, "resources", cfg.Database.Collection)
	assert.Equal(t, "resources", cfg.Database.Tables.Resources)
	assert.Equal(t, "filesystem", cfg.Storage.Type)
	assert.Equal(t, "./data", cfg.Storage.Path)
	assert.False(t, cfg.CORS.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  port: 8080
  env: production
  max_upload_size: 2048
  staging_dir: /var/tmp/staging
  public_url: https://files.example.com
service:
  folder: uploads
  cleanup_timeout: 5
  compensate_orphans: true
database:
  type: postgres
  dsn: postgres://localhost/test
  tables:
    resources: custom_resources
storage:
  type: minio
  endpoint: localhost:9000
  access_key: minioadmin
  secret_key: minioadmin
  bucket: resources
  use_ssl: true
log:
  level: debug
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, int64(2048), cfg.Server.MaxUploadSize)
	assert.Equal(t, "/var/tmp/staging", cfg.Server.StagingDir)
	assert.Equal(t, "https://files.example.com", cfg.Server.PublicURL)
	assert.Equal(t, "uploads", cfg.Service.Folder)
	assert.Equal(t, 5, cfg.Service.CleanupTimeout)
	assert.True(t, cfg.Service.CompensateOrphans)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "custom_resources", cfg.Database.Tables.Resources)
	assert.Equal(t, "minio", cfg.Storage.Type)
	assert.Equal(t, "localhost:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "resources", cfg.Storage.Bucket)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	base := writeConfig(t, "base.yaml", `
server:
  port: 5000
database:
  type: sqlite
  dsn: filecrud.db
log:
  level: info
`)
	override := writeConfig(t, "override.yaml", `
server:
  port: 9000
log:
  level: warn
`)

	cfg, err := config.Load([]string{base, override}, nil)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "filecrud.db", cfg.Database.DSN)
}

func TestLoad_ShortEnvNames(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  env: prod
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, filecrud.EnvProduction, cfg.Env())
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"port out of range", "server:\n  port: 99999\n"},
		{"unknown env", "server:\n  env: staging\n"},
		{"zero upload size", "server:\n  max_upload_size: 0\n"},
		{"bad public url", "server:\n  public_url: not a url\n"},
		{"unknown database", "database:\n  type: oracle\n"},
		{"bad table name", "database:\n  type: sqlite\n  dsn: x.db\n  tables:\n    resources: Bad-Name\n"},
		{"unknown storage", "storage:\n  type: ftp\n"},
		{"minio without endpoint", "storage:\n  type: minio\n  bucket: b\n  access_key: a\n  secret_key: s\n"},
		{"s3 without bucket", "storage:\n  type: s3\n"},
		{"unknown log level", "log:\n  level: verbose\n"},
		{"zero cleanup timeout", "service:\n  cleanup_timeout: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", tt.content)

			_, err := config.Load([]string{path}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestLoad_WithCORS(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
cors:
  enabled: true
  allowed_origins:
    - https://example.com
    - https://app.example.com
  allowed_methods:
    - GET
    - POST
  allowed_headers:
    - Content-Type
  max_age: 600
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://example.com", "https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, []string{"Content-Type"}, cfg.CORS.AllowedHeaders)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FILECRUD_SERVER_PORT", "9090")
	t.Setenv("FILECRUD_DATABASE_TYPE", "postgres")
	t.Setenv("FILECRUD_STORAGE_TYPE", "s3")
	t.Setenv("FILECRUD_STORAGE_BUCKET", "my-bucket")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "my-bucket", cfg.Storage.Bucket)
}

func TestLoad_ConventionalEnvNames(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "7000")
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27017")
	t.Setenv("NODE_ENV", "production")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "mongodb://db.internal:27017", cfg.Database.DSN)
	assert.Equal(t, "production", cfg.Server.Env)
}

func TestLoad_ConventionalEnvUnknownValue(t *testing.T) {
	for _, name := range []string{"NODE_ENV", "APP_ENV"} {
		t.Run(name+" falls back to development", func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("FILECRUD_SERVER_ENV", "")
			t.Setenv("APP_ENV", "")
			t.Setenv("NODE_ENV", "")
			t.Setenv(name, "test")

			cfg, err := config.Load(nil, nil)
			require.NoError(t, err)
			assert.Equal(t, "development", cfg.Server.Env)
		})
	}

	t.Run("prefixed variable stays strict", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("NODE_ENV", "test")
		t.Setenv("FILECRUD_SERVER_ENV", "staging")

		_, err := config.Load(nil, nil)
		assert.ErrorContains(t, err, "invalid env")
	})

	t.Run("config file stays strict", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("FILECRUD_SERVER_ENV", "")
		t.Setenv("APP_ENV", "")
		t.Setenv("NODE_ENV", "")
		path := writeConfig(t, "config.yaml", "server:\n  env: staging\n")

		_, err := config.Load([]string{path}, nil)
		assert.ErrorContains(t, err, "invalid env")
	})
}

func TestLoad_PrefixedEnvWinsOverConventional(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "7000")
	t.Setenv("FILECRUD_SERVER_PORT", "7001")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Server.Port)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FILECRUD_LOG_LEVEL=error\nFILECRUD_SERVICE_FOLDER=from-dotenv\n"), 0o644))
	// Already set variables take precedence over .env.
	t.Setenv("FILECRUD_SERVICE_FOLDER", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("FILECRUD_LOG_LEVEL") })

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "from-env", cfg.Service.Folder)
}

func TestLoad_Flags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FILECRUD_SERVER_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 5000, "")
	flags.String("db-type", "mongo", "")
	flags.String("db-dsn", "", "")
	flags.String("storage-path", "./data", "")
	require.NoError(t, flags.Parse([]string{"--port=6000", "--db-type=sqlite", "--db-dsn=test.db"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Server.Port, "flags take precedence over env")
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "test.db", cfg.Database.DSN)
	assert.Equal(t, "./data", cfg.Storage.Path, "unchanged flags do not override")
}

func TestConfig_Conversions(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  env: production
  max_upload_size: 4096
  staging_dir: /tmp/stage
  public_url: http://example.com:5000/
service:
  folder: uploads
  cleanup_timeout: 12
  compensate_orphans: true
database:
  type: sqlite
  dsn: filecrud.db
storage:
  type: filesystem
  path: /srv/blobs
cors:
  enabled: true
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	dbCfg := cfg.DatabaseConfig()
	assert.Equal(t, "sqlite", dbCfg.Type)
	assert.Equal(t, "filecrud.db", dbCfg.DSN)
	assert.Equal(t, "resources", dbCfg.Tables.Resources)

	blobCfg := cfg.BlobStoreConfig()
	assert.Equal(t, "filesystem", blobCfg.Type)
	assert.Equal(t, "/srv/blobs", blobCfg.Path)
	assert.Equal(t, "http://example.com:5000/files", blobCfg.PublicURL)

	svcCfg := cfg.ServiceConfig()
	assert.Equal(t, "uploads", svcCfg.Folder)
	assert.Equal(t, 12*time.Second, svcCfg.CleanupTimeout)
	assert.True(t, svcCfg.CompensateOrphans)

	hCfg := cfg.HandlerConfig()
	assert.Equal(t, filecrud.EnvProduction, hCfg.Env)
	assert.Equal(t, int64(4096), hCfg.MaxUploadSize)
	assert.Equal(t, "/tmp/stage", hCfg.StagingDir)
	assert.True(t, hCfg.CORS.Enabled)
	assert.Nil(t, hCfg.Files)
}

func TestConfig_BlobStoreConfig_RemotePublicURL(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
storage:
  type: s3
  bucket: media
  region: eu-west-1
  public_url: https://cdn.example.com/media
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	blobCfg := cfg.BlobStoreConfig()
	assert.Equal(t, "s3", blobCfg.Type)
	assert.Equal(t, "media", blobCfg.Bucket)
	assert.Equal(t, "eu-west-1", blobCfg.Region)
	assert.Equal(t, "https://cdn.example.com/media", blobCfg.PublicURL)
}

func TestContext(t *testing.T) {
	_, err := config.FromContext(context.Background())
	require.Error(t, err)

	cfg := &config.Config{Server: config.ServerConfig{Port: 1234}}
	ctx := config.WithContext(context.Background(), cfg)

	got, err := config.FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}
