package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/Yashchauhan008/file-crud/blobstore"
	"github.com/Yashchauhan008/file-crud/database"
	filecrudhttp "github.com/Yashchauhan008/file-crud/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for the filecrud server.
type Config struct {
	Server   ServerConfig            `mapstructure:"server"`
	Service  ServiceConfig           `mapstructure:"service"`
	Database DatabaseConfig          `mapstructure:"database"`
	Storage  StorageConfig           `mapstructure:"storage"`
	CORS     filecrudhttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig               `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Env           string `mapstructure:"env" validate:"required,oneof=development production"`
	MaxUploadSize int64  `mapstructure:"max_upload_size" validate:"min=1"`
	StagingDir    string `mapstructure:"staging_dir" validate:"required"`
	PublicURL     string `mapstructure:"public_url" validate:"required,url"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Folder            string `mapstructure:"folder" validate:"required"`
	CleanupTimeout    int    `mapstructure:"cleanup_timeout" validate:"min=1"`
	CompensateOrphans bool   `mapstructure:"compensate_orphans"`
}

// DatabaseConfig holds metadata store configuration.
type DatabaseConfig struct {
	Type       string          `mapstructure:"type" validate:"required,oneof=mongo mongodb postgres sqlite"`
	DSN        string          `mapstructure:"dsn" validate:"required"`
	Name       string          `mapstructure:"name" validate:"required_if=Type mongo,required_if=Type mongodb"`
	Collection string          `mapstructure:"collection" validate:"required_if=Type mongo,required_if=Type mongodb"`
	Tables     filecrud.Tables `mapstructure:"tables"`
}

// StorageConfig holds blob store configuration.
type StorageConfig struct {
	Type      string `mapstructure:"type" validate:"required,oneof=filesystem minio s3"`
	Path      string `mapstructure:"path" validate:"required_if=Type filesystem"`
	Endpoint  string `mapstructure:"endpoint" validate:"required_if=Type minio"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key" validate:"required_if=Type minio"`
	SecretKey string `mapstructure:"secret_key" validate:"required_if=Type minio"`
	Bucket    string `mapstructure:"bucket" validate:"required_unless=Type filesystem"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	// PublicURL overrides the base URL handed out for minio and s3 blobs.
	PublicURL string `mapstructure:"public_url" validate:"omitempty,url"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// Env returns the parsed runtime mode.
func (c *Config) Env() filecrud.Env {
	return filecrud.Env(c.Server.Env)
}

// DatabaseConfig converts the database section for database.Open.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		Type:       c.Database.Type,
		DSN:        c.Database.DSN,
		Name:       c.Database.Name,
		Collection: c.Database.Collection,
		Tables:     c.Database.Tables,
	}
}

// BlobStoreConfig converts the storage section for blobstore.Open. Blobs in
// the filesystem store are addressed through the server's /files route.
func (c *Config) BlobStoreConfig() blobstore.Config {
	publicURL := c.Storage.PublicURL
	if c.Storage.Type == "filesystem" {
		publicURL = strings.TrimSuffix(c.Server.PublicURL, "/") + "/files"
	}

	return blobstore.Config{
		Type:      c.Storage.Type,
		Path:      c.Storage.Path,
		PublicURL: publicURL,
		Endpoint:  c.Storage.Endpoint,
		Region:    c.Storage.Region,
		AccessKey: c.Storage.AccessKey,
		SecretKey: c.Storage.SecretKey,
		Bucket:    c.Storage.Bucket,
		UseSSL:    c.Storage.UseSSL,
	}
}

// ServiceConfig converts the service section for filecrud.NewResourceService.
func (c *Config) ServiceConfig() filecrud.ServiceConfig {
	return filecrud.ServiceConfig{
		Folder:            c.Service.Folder,
		CleanupTimeout:    time.Duration(c.Service.CleanupTimeout) * time.Second,
		CompensateOrphans: c.Service.CompensateOrphans,
	}
}

// HandlerConfig converts the server and CORS sections for the HTTP handler.
// Files is left for the caller to set.
func (c *Config) HandlerConfig() filecrudhttp.HandlerConfig {
	return filecrudhttp.HandlerConfig{
		Env:           c.Env(),
		MaxUploadSize: c.Server.MaxUploadSize,
		StagingDir:    c.Server.StagingDir,
		CORS:          c.CORS,
	}
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":         "server.port",
	"env":          "server.env",
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-type": "storage.type",
	"storage-path": "storage.path",
	"log-level":    "log.level",
}

// envAliases binds conventional variable names alongside the prefixed ones.
// The prefixed name wins when both are set.
var envAliases = map[string][]string{
	"server.port":  {"FILECRUD_SERVER_PORT", "PORT"},
	"server.env":   {"FILECRUD_SERVER_ENV", "APP_ENV", "NODE_ENV"},
	"database.dsn": {"FILECRUD_DATABASE_DSN", "MONGODB_URI"},
}

// fromConventionalEnv reports whether the runtime mode value came from
// APP_ENV or NODE_ENV rather than a filecrud-specific source. Those are
// shared with other tooling and carry values such as "test" or "staging".
func fromConventionalEnv(value string, flags *pflag.FlagSet) bool {
	if os.Getenv("FILECRUD_SERVER_ENV") != "" {
		return false
	}
	if flags != nil && flags.Changed("env") {
		return false
	}
	return value != "" && (value == os.Getenv("APP_ENV") || value == os.Getenv("NODE_ENV"))
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key is
// given a default so environment variables reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.env", string(filecrud.EnvDevelopment))
	v.SetDefault("server.max_upload_size", filecrud.MaxUploadSize)
	v.SetDefault("server.staging_dir", filepath.Join(os.TempDir(), "filecrud-staging"))
	v.SetDefault("server.public_url", "http://localhost:5000")

	v.SetDefault("service.folder", filecrud.DefaultFolder)
	v.SetDefault("service.cleanup_timeout", 30) // seconds
	v.SetDefault("service.compensate_orphans", false)

	v.SetDefault("database.type", "mongo")
	v.SetDefault("database.dsn", "mongodb://localhost:27017")
	v.SetDefault("database.name", "filecrud")
	v.SetDefault("database.collection", "resources")
	v.SetDefault("database.tables.resources", "resources")

	v.SetDefault("storage.type", "filesystem")
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.public_url", "")

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type"})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
}

// loadDotEnv copies variables from a .env file in the working directory into
// the process environment. Variables already set are left alone.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error reading .env file", "err", err)
	}
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > .env > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	loadDotEnv()

	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("FILECRUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	env, err := filecrud.ParseEnv(cfg.Server.Env)
	if err != nil {
		if !fromConventionalEnv(cfg.Server.Env, flags) {
			return nil, fmt.Errorf("validate config: %w", err)
		}
		slog.Warn("ignoring unrecognised runtime mode from environment, using development", "value", cfg.Server.Env)
		env = filecrud.EnvDevelopment
	}
	cfg.Server.Env = string(env)

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if cfg.Database.Type != "mongo" && cfg.Database.Type != "mongodb" {
		if err := cfg.Database.Tables.Validate(); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
	}

	return &cfg, nil
}
