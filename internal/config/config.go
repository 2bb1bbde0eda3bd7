// Package config loads application configuration from flags, environment variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Blob backends.
const (
	BlobFilesystem = "filesystem"
	BlobBadger     = "badger"
	BlobMinio      = "minio"
	BlobS3         = "s3"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Blob     BlobConfig
	Events   EventsConfig
	Server   ServerConfig
	Auth     AuthConfig
	Export   ExportConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds local paths.
type StorageConfig struct {
	// DataPath holds the sqlite database, the auth key and filesystem/badger blobs.
	DataPath string
}

// DatabaseConfig selects the record store.
type DatabaseConfig struct {
	Driver      string
	PostgresURL string
}

// BlobConfig selects and configures the photo blob store.
type BlobConfig struct {
	Backend string
	Bucket  string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool

	S3Region string
}

// EventsConfig configures entry lifecycle publishing. Empty Brokers disables it.
type EventsConfig struct {
	Brokers []string
	Topic   string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	CORSOrigins    []string
	MaxUploadBytes int64
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	AccessTokenDuration time.Duration
}

// ExportConfig holds export throttling.
type ExportConfig struct {
	RatePerMinute int
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags.
// 2. Environment variables.
// 3. .env file.
// 4. Defaults.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("custodylog", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the database, auth key and local blobs")
	dbDriver := fs.String("db-driver", "", "Record store driver (sqlite, postgres)")
	postgresURL := fs.String("postgres-url", "", "Postgres connection string")
	blobBackend := fs.String("blob-backend", "", "Photo storage backend (filesystem, badger, minio, s3)")
	blobBucket := fs.String("blob-bucket", "", "Bucket name for minio and s3 backends")
	s3Region := fs.String("s3-region", "", "AWS region for the s3 backend")
	kafkaBrokers := fs.String("kafka-brokers", "", "Comma separated Kafka brokers (empty disables events)")
	kafkaTopic := fs.String("kafka-topic", "", "Topic for entry events")
	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins")
	maxUploadMB := fs.String("max-upload-mb", "", "Maximum multipart upload size in MB (default: 50)")
	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (default: 24h)")
	exportRate := fs.String("export-rate", "", "Exports allowed per user per minute (default: 30)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Missing .env is fine. godotenv never overrides variables that are already set.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Database: DatabaseConfig{
			Driver:      getConfigValue(*dbDriver, "DB_DRIVER", DriverSQLite),
			PostgresURL: getConfigValue(*postgresURL, "POSTGRES_URL", ""),
		},
		Blob: BlobConfig{
			Backend:        getConfigValue(*blobBackend, "BLOB_BACKEND", BlobFilesystem),
			Bucket:         getConfigValue(*blobBucket, "BLOB_BUCKET", "custody-photos"),
			MinioEndpoint:  getConfigValue("", "MINIO_ENDPOINT", "localhost:9000"),
			MinioAccessKey: getConfigValue("", "MINIO_ACCESS_KEY", ""),
			MinioSecretKey: getConfigValue("", "MINIO_SECRET_KEY", ""),
			MinioUseSSL:    getBoolConfigValue("", "MINIO_USE_SSL", false),
			S3Region:       getConfigValue(*s3Region, "S3_REGION", os.Getenv("AWS_REGION")),
		},
		Events: EventsConfig{
			Brokers: splitList(getConfigValue(*kafkaBrokers, "KAFKA_BROKERS", "")),
			Topic:   getConfigValue(*kafkaTopic, "KAFKA_TOPIC", "custody.entries"),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*port, "SERVER_PORT", "8080"),
			CORSOrigins:    splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "http://localhost:3000")),
			MaxUploadBytes: int64(getIntConfigValue(*maxUploadMB, "MAX_UPLOAD_MB", 50)) << 20,
		},
		Export: ExportConfig{
			RatePerMinute: getIntConfigValue(*exportRate, "EXPORT_RATE_PER_MINUTE", 30),
		},
	}

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		dst       *time.Duration
	}{
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "24h", &cfg.Auth.AccessTokenDuration},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "60s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("invalid database driver: %s (must be sqlite or postgres)", c.Database.Driver)
	}

	switch c.Blob.Backend {
	case BlobFilesystem, BlobBadger:
	case BlobMinio, BlobS3:
		if c.Blob.Bucket == "" {
			return fmt.Errorf("BLOB_BUCKET is required for the %s backend", c.Blob.Backend)
		}
	default:
		return fmt.Errorf("invalid blob backend: %s (must be filesystem, badger, minio, or s3)", c.Blob.Backend)
	}

	if c.Export.RatePerMinute <= 0 {
		return errors.New("export rate must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// An empty path yields defaultPath unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, "CustodyLog", "data"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (any case) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// getIntConfigValue returns defaultValue when the value is missing or not an integer.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
