// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string `validate:"required,numeric"`
	Env  string `validate:"oneof=development production testing"`

	// PostgreSQL connection
	DBHost     string `validate:"required"`
	DBPort     string `validate:"required,numeric"`
	DBUser     string `validate:"required"`
	DBPassword string
	DBName     string `validate:"required"`

	// Valkey (Redis-compatible cache and session store)
	ValkeyHost     string `validate:"required"`
	ValkeyPort     string `validate:"required,numeric"`
	ValkeyPassword string
	ValkeyDB       int `validate:"min=0,max=15"`

	// ViewCacheTTL bounds how long a resolved portal stays cached.
	ViewCacheTTL time.Duration

	// S3-compatible storage for client logos. Optional.
	S3Endpoint  string `validate:"omitempty,url"`
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string `validate:"required_with=S3Endpoint"`
	S3PublicURL string `validate:"omitempty,url"`

	// Observability
	SentryDSN string `validate:"omitempty,url"`
	LogFile   string
	LogLevel  string `validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadDotenv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if a value is
// malformed or critical values are missing in production mode.
func Load() (*Config, error) {
	ttl, err := time.ParseDuration(envOrDefault("VIEW_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("VIEW_CACHE_TTL: %w", err)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("VIEW_CACHE_TTL must not be negative")
	}

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "portal"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "portal"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		ValkeyDB:       envInt("VALKEY_DB", 0),

		ViewCacheTTL: ttl,

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "portal-assets"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		SentryDSN: os.Getenv("SENTRY_DSN"),
		LogFile:   os.Getenv("LOG_FILE"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SecureCookies reports whether session and CSRF cookies need the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.Env == "production"
}

// StorageEnabled reports whether logo uploads can be served.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt reads an integer environment variable, returning fallback when
// unset or malformed.
func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}
