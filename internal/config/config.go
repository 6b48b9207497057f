// Package config loads the calendar API configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// StoreSchemes are the connection URI schemes store.Open understands.
var StoreSchemes = []string{"mongodb", "mongodb+srv", "postgres", "postgresql", "memory"}

type Config struct {
	Port     string
	StoreURI string
	Database string

	Env       string
	LogLevel  string
	LogFormat string

	Version string
	Commit  string

	Snapshot SnapshotConfig
}

// SnapshotConfig controls the periodic collection snapshot upload.
type SnapshotConfig struct {
	Enabled   bool
	Interval  time.Duration
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	v := NewConfigValidator()

	cfg := &Config{
		Port:     get("PORT", "5000"),
		StoreURI: get("MONGODB_URI", "mongodb://localhost:27017/calendar"),
		Database: get("MONGODB_DB", "calendar"),
		Env:      get("APP_ENV", "development"),
		LogLevel: get("LOG_LEVEL", "info"),
		Version:  get("APP_VERSION", "dev"),
		Commit:   get("APP_COMMIT", "unknown"),
	}

	defaultFormat := "text"
	if cfg.Env == "production" {
		defaultFormat = "json"
	}
	cfg.LogFormat = get("LOG_FORMAT", defaultFormat)

	cfg.Snapshot = SnapshotConfig{
		Enabled:   v.ValidateBool("SNAPSHOT_ENABLED", get("SNAPSHOT_ENABLED", "false")),
		Interval:  v.ValidateDuration("SNAPSHOT_INTERVAL", get("SNAPSHOT_INTERVAL", "24h")),
		Endpoint:  get("SNAPSHOT_S3_ENDPOINT", ""),
		AccessKey: get("SNAPSHOT_S3_ACCESS_KEY", ""),
		SecretKey: get("SNAPSHOT_S3_SECRET_KEY", ""),
		Bucket:    get("SNAPSHOT_S3_BUCKET", ""),
		Prefix:    get("SNAPSHOT_S3_PREFIX", "snapshots"),
	}

	cfg.validate(v)
	if v.HasErrors() {
		return nil, errors.New(v.ErrorString())
	}
	return cfg, nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func (c *Config) validate(v *ConfigValidator) {
	v.ValidatePort("PORT", c.Port)
	v.ValidateURLScheme("MONGODB_URI", c.StoreURI, StoreSchemes)
	v.ValidateRequired("MONGODB_DB", c.Database)

	v.ValidateEnum("APP_ENV", c.Env, []string{"development", "staging", "production"})
	v.ValidateEnum("LOG_LEVEL", c.LogLevel, []string{"debug", "info", "warn", "error"})
	v.ValidateEnum("LOG_FORMAT", c.LogFormat, []string{"json", "text"})

	if !c.Snapshot.Enabled {
		return
	}
	v.ValidateRequired("SNAPSHOT_S3_ENDPOINT", c.Snapshot.Endpoint)
	v.ValidateRequired("SNAPSHOT_S3_ACCESS_KEY", c.Snapshot.AccessKey)
	v.ValidateRequired("SNAPSHOT_S3_SECRET_KEY", c.Snapshot.SecretKey)
	v.ValidateRequired("SNAPSHOT_S3_BUCKET", c.Snapshot.Bucket)
	if strings.Contains(c.Snapshot.Endpoint, "://") {
		v.ValidateURLScheme("SNAPSHOT_S3_ENDPOINT", c.Snapshot.Endpoint, []string{"http", "https"})
	}
}
