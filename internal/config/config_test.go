package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, "mongodb://localhost:27017/calendar", cfg.StoreURI)
	assert.Equal(t, "calendar", cfg.Database)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Snapshot.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Snapshot.Interval)
	assert.Equal(t, "snapshots", cfg.Snapshot.Prefix)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":        "8080",
		"MONGODB_URI": "postgres://u:p@db:5432/calendar?sslmode=disable",
		"MONGODB_DB":  "cal",
		"APP_ENV":     "production",
		"LOG_LEVEL":   "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "postgres://u:p@db:5432/calendar?sslmode=disable", cfg.StoreURI)
	assert.Equal(t, "cal", cfg.Database)
	assert.Equal(t, "json", cfg.LogFormat, "production defaults to json logs")
}

func TestFromEnv_CollectsAllErrors(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{
		"PORT":        "99999",
		"MONGODB_URI": "redis://localhost:6379",
		"LOG_LEVEL":   "verbose",
	}))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "3 error(s)")
	assert.Contains(t, msg, "PORT")
	assert.Contains(t, msg, "MONGODB_URI")
	assert.Contains(t, msg, "LOG_LEVEL")
}

func TestFromEnv_SnapshotRequiresS3Settings(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{
		"SNAPSHOT_ENABLED":     "true",
		"SNAPSHOT_S3_ENDPOINT": "ftp://minio:9000",
	}))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "SNAPSHOT_S3_ACCESS_KEY")
	assert.Contains(t, msg, "SNAPSHOT_S3_SECRET_KEY")
	assert.Contains(t, msg, "SNAPSHOT_S3_BUCKET")
	assert.Contains(t, msg, "SNAPSHOT_S3_ENDPOINT")
}

func TestFromEnv_SnapshotEnabled(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"SNAPSHOT_ENABLED":       "true",
		"SNAPSHOT_INTERVAL":      "6h",
		"SNAPSHOT_S3_ENDPOINT":   "http://minio:9000",
		"SNAPSHOT_S3_ACCESS_KEY": "minio",
		"SNAPSHOT_S3_SECRET_KEY": "minio123",
		"SNAPSHOT_S3_BUCKET":     "calendar",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.Snapshot.Enabled)
	assert.Equal(t, 6*time.Hour, cfg.Snapshot.Interval)
}

func TestConfigValidator_Port(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"5000", false},
		{":8080", false},
		{"0", true},
		{"65536", true},
		{"abc", true},
		{"", false},
	}

	for _, tt := range tests {
		v := NewConfigValidator()
		v.ValidatePort("PORT", tt.value)
		if v.HasErrors() != tt.wantErr {
			t.Errorf("ValidatePort(%q) errors = %v, want %v", tt.value, v.Errors(), tt.wantErr)
		}
	}
}

func TestConfigValidator_Duration(t *testing.T) {
	v := NewConfigValidator()
	assert.Equal(t, 90*time.Minute, v.ValidateDuration("D", "90m"))
	assert.False(t, v.HasErrors())

	assert.Zero(t, v.ValidateDuration("D", "-1h"))
	assert.Zero(t, v.ValidateDuration("D", "daily"))
	assert.Len(t, v.Errors(), 2)
}
