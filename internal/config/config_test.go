package config

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"DATASET_PATH", "DATABASE_URL", "DATABASE_TABLE", "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT",
	"LOGO_URL", "ASSET_TIMEOUT", "TREND_YEARS", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets every variable Load reads; t.Setenv restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		for _, name := range []string{k, Prefix + "_" + k} {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "day.csv", cfg.DatasetPath)
	assert.Equal(t, "day", cfg.DatabaseTable)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.AssetTimeout)
	assert.Equal(t, "https://github.com/dicodingacademy/assets/raw/main/logo.png", cfg.LogoURL)
	assert.Equal(t, []int{2011, 2012}, cfg.TrendYears)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.UsePostgres())
}

func TestLoad_PrefixedOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BIKESHARE_DATASET_PATH", "/data/day.csv")
	t.Setenv("BIKESHARE_PORT", "9000")
	t.Setenv("BIKESHARE_TREND_YEARS", "2012")
	t.Setenv("BIKESHARE_LOG_FORMAT", "JSON")
	t.Setenv("BIKESHARE_ASSET_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/day.csv", cfg.DatasetPath)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []int{2012}, cfg.TrendYears)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 3*time.Second, cfg.AssetTimeout)
}

func TestLoad_UnprefixedFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://localhost/bikes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.True(t, cfg.UsePostgres())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port out of range", key: "BIKESHARE_PORT", value: "70000"},
		{name: "port not a number", key: "BIKESHARE_PORT", value: "http"},
		{name: "unknown log format", key: "BIKESHARE_LOG_FORMAT", value: "xml"},
		{name: "unknown log level", key: "BIKESHARE_LOG_LEVEL", value: "loud"},
		{name: "year out of range", key: "BIKESHARE_TREND_YEARS", value: "11,12"},
		{name: "bad logo url", key: "BIKESHARE_LOGO_URL", value: "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	log := NewLogger(&Config{LogLevel: "debug", LogFormat: "json"})
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLogger(&Config{LogLevel: "nonsense", LogFormat: "text"})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}
