package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 4096, cfg.Query.MaxSize)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_FileAndEnv(t *testing.T) {
	isolate(t)

	file := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
log_level: debug
http:
  address: 127.0.0.1:9000
query:
  max_size: 128
`), 0o644))
	t.Setenv("PROVVIEW_METRICS_ENABLED", "false")
	t.Setenv("PROVVIEW_LOG_FORMAT", "json")
	t.Setenv("PROVVIEW_QUERY_MAX_SIZE", "256")

	cfg, err := Load(New(), file)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Address)
	assert.Equal(t, 256, cfg.Query.MaxSize)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_SearchPath(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("provview.yaml", []byte("log_level: warn\n"), 0o644))

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)

	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "error reading config file")
	})

	t.Run("InvalidValues", func(t *testing.T) {
		t.Setenv("PROVVIEW_LOG_LEVEL", "loud")
		t.Setenv("PROVVIEW_QUERY_MAX_SIZE", "0")
		t.Setenv("PROVVIEW_LOG_FORMAT", "xml")

		_, err := Load(New(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log_level")
		assert.Contains(t, err.Error(), "query.max_size must be positive")
		assert.Contains(t, err.Error(), "log_format")
	})
}
