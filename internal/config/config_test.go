package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 5*time.Minute, cfg.Dataset.FetchTimeout)
	assert.Equal(t, "WV", cfg.Analysis.MapState)
	assert.Equal(t, 1.5, cfg.Analysis.HighRateCutoff)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, "out", cfg.Paths.OutDir)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
dataset:
  url: https://example.org/hmda_wv.zip
  fetch_timeout: 30s
analysis:
  map_state: MD
  high_rate_cutoff: 2.0
paths:
  data_dir: /tmp/hmda-data
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/hmda_wv.zip", cfg.Dataset.URL)
	assert.Equal(t, 30*time.Second, cfg.Dataset.FetchTimeout)
	assert.Equal(t, "MD", cfg.Analysis.MapState)
	assert.Equal(t, 2.0, cfg.Analysis.HighRateCutoff)
	assert.Equal(t, "/tmp/hmda-data", cfg.Paths.DataDir)
	// Untouched sections keep their defaults.
	assert.Equal(t, "out", cfg.Paths.OutDir)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  map_state: MD\n"), 0644))

	t.Setenv("HMDA_ANALYSIS_MAP_STATE", "TX")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "TX", cfg.Analysis.MapState)
}

func TestEnvLogLevelBeatsFileEvenAtDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644))

	// Explicitly setting the level to its default value is still an
	// explicit setting; the file must not override it.
	t.Setenv("HMDA_LOGGING_LEVEL", "info")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestFileLogLevelAppliesWhenEnvUnset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad_output", func(c *Config) { c.Logging.Output = "syslog" }},
		{"bad_state", func(c *Config) { c.Analysis.MapState = "WEST" }},
		{"bad_url", func(c *Config) { c.Dataset.URL = "not a url" }},
		{"zero_rps", func(c *Config) { c.Dataset.RateLimitRPS = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Paths: PathsConfig{
			DataDir: filepath.Join(dir, "data"),
			OutDir:  filepath.Join(dir, "out"),
		},
	}

	require.NoError(t, cfg.EnsureDirectories())
	assert.DirExists(t, cfg.Paths.DataDir)
	assert.DirExists(t, cfg.Paths.OutDir)
}
