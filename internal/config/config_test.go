package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.6, cfg.Match.MinConfidence)
	assert.Equal(t, 3, cfg.Match.MinSearchLength)
	assert.Equal(t, 600*time.Millisecond, cfg.Match.Debounce)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Contains(t, cfg.Browser.UserAgent, "Chrome/")
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "showlink.yaml")
	content := `
site:
  fallback_url: https://example.test/brands/fallback/
match:
  min_confidence: 0.58
  debounce: 250ms
run:
  workers: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("SHOWLINK_RETRY_ATTEMPTS", "5")
	t.Setenv("SHOWLINK_BROWSER_CHROME_MAJOR", "140")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/brands/fallback/", cfg.Site.FallbackURL)
	assert.Equal(t, Default().Site.SearchURL, cfg.Site.SearchURL)
	assert.Equal(t, 0.58, cfg.Match.MinConfidence)
	assert.Equal(t, 250*time.Millisecond, cfg.Match.Debounce)
	assert.Equal(t, 4, cfg.Run.Workers)
	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Contains(t, cfg.Browser.UserAgent, "Chrome/140.")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"floor too high", func(c *Config) { c.Match.MinConfidence = 1 }},
		{"floor zero", func(c *Config) { c.Match.MinConfidence = 0 }},
		{"no workers", func(c *Config) { c.Run.Workers = 0 }},
		{"no fallback", func(c *Config) { c.Site.FallbackURL = "" }},
		{"no attempts", func(c *Config) { c.Retry.Attempts = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
