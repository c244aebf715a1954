//go:build unit

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "L", cfg.Covers.Size)
	assert.Equal(t, "ask", cfg.Capture.Fallback)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "missing base url", modify: func(c *Config) { c.API.BaseURL = "" }, wantErr: true},
		{name: "zero timeout", modify: func(c *Config) { c.API.Timeout = 0 }, wantErr: true},
		{name: "bad cover size", modify: func(c *Config) { c.Covers.Size = "XL" }, wantErr: true},
		{name: "bad fallback", modify: func(c *Config) { c.Capture.Fallback = "retry" }, wantErr: true},
		{name: "zero rps", modify: func(c *Config) { c.OpenLibrary.RPS = 0 }, wantErr: true},
		{name: "bad locale", modify: func(c *Config) { c.Locale = "not a tag!" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: https://books.example.com\n  timeout: 3s\nlocale: fr\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://books.example.com", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "fr", cfg.Locale)
	assert.Equal(t, "https://covers.openlibrary.org", cfg.Covers.BaseURL)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BOOKTRACK_API_URL":         "http://api.test",
		"BOOKTRACK_API_TIMEOUT":     "250ms",
		"BOOKTRACK_COVER_SIZE":      "m",
		"BOOKTRACK_OPENLIBRARY_RPS": "4",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := DefaultConfig()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, "http://api.test", cfg.API.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.API.Timeout)
	assert.Equal(t, "M", cfg.Covers.Size)
	assert.Equal(t, 4, cfg.OpenLibrary.RPS)

	env["BOOKTRACK_API_TIMEOUT"] = "soon"
	assert.Error(t, DefaultConfig().applyEnv(lookup))
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capture:\n  fallback: local\n"), 0o644))
	t.Setenv("BOOKTRACK_API_URL", "http://from-env:9000")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Capture.Fallback)
	assert.Equal(t, "http://from-env:9000", cfg.API.BaseURL)
}
