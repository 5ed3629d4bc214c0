package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "imker.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "commons.wikimedia.org", cfg.Host)
	assert.Equal(t, "https", cfg.Scheme)
	assert.Equal(t, 3*time.Second, cfg.MaxLag)
	assert.Equal(t, 3, cfg.Retry.MaxFails)
	assert.Equal(t, 30*time.Second, cfg.Retry.Sleep)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	p := writeConfig(t, `
host: test.wikipedia.org
user_agent: my-mirror/0.1
max_lag: 5s
timeout: 1m
retry:
  max_fails: 5
  sleep: 10s
`)

	cfg, err := LoadFromFile(p)
	require.NoError(t, err)

	assert.Equal(t, "test.wikipedia.org", cfg.Host)
	assert.Equal(t, "https", cfg.Scheme)
	assert.Equal(t, "/w/api.php", cfg.APIPath)
	assert.Equal(t, "my-mirror/0.1", cfg.UserAgent)
	assert.Equal(t, 5*time.Second, cfg.MaxLag)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retry.MaxFails)
	assert.Equal(t, 10*time.Second, cfg.Retry.Sleep)

	opts := cfg.WikiOptions()
	assert.Equal(t, "test.wikipedia.org", opts.Host)
	assert.Equal(t, 5*time.Second, opts.MaxLag)

	b := cfg.Budget()
	assert.Equal(t, 5, b.MaxFails)
	assert.Equal(t, 10*time.Second, b.Sleep)
}

func TestLoadFromFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "retry: [unclosed"},
		{"bad duration", "retry:\n  sleep: soon\n"},
		{"bad scheme", "scheme: ftp\n"},
		{"negative retries", "retry:\n  max_fails: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
