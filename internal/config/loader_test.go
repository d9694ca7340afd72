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

	assert.Equal(t, ":8080", cfg.HTTP.ListenAddr)
	assert.Equal(t, "auto", cfg.Verifier.Mode)
	assert.Equal(t, 15*time.Second, cfg.Verifier.Timeout)
	assert.Equal(t, "https://www.linkedin.com", cfg.Verifier.BaseURL)
	assert.Equal(t, "Authorization", cfg.Remote.APIHeader)
	assert.False(t, cfg.Remote.Configured())
	assert.Equal(t, "log", cfg.Audit.Sink)
	assert.Zero(t, cfg.Cache.TTL)
	assert.True(t, cfg.Browser.Headless)
}

func TestLoadOverlays(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "prefixed env",
			env: map[string]string{
				"COOKIECHECK_HTTP__LISTEN_ADDR":       "127.0.0.1:9000",
				"COOKIECHECK_VERIFIER__TIMEOUT":       "20s",
				"COOKIECHECK_BROWSER__MAX_CONCURRENT": "8",
				"COOKIECHECK_CACHE__TTL":              "10m",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.ListenAddr)
				assert.Equal(t, 20*time.Second, cfg.Verifier.Timeout)
				assert.Equal(t, int64(8), cfg.Browser.MaxConcurrent)
				assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
			},
		},
		{
			name: "legacy env",
			env: map[string]string{
				"LINKEDIN_VERIFIER_MODE":              "api",
				"LINKEDIN_COOKIE_VERIFIER_API":        "https://verifier.internal/check",
				"LINKEDIN_COOKIE_VERIFIER_API_KEY":    "secret",
				"LINKEDIN_COOKIE_VERIFIER_API_HEADER": "X-Api-Key",
				"LINKEDIN_COOKIE_VERIFIER_TIMEOUT":    "7.5",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "api", cfg.Verifier.Mode)
				assert.Equal(t, "https://verifier.internal/check", cfg.Remote.Endpoint)
				assert.Equal(t, "secret", cfg.Remote.APIKey)
				assert.Equal(t, "X-Api-Key", cfg.Remote.APIHeader)
				assert.Equal(t, 7500*time.Millisecond, cfg.Verifier.Timeout)
				assert.Equal(t, 7500*time.Millisecond, cfg.Remote.Timeout)
				assert.True(t, cfg.Remote.Configured())
			},
		},
		{
			name: "prefixed env beats legacy",
			env: map[string]string{
				"LINKEDIN_VERIFIER_MODE":     "api",
				"COOKIECHECK_VERIFIER__MODE": "local",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "local", cfg.Verifier.Mode)
			},
		},
		{
			name: "invalid legacy timeout ignored",
			env: map[string]string{
				"LINKEDIN_COOKIE_VERIFIER_TIMEOUT": "soon",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 15*time.Second, cfg.Verifier.Timeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("")
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookiecheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
verifier:
  mode: remote
remote:
  endpoint: https://verifier.internal/check
  retry_max: 3
audit:
  sink: redis
`), 0o600))

	t.Setenv("COOKIECHECK_REMOTE__RETRY_MAX", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "remote", cfg.Verifier.Mode)
	assert.Equal(t, "https://verifier.internal/check", cfg.Remote.Endpoint)
	assert.Equal(t, 2, cfg.Remote.RetryMax)
	assert.Equal(t, "redis", cfg.Audit.Sink)
}

func TestLoadValidation(t *testing.T) {
	tests := map[string]string{
		"COOKIECHECK_AUDIT__SINK":             "kafka",
		"COOKIECHECK_VERIFIER__BASE_URL":      "not a url",
		"COOKIECHECK_BROWSER__MAX_CONCURRENT": "0",
		"COOKIECHECK_LOG__LEVEL":              "loud",
	}
	for name, val := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
