package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, filepath.Join("data", "letters.sqlite"), cfg.SQLitePath())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 8080

[storage]
backend = "remote"

[remote]
base_url = "http://letters.internal:3000"
timeout_seconds = 3

[jwt]
secret = "s3cret"

[log]
level = "debug"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "remote", cfg.Storage.Backend)
	assert.Equal(t, 3*time.Second, cfg.Remote.RemoteTimeout())
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched sections keep their defaults
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.RateWindow())
	assert.Equal(t, "./locales", cfg.I18n.LocalesDir)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"unknown backend": "[storage]\nbackend = \"postgres\"\n",
		"remote no url":   "[storage]\nbackend = \"remote\"\n",
		"bad port":        "[server]\nport = 70000\n",
		"bad window":      "[rate_limit]\nrequests = 10\nwindow_seconds = 0\n",
		"syntax":          "[server\nport = 1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
