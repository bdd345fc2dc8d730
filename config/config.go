package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port         int    `toml:"port"`
	TemplatesDir string `toml:"templates_dir"`
	AssetsDir    string `toml:"assets_dir"`
	ReloadViews  bool   `toml:"reload_views"` // Re-parse templates on every render (development)
}

type StorageConfig struct {
	Backend string `toml:"backend"` // "sqlite", "bolt" or "remote"
	DataDir string `toml:"data_dir"`
}

type RemoteConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type JWTConfig struct {
	Secret string `toml:"secret"` // Shared secret for API bearer tokens; empty disables API auth
}

type RateLimitConfig struct {
	Requests      int `toml:"requests"` // 0 disables rate limiting
	WindowSeconds int `toml:"window_seconds"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type I18nConfig struct {
	LocalesDir string `toml:"locales_dir"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Remote    RemoteConfig    `toml:"remote"`
	JWT       JWTConfig       `toml:"jwt"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Log       LogConfig       `toml:"log"`
	I18n      I18nConfig      `toml:"i18n"`
}

// Default returns the configuration used when no file overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         3000,
			TemplatesDir: "./templates",
			AssetsDir:    "./assets",
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			DataDir: "./data",
		},
		Remote: RemoteConfig{
			TimeoutSeconds: 10,
		},
		RateLimit: RateLimitConfig{
			Requests:      100,
			WindowSeconds: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
		I18n: I18nConfig{
			LocalesDir: "./locales",
		},
	}
}

// LoadConfig decodes filepath over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if _, err := toml.DecodeFile(path, config); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values that would otherwise fail at first use
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	switch c.Storage.Backend {
	case "sqlite", "bolt":
		if c.Storage.DataDir == "" {
			return fmt.Errorf("storage.data_dir is required for the %s backend", c.Storage.Backend)
		}
	case "remote":
		u, err := url.Parse(c.Remote.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("remote.base_url %q must be an http(s) URL", c.Remote.BaseURL)
		}
	default:
		return fmt.Errorf("unknown storage.backend %q (want sqlite, bolt or remote)", c.Storage.Backend)
	}

	if c.RateLimit.Requests > 0 && c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit.window_seconds must be positive")
	}

	return nil
}

// SQLitePath is the database file used by the sqlite backend
func (c *Config) SQLitePath() string {
	return filepath.Join(c.Storage.DataDir, "letters.sqlite")
}

// RemoteTimeout returns the per-request timeout for the remote backend
func (c *RemoteConfig) RemoteTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RateWindow returns the rate limiting window
func (c *RateLimitConfig) RateWindow() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}
