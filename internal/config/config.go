// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/nvakumar/ssfrontend/internal/util"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete client configuration.
type Config struct {
	Version  string         `toml:"version"`
	API      APIConfig      `toml:"api"`
	Realtime RealtimeConfig `toml:"realtime"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
	UI       UIConfig       `toml:"ui"`
}

// APIConfig configures the REST client.
type APIConfig struct {
	BaseURL        string  `toml:"base_url" env:"SSF_API_URL"`
	TimeoutSeconds int     `toml:"timeout_seconds" env:"SSF_API_TIMEOUT"`
	RateLimit      float64 `toml:"rate_limit" env:"SSF_API_RATE_LIMIT"`
	RateBurst      int     `toml:"rate_burst"`
	UserAgent      string  `toml:"user_agent"`
}

// RealtimeConfig configures the chat gateway connection.
type RealtimeConfig struct {
	URL                     string `toml:"url" env:"SSF_SOCKET_URL"`
	HandshakeTimeoutSeconds int    `toml:"handshake_timeout_seconds"`
	ArrivalBuffer           int    `toml:"arrival_buffer"`
}

// StorageConfig selects where the session credentials live.
type StorageConfig struct {
	// Backend is "file" or "sqlite".
	Backend      string `toml:"backend" env:"SSF_STORE_BACKEND"`
	Path         string `toml:"path" env:"SSF_STORE_PATH"`
	EncryptToken bool   `toml:"encrypt_token" env:"SSF_STORE_ENCRYPT"`
	WatchFile    bool   `toml:"watch_file"`

	// Passphrase is never written to disk.
	Passphrase string `toml:"-" env:"SSF_STORE_PASSPHRASE"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `toml:"level" env:"SSF_LOG_LEVEL"`
	Format string `toml:"format" env:"SSF_LOG_FORMAT"`
	File   string `toml:"file" env:"SSF_LOG_FILE"`
}

// UIConfig holds terminal presentation preferences.
type UIConfig struct {
	Theme          string `toml:"theme" env:"SSF_THEME"`
	ShowTimestamps bool   `toml:"show_timestamps"`
	RenderMarkdown bool   `toml:"render_markdown"`
	DefaultRole    string `toml:"default_role"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		API: APIConfig{
			BaseURL:        "http://localhost:5000",
			TimeoutSeconds: 30,
			RateLimit:      10,
			RateBurst:      20,
			UserAgent:      "ssfrontend",
		},
		Realtime: RealtimeConfig{
			URL:                     "ws://localhost:5000/ws",
			HandshakeTimeoutSeconds: 10,
			ArrivalBuffer:           64,
		},
		Storage: StorageConfig{
			Backend:   "file",
			WatchFile: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		UI: UIConfig{
			Theme:          "auto",
			ShowTimestamps: true,
			RenderMarkdown: true,
			DefaultRole:    "All Roles",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the configuration directory. SSF_HOME overrides the default of
// ~/.ssfrontend.
func Dir() (string, error) {
	if home := os.Getenv("SSF_HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ssfrontend"), nil
}

// Path returns the path of config.toml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir creates the configuration directory with owner-only access.
func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return dir, os.MkdirAll(dir, 0700)
}

// StorePath returns the credential store location for the configured backend.
func (c *Config) StorePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if c.Storage.Backend == "sqlite" {
		return filepath.Join(dir, "credentials.db"), nil
	}
	return filepath.Join(dir, "credentials.json"), nil
}

// LogPath returns the log file location.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ssfrontend.log"), nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads config.toml if present, applies .env and environment overrides,
// fills missing values and validates the result.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load with an explicit file. A missing file yields defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := ensureSecurePermissions(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides overlays SSF_* environment variables.
func (c *Config) ApplyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// SetDefaults fills zero values left by a partial config file.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = d.API.TimeoutSeconds
	}
	if c.API.RateBurst == 0 {
		c.API.RateBurst = d.API.RateBurst
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = d.API.UserAgent
	}
	if c.Realtime.URL == "" {
		c.Realtime.URL = d.Realtime.URL
	}
	if c.Realtime.HandshakeTimeoutSeconds == 0 {
		c.Realtime.HandshakeTimeoutSeconds = d.Realtime.HandshakeTimeoutSeconds
	}
	if c.Realtime.ArrivalBuffer == 0 {
		c.Realtime.ArrivalBuffer = d.Realtime.ArrivalBuffer
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.DefaultRole == "" {
		c.UI.DefaultRole = d.UI.DefaultRole
	}
}

// Save writes cfg to the default location.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes cfg as TOML to path with mode 0600.
func SaveTo(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("# ssfrontend configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// String renders the config as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
