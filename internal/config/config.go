// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading for threatintel-ai.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.threatintel/config.toml
//   - ~/.threatintel/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Threadlinee/threatintel-ai/internal/storage"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete threatintel-ai configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Responder ResponderConfig `toml:"responder" json:"responder"`
	Screening ScreeningConfig `toml:"screening" json:"screening"`
	Storage   StorageConfig   `toml:"storage" json:"storage"`
	UI        UIConfig        `toml:"ui" json:"ui"`
}

// ResponderConfig points at the analysis backend.
type ResponderConfig struct {
	// BaseURL is the backend root, e.g. http://127.0.0.1:5000
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds each exchange. 0 means the built-in default.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerMinute paces outgoing requests. 0 means the default.
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// ScreeningConfig controls outgoing message screening.
type ScreeningConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// Terms is the extra word list screened on top of the built-ins.
	Terms []string `toml:"terms" json:"terms"`
}

// StorageConfig controls where session data lives.
type StorageConfig struct {
	// DataDir overrides the default ~/.threatintel location.
	DataDir string `toml:"data_dir" json:"data_dir"`
	// SearchIndex enables the sqlite message index used by
	// `threatintel sessions search`.
	SearchIndex bool `toml:"search_index" json:"search_index"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme names a preset: indigo-mint, teal-gold, slate-cyan,
	// purple-sky, dark-green-ivory.
	Theme string `toml:"theme" json:"theme"`
	// SidebarVisible shows the conversation list on startup.
	SidebarVisible bool `toml:"sidebar_visible" json:"sidebar_visible"`
	CompactMode    bool `toml:"compact_mode" json:"compact_mode"`
}

// ThemeNames lists the valid UI theme presets.
var ThemeNames = []string{
	"indigo-mint", "teal-gold", "slate-cyan", "purple-sky", "dark-green-ivory",
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Responder: ResponderConfig{
			BaseURL:           "http://127.0.0.1:5000",
			TimeoutSecs:       60,
			RequestsPerMinute: 30,
		},
		Screening: ScreeningConfig{
			Enabled: true,
		},
		Storage: StorageConfig{
			SearchIndex: true,
		},
		UI: UIConfig{
			Theme:          "indigo-mint",
			SidebarVisible: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the threatintel-ai configuration directory path.
func Dir() (string, error) {
	return storage.DataDir()
}

// PathTOML returns the path to the TOML config file.
func PathTOML() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// PathJSON returns the path to the JSON config file.
func PathJSON() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if path, err := PathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}
	if path, err := PathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON config: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode JSON config: %w", err)
		}
	} else {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML config: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.toml")
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# threatintel-ai configuration file")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS / VALIDATION
// =============================================================================

// SetDefaults fills missing or zero-value fields with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Responder.BaseURL == "" {
		c.Responder.BaseURL = defaults.Responder.BaseURL
	}
	if c.Responder.TimeoutSecs == 0 {
		c.Responder.TimeoutSecs = defaults.Responder.TimeoutSecs
	}
	if c.Responder.RequestsPerMinute == 0 {
		c.Responder.RequestsPerMinute = defaults.Responder.RequestsPerMinute
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// ValidationError represents a single configuration validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Responder.BaseURL != "" {
		u, err := url.Parse(c.Responder.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "responder.base_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Responder.BaseURL),
			})
		}
	}

	if c.Responder.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "responder.timeout_secs",
			Message: "must be non-negative",
		})
	}
	if c.Responder.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "responder.requests_per_minute",
			Message: "must be non-negative",
		})
	}

	if c.UI.Theme != "" && !validTheme(c.UI.Theme) {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: %s", c.UI.Theme, strings.Join(ThemeNames, ", ")),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validTheme(name string) bool {
	for _, t := range ThemeNames {
		if strings.EqualFold(name, t) {
			return true
		}
	}
	return false
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - THREATINTEL_URL: overrides responder.base_url
//   - THREATINTEL_TIMEOUT_SECS: overrides responder.timeout_secs
//   - THREATINTEL_THEME: overrides ui.theme
//   - THREATINTEL_DATA_DIR: overrides storage.data_dir
//   - THREATINTEL_SCREENING: set to "0" or "false" to disable screening
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("THREATINTEL_URL"); v != "" {
		c.Responder.BaseURL = v
	}
	if v := os.Getenv("THREATINTEL_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Responder.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("THREATINTEL_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("THREATINTEL_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("THREATINTEL_SCREENING"); v != "" {
		c.Screening.Enabled = !(v == "0" || strings.EqualFold(v, "false"))
	}
}
