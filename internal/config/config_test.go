// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFromPathTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1.0.0"

[responder]
base_url = "http://10.0.0.5:8080"
timeout_secs = 15

[screening]
enabled = true
terms = ["badword"]

[ui]
theme = "teal-gold"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Responder.BaseURL != "http://10.0.0.5:8080" {
		t.Errorf("base_url = %q", cfg.Responder.BaseURL)
	}
	if cfg.Responder.TimeoutSecs != 15 {
		t.Errorf("timeout_secs = %d", cfg.Responder.TimeoutSecs)
	}
	if cfg.UI.Theme != "teal-gold" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	if len(cfg.Screening.Terms) != 1 || cfg.Screening.Terms[0] != "badword" {
		t.Errorf("terms = %v", cfg.Screening.Terms)
	}
	// Unset fields fall back to defaults.
	if cfg.Responder.RequestsPerMinute != 30 {
		t.Errorf("requests_per_minute default missing: %d", cfg.Responder.RequestsPerMinute)
	}
}

func TestLoadFromPathJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"responder": {"base_url": "http://127.0.0.1:9999"}, "ui": {"theme": "slate-cyan"}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Responder.BaseURL != "http://127.0.0.1:9999" {
		t.Errorf("base_url = %q", cfg.Responder.BaseURL)
	}
	if cfg.UI.Theme != "slate-cyan" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.Responder.BaseURL = "::not-a-url" }},
		{"negative timeout", func(c *Config) { c.Responder.TimeoutSecs = -1 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "hotdog-stand" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("THREATINTEL_URL", "http://192.168.1.10:5000")
	t.Setenv("THREATINTEL_THEME", "purple-sky")
	t.Setenv("THREATINTEL_SCREENING", "false")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Responder.BaseURL != "http://192.168.1.10:5000" {
		t.Errorf("base_url = %q", cfg.Responder.BaseURL)
	}
	if cfg.UI.Theme != "purple-sky" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	if cfg.Screening.Enabled {
		t.Error("screening should be disabled")
	}
}

func TestLoadFromPathMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[responder\nbase_url"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected decode error")
	}
}
