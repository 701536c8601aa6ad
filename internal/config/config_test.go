package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.BaseURL != "http://localhost:8384" {
		t.Errorf("expected default base_url, got %s", cfg.API.BaseURL)
	}
	if cfg.UI.ColumnWidth != 4 {
		t.Errorf("expected column_width 4, got %d", cfg.UI.ColumnWidth)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("expected theme dark, got %s", cfg.UI.Theme)
	}
	if !cfg.CanModify() {
		t.Error("default role should allow modification")
	}
	if cfg.Window.MonthsBefore != 1 || cfg.Window.MonthsAfter != 2 {
		t.Errorf("expected window 1/2 months, got %d/%d", cfg.Window.MonthsBefore, cfg.Window.MonthsAfter)
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should return defaults
	if cfg.UI.Theme != "dark" {
		t.Errorf("expected default theme, got %s", cfg.UI.Theme)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[api]
base_url = "http://planner.internal:9000"
token = "w-123"

[ui]
theme = "light"
column_width = 6
role = "guest"

[window]
months_before = 2
months_after = 3

[serve]
listen = ":9001"
db_path = "/tmp/test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://planner.internal:9000" {
		t.Errorf("expected file base_url, got %s", cfg.API.BaseURL)
	}
	if cfg.UI.ColumnWidth != 6 {
		t.Errorf("expected column_width 6, got %d", cfg.UI.ColumnWidth)
	}
	if cfg.CanModify() {
		t.Error("guest role should not allow modification")
	}
	if cfg.Serve.DBPath != "/tmp/test.db" {
		t.Errorf("expected file db_path, got %s", cfg.Serve.DBPath)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("CREWCAL_API_BASE_URL", "http://override:1234")
	t.Setenv("CREWCAL_UI_COLUMN_WIDTH", "8")
	t.Setenv("CREWCAL_UI_ROLE", "guest")

	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://override:1234" {
		t.Errorf("expected env base_url, got %s", cfg.API.BaseURL)
	}
	if cfg.UI.ColumnWidth != 8 {
		t.Errorf("expected env column_width, got %d", cfg.UI.ColumnWidth)
	}
	if cfg.Role() != RoleGuest {
		t.Errorf("expected env role guest, got %s", cfg.UI.Role)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing base_url", func(c *Config) { c.API.BaseURL = "" }, true},
		{"column width too narrow", func(c *Config) { c.UI.ColumnWidth = 1 }, true},
		{"column width too wide", func(c *Config) { c.UI.ColumnWidth = 20 }, true},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"unknown role", func(c *Config) { c.UI.Role = "owner" }, true},
		{"negative window", func(c *Config) { c.Window.MonthsBefore = -1 }, true},
		{"window too large", func(c *Config) { c.Window.MonthsAfter = 30 }, true},
		{"guest role is valid", func(c *Config) { c.UI.Role = "guest" }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
