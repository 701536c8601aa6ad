// Package config handles configuration loading from files, defaults,
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Role controls whether the grid accepts mutating gestures. Guest is a
// UX guard only; the backend keeps its own gate.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleGuest Role = "guest"
)

// Config holds the application configuration.
type Config struct {
	API    APIConfig    `toml:"api"`
	UI     UIConfig     `toml:"ui"`
	Window WindowConfig `toml:"window"`
	Serve  ServeConfig  `toml:"serve"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL string `toml:"base_url"` // e.g., "http://localhost:8384"
	Token   string `toml:"token"`    // write token; empty means guest-level access
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme       string `toml:"theme"`        // "dark", "light"
	ColumnWidth int    `toml:"column_width"` // display cells per day column
	Role        string `toml:"role"`         // "admin" or "guest"
}

// WindowConfig holds the initial loaded date range, in whole months
// around today.
type WindowConfig struct {
	MonthsBefore int `toml:"months_before"`
	MonthsAfter  int `toml:"months_after"`
}

// ServeConfig holds the embedded demo server settings.
type ServeConfig struct {
	Listen string `toml:"listen"` // e.g., ":8384"
	DBPath string `toml:"db_path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8384",
		},
		UI: UIConfig{
			Theme:       "dark",
			ColumnWidth: 4,
			Role:        string(RoleAdmin),
		},
		Window: WindowConfig{
			MonthsBefore: 1,
			MonthsAfter:  2,
		},
		Serve: ServeConfig{
			Listen: ":8384",
			DBPath: defaultDBPath(),
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "crewcal.db"
	}
	return filepath.Join(home, ".local", "share", "crewcal", "crewcal.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "crewcal", "config.toml")
}

// Load loads configuration from the default path, merging with defaults
// and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path. It starts with
// defaults, overlays file config if it exists, then applies env
// overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Serve.DBPath = expandPath(cfg.Serve.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the
// config. Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CREWCAL_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("CREWCAL_API_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv("CREWCAL_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("CREWCAL_UI_COLUMN_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.UI.ColumnWidth = n
		}
	}
	if v := os.Getenv("CREWCAL_UI_ROLE"); v != "" {
		cfg.UI.Role = v
	}
	if v := os.Getenv("CREWCAL_WINDOW_MONTHS_BEFORE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Window.MonthsBefore = n
		}
	}
	if v := os.Getenv("CREWCAL_WINDOW_MONTHS_AFTER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Window.MonthsAfter = n
		}
	}
	if v := os.Getenv("CREWCAL_SERVE_LISTEN"); v != "" {
		cfg.Serve.Listen = v
	}
	if v := os.Getenv("CREWCAL_SERVE_DB_PATH"); v != "" {
		cfg.Serve.DBPath = v
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Role returns the typed role.
func (c *Config) Role() Role {
	return Role(c.UI.Role)
}

// CanModify reports whether the configured role may mutate the plan.
func (c *Config) CanModify() bool {
	return c.Role() != RoleGuest
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api base_url must be set")
	}
	if c.UI.ColumnWidth < 2 || c.UI.ColumnWidth > 12 {
		return errors.New("ui column_width must be between 2 and 12")
	}
	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("unknown theme: %s", c.UI.Theme)
	}
	switch Role(c.UI.Role) {
	case RoleAdmin, RoleGuest:
	default:
		return fmt.Errorf("unknown role: %s", c.UI.Role)
	}
	if c.Window.MonthsBefore < 0 || c.Window.MonthsAfter < 0 {
		return errors.New("window months must not be negative")
	}
	if c.Window.MonthsBefore+c.Window.MonthsAfter > 24 {
		return errors.New("window cannot span more than 24 months")
	}
	if c.Serve.DBPath == "" {
		return errors.New("serve db_path must be set")
	}
	if c.Serve.Listen == "" {
		return errors.New("serve listen address must be set")
	}
	return nil
}
