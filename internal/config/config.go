// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/weekfit/internal/fatigue"
	"github.com/javiermolinar/weekfit/internal/grid"
	"github.com/javiermolinar/weekfit/internal/tui/theme"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	Fatigue  FatigueConfig  `toml:"fatigue"`
	Search   SearchConfig   `toml:"search"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
	UI       UIConfig       `toml:"ui"`
}

// ScheduleConfig holds the daily window and slot size.
type ScheduleConfig struct {
	StartHour       int `toml:"start_hour"`       // e.g., 9
	EndHour         int `toml:"end_hour"`         // e.g., 17
	IntervalMinutes int `toml:"interval_minutes"` // must divide 60
}

// FatigueConfig holds the task cost formula.
type FatigueConfig struct {
	Expression string   `toml:"expression"` // empty means difficulty * duration
	Variables  []string `toml:"variables"`  // allow-list; empty allows every built-in variable
}

// SearchConfig bounds the search.
type SearchConfig struct {
	MaxNodes int64  `toml:"max_nodes"` // 0 = unbounded
	Timeout  string `toml:"timeout"`   // Go duration, e.g. "30s"; empty = none
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "console" or "json"
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte", "light", "auto"
}

// Default returns the default configuration.
func Default() *Config {
	g := grid.DefaultConfig()
	return &Config{
		Schedule: ScheduleConfig{
			StartHour:       g.StartHour,
			EndHour:         g.EndHour,
			IntervalMinutes: g.IntervalMinutes,
		},
		Fatigue: FatigueConfig{
			Variables: fatigue.Variables(),
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		UI: UIConfig{
			Theme: "frappe",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "weekfit.db"
	}
	return filepath.Join(home, ".local", "share", "weekfit", "weekfit.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "weekfit", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

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

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"WEEKFIT_START_HOUR", &cfg.Schedule.StartHour},
		{"WEEKFIT_END_HOUR", &cfg.Schedule.EndHour},
		{"WEEKFIT_INTERVAL_MINUTES", &cfg.Schedule.IntervalMinutes},
	}
	for _, o := range ints {
		v := os.Getenv(o.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", o.name, v)
		}
		*o.dst = n
	}

	if v := os.Getenv("WEEKFIT_FATIGUE_EXPR"); v != "" {
		cfg.Fatigue.Expression = v
	}
	if v := os.Getenv("WEEKFIT_MAX_NODES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("WEEKFIT_MAX_NODES: %q is not an integer", v)
		}
		cfg.Search.MaxNodes = n
	}
	if v := os.Getenv("WEEKFIT_TIMEOUT"); v != "" {
		cfg.Search.Timeout = v
	}
	if v := os.Getenv("WEEKFIT_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("WEEKFIT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("WEEKFIT_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	return nil
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

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks if the configuration is valid. Schedule and fatigue
// problems wrap grid.ErrConfig.
func (c *Config) Validate() error {
	if _, err := c.GridConfig(); err != nil {
		return err
	}
	if _, err := c.FatigueModel(); err != nil {
		return err
	}
	if c.Search.MaxNodes < 0 {
		return errors.New("max_nodes must not be negative")
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}
	if name := strings.TrimSpace(c.UI.Theme); name != "" && !theme.IsAvailable(name) {
		return fmt.Errorf("invalid theme: %s (available: %s)", c.UI.Theme, strings.Join(theme.Available(), ", "))
	}
	return nil
}

// GridConfig returns the validated schedule grid settings.
func (c *Config) GridConfig() (grid.Config, error) {
	return grid.NewConfig(c.Schedule.StartHour, c.Schedule.EndHour, c.Schedule.IntervalMinutes)
}

// FatigueModel compiles the configured expression. An empty expression
// yields the default model.
func (c *Config) FatigueModel() (fatigue.Model, error) {
	if strings.TrimSpace(c.Fatigue.Expression) == "" {
		return fatigue.Default, nil
	}
	expr, err := fatigue.Compile(c.Fatigue.Expression, c.Fatigue.Variables)
	if err != nil {
		return nil, fmt.Errorf("fatigue expression: %w", err)
	}
	return expr, nil
}

// Timeout returns the search deadline. Zero means none.
func (c *Config) Timeout() (time.Duration, error) {
	if c.Search.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Search.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Search.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative, got %s", d)
	}
	return d, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
