package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/weekfit/internal/fatigue"
	"github.com/javiermolinar/weekfit/internal/grid"
	"github.com/javiermolinar/weekfit/internal/task"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Schedule.StartHour != 9 {
		t.Errorf("expected start_hour 9, got %d", cfg.Schedule.StartHour)
	}
	if cfg.Schedule.EndHour != 17 {
		t.Errorf("expected end_hour 17, got %d", cfg.Schedule.EndHour)
	}
	if cfg.Schedule.IntervalMinutes != 30 {
		t.Errorf("expected interval_minutes 30, got %d", cfg.Schedule.IntervalMinutes)
	}
	if len(cfg.Fatigue.Variables) != len(fatigue.Variables()) {
		t.Errorf("expected every built-in variable allowed, got %v", cfg.Fatigue.Variables)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("unexpected log defaults %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should return defaults
	if cfg.Schedule.StartHour != 9 {
		t.Errorf("expected default start_hour, got %d", cfg.Schedule.StartHour)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	path := writeConfig(t, `
[schedule]
start_hour = 8
end_hour = 16
interval_minutes = 15

[fatigue]
expression = "difficulty * time + priority"
variables = ["difficulty", "time", "priority"]

[search]
max_nodes = 50000
timeout = "5s"

[storage]
db_path = "/tmp/test.db"

[log]
level = "debug"
format = "json"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Schedule.StartHour != 8 || cfg.Schedule.EndHour != 16 || cfg.Schedule.IntervalMinutes != 15 {
		t.Errorf("unexpected schedule %+v", cfg.Schedule)
	}
	if cfg.Fatigue.Expression != "difficulty * time + priority" {
		t.Errorf("unexpected expression %q", cfg.Fatigue.Expression)
	}
	if len(cfg.Fatigue.Variables) != 3 {
		t.Errorf("expected 3 variables, got %v", cfg.Fatigue.Variables)
	}
	if cfg.Search.MaxNodes != 50000 {
		t.Errorf("expected max_nodes 50000, got %d", cfg.Search.MaxNodes)
	}
	if cfg.Storage.DBPath != "/tmp/test.db" {
		t.Errorf("expected db_path /tmp/test.db, got %s", cfg.Storage.DBPath)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}

	timeout, err := cfg.Timeout()
	if err != nil || timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v (%v)", timeout, err)
	}
	g, err := cfg.GridConfig()
	if err != nil {
		t.Fatalf("GridConfig failed: %v", err)
	}
	if g.SlotsPerDay() != 32 {
		t.Errorf("expected 32 slots, got %d", g.SlotsPerDay())
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[schedule]
start_hour = 8
end_hour = 16

[storage]
db_path = "/tmp/test.db"
`)

	t.Setenv("WEEKFIT_START_HOUR", "10")
	t.Setenv("WEEKFIT_INTERVAL_MINUTES", "60")
	t.Setenv("WEEKFIT_FATIGUE_EXPR", "difficulty + slots")
	t.Setenv("WEEKFIT_MAX_NODES", "1000")
	t.Setenv("WEEKFIT_TIMEOUT", "2m")
	t.Setenv("WEEKFIT_LOG_LEVEL", "warn")
	t.Setenv("WEEKFIT_THEME", "latte")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Env should override file
	if cfg.Schedule.StartHour != 10 {
		t.Errorf("expected start_hour 10 from env, got %d", cfg.Schedule.StartHour)
	}
	// File value should be kept when no env override
	if cfg.Schedule.EndHour != 16 {
		t.Errorf("expected end_hour 16 from file, got %d", cfg.Schedule.EndHour)
	}
	// Env should override default
	if cfg.Schedule.IntervalMinutes != 60 {
		t.Errorf("expected interval 60 from env, got %d", cfg.Schedule.IntervalMinutes)
	}
	if cfg.Fatigue.Expression != "difficulty + slots" {
		t.Errorf("unexpected expression %q", cfg.Fatigue.Expression)
	}
	if cfg.Search.MaxNodes != 1000 || cfg.Search.Timeout != "2m" {
		t.Errorf("unexpected search config %+v", cfg.Search)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Log.Level)
	}
	if cfg.UI.Theme != "latte" {
		t.Errorf("expected theme latte, got %s", cfg.UI.Theme)
	}
}

func TestLoadFrom_InvalidEnv(t *testing.T) {
	t.Setenv("WEEKFIT_END_HOUR", "five")
	if _, err := LoadFrom("/nonexistent/path/config.toml"); err == nil {
		t.Error("expected error for non-integer env override")
	}
}

func TestLoadFrom_UnknownVariable(t *testing.T) {
	path := writeConfig(t, `
[fatigue]
expression = "difficulty * stress"
`)

	_, err := LoadFrom(path)
	if !errors.Is(err, grid.ErrConfig) {
		t.Fatalf("got error %v, want %v", err, grid.ErrConfig)
	}
	var unknown *fatigue.UnknownIdentifierError
	if !errors.As(err, &unknown) || unknown.Name != "stress" {
		t.Errorf("expected unknown identifier stress, got %v", err)
	}
}

func TestLoadFrom_Theme(t *testing.T) {
	for _, name := range []string{"auto", "Latte", ""} {
		path := writeConfig(t, "[ui]\ntheme = \""+name+"\"\n")
		if _, err := LoadFrom(path); err != nil {
			t.Errorf("theme %q: unexpected error %v", name, err)
		}
	}

	path := writeConfig(t, "[ui]\ntheme = \"neon\"\n")
	_, err := LoadFrom(path)
	if err == nil || !strings.Contains(err.Error(), "invalid theme: neon") {
		t.Errorf("expected invalid theme error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Config)
		wantConfig bool // error wraps grid.ErrConfig
	}{
		{"start after end", func(c *Config) { c.Schedule.StartHour, c.Schedule.EndHour = 18, 9 }, true},
		{"end past midnight", func(c *Config) { c.Schedule.EndHour = 25 }, true},
		{"interval does not divide hour", func(c *Config) { c.Schedule.IntervalMinutes = 45 }, true},
		{"bad expression", func(c *Config) { c.Fatigue.Expression = "difficulty *" }, true},
		{"variable not allowed", func(c *Config) {
			c.Fatigue.Expression = "priority"
			c.Fatigue.Variables = []string{"difficulty"}
		}, true},
		{"negative max nodes", func(c *Config) { c.Search.MaxNodes = -1 }, false},
		{"bad timeout", func(c *Config) { c.Search.Timeout = "soon" }, false},
		{"negative timeout", func(c *Config) { c.Search.Timeout = "-1s" }, false},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }, false},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"unknown theme", func(c *Config) { c.UI.Theme = "neon" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if tc.wantConfig && !errors.Is(err, grid.ErrConfig) {
				t.Errorf("expected config error, got %v", err)
			}
		})
	}
}

func TestFatigueModel(t *testing.T) {
	cfg := Default()
	tsk, err := task.New("A", 3, 2)
	if err != nil {
		t.Fatalf("task.New failed: %v", err)
	}

	model, err := cfg.FatigueModel()
	if err != nil {
		t.Fatalf("FatigueModel failed: %v", err)
	}
	if got := model.Cost(tsk, fatigue.Env{}); got != 6 {
		t.Errorf("default cost = %v, want 6", got)
	}

	cfg.Fatigue.Expression = "difficulty + time"
	model, err = cfg.FatigueModel()
	if err != nil {
		t.Fatalf("FatigueModel failed: %v", err)
	}
	if got := model.Cost(tsk, fatigue.Env{}); got != 5 {
		t.Errorf("expression cost = %v, want 5", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"~/test.db", filepath.Join(home, "test.db")},
		{"/absolute/path.db", "/absolute/path.db"},
		{"relative/path.db", "relative/path.db"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got := expandPath(tc.input)
			if got != tc.want {
				t.Errorf("expandPath(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Schedule.StartHour = 7
	cfg.Schedule.EndHour = 15
	cfg.Schedule.IntervalMinutes = 20
	cfg.Fatigue.Expression = "max(difficulty, 1) * duration"
	cfg.Search.Timeout = "10s"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loaded.Schedule != cfg.Schedule {
		t.Errorf("schedule = %+v, want %+v", loaded.Schedule, cfg.Schedule)
	}
	if loaded.Fatigue.Expression != cfg.Fatigue.Expression {
		t.Errorf("expression = %q, want %q", loaded.Fatigue.Expression, cfg.Fatigue.Expression)
	}
	if loaded.Search.Timeout != "10s" {
		t.Errorf("expected timeout 10s, got %q", loaded.Search.Timeout)
	}
}
