// Package theme provides color themes for the TUI.
package theme

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// Auto picks a dark or light theme from the terminal background.
const Auto = "auto"

// ErrUnknownTheme is returned by Load for names outside Available.
var ErrUnknownTheme = errors.New("unknown theme")

// Theme holds all colors for a TUI theme.
type Theme struct {
	Name        string   `toml:"name"`
	Bg          string   `toml:"bg"`           // Base background
	BgHighlight string   `toml:"bg_highlight"` // Header and footer panels
	BgSelection string   `toml:"bg_selection"` // Selected day column
	Fg          string   `toml:"fg"`           // Primary foreground
	FgMuted     string   `toml:"fg_muted"`     // Empty slots, labels
	Accent      string   `toml:"accent"`       // Title, borders
	Peak        string   `toml:"peak"`         // Most fatiguing day
	Warning     string   `toml:"warning"`      // Unplaced tasks, interrupted search
	Tasks       []string `toml:"tasks"`        // Task colors, assigned in rotation
}

// Color returns a lipgloss.Color for the given hex string.
func Color(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// Load loads a theme by name from embedded files. An empty name loads mocha.
func Load(name string) (*Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		name = "mocha"
	case Auto:
		name = Detect(termenv.DefaultOutput())
	}
	if !IsAvailable(name) {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTheme, name, strings.Join(Available(), ", "))
	}

	path := "embedded/" + name + ".toml"
	data, err := embeddedThemes.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

// Detect returns "latte" on light terminals and "mocha" otherwise.
func Detect(out *termenv.Output) string {
	if out != nil && !out.HasDarkBackground() {
		return "latte"
	}
	return "mocha"
}

func (t *Theme) applyDefaults() {
	if t.BgSelection == "" {
		t.BgSelection = coalesce(t.BgHighlight, t.Bg)
	}
	if t.Peak == "" {
		t.Peak = t.Accent
	}
	if t.Warning == "" {
		t.Warning = t.Accent
	}
	if len(t.Tasks) == 0 {
		t.Tasks = []string{t.Accent}
	}
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte", "light", Auto}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	name = strings.ToLower(name)
	for _, themeName := range Available() {
		if themeName == name {
			return true
		}
	}
	return false
}
