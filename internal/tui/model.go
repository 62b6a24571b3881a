package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/javiermolinar/weekfit/internal/schedule"
	"github.com/javiermolinar/weekfit/internal/tui/theme"
)

// Model is the week viewer model.
type Model struct {
	proj   *schedule.Projection
	theme  *theme.Theme
	styles *Styles
	keys   keyMap
	help   help.Model

	// Task name to color index, in first placement order.
	colors map[string]int

	day    int // selected weekday index
	offset int // first visible slot row

	width  int
	height int

	statusMsg string

	copy   func(string) error
	logger zerolog.Logger
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithLogger logs keystrokes and window events to l.
func WithLogger(l zerolog.Logger) ModelOption {
	return func(m *Model) {
		m.logger = l
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) ModelOption {
	return func(m *Model) {
		m.copy = write
	}
}

// New creates a viewer for p using the named theme. Callers validate the
// name first; an unknown one renders with mocha.
func New(p *schedule.Projection, themeName string, opts ...ModelOption) Model {
	t, err := theme.Load(themeName)
	if err != nil {
		t, _ = theme.Load("mocha")
	}
	styles := NewStyles(t)

	h := help.New()
	h.Styles.ShortKey = styles.MutedStyle.Bold(true)
	h.Styles.ShortDesc = styles.MutedStyle
	h.Styles.FullKey = styles.MutedStyle.Bold(true)
	h.Styles.FullDesc = styles.MutedStyle

	peak, _ := p.PeakDay()
	m := Model{
		proj:   p,
		theme:  t,
		styles: styles,
		keys:   defaultKeyMap(),
		help:   h,
		colors: assignColors(p),
		day:    int(peak),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func assignColors(p *schedule.Projection) map[string]int {
	colors := make(map[string]int, len(p.Placed))
	for _, name := range p.Placed {
		if _, ok := colors[name]; !ok {
			colors[name] = len(colors)
		}
	}
	for _, day := range p.Days {
		for _, s := range day.Slots {
			if s.Empty {
				continue
			}
			if _, ok := colors[s.Task]; !ok {
				colors[s.Task] = len(colors)
			}
		}
	}
	return colors
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampOffset()
		m.logger.Debug().Int("width", msg.Width).Int("height", msg.Height).Msg("resize")
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case copiedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Copy failed: %v", msg.err)
		} else {
			m.statusMsg = "Copied schedule JSON"
		}
		m.clampOffset()
		return m, nil
	}
	return m, nil
}

func (m Model) logKey(msg tea.KeyMsg) {
	m.logger.Debug().
		Str("key", msg.String()).
		Int("day", m.day).
		Int("offset", m.offset).
		Msg("key")
}

// Run starts the viewer on p.
func Run(p *schedule.Projection, themeName string, debug bool) error {
	if _, err := theme.Load(themeName); err != nil {
		return err
	}
	logger, closeLog, err := openDebugLog(debug)
	if err != nil {
		return err
	}
	defer closeLog()

	model := New(p, themeName, WithLogger(logger))
	prog := tea.NewProgram(model, tea.WithAltScreen())
	_, err = prog.Run()
	return err
}
