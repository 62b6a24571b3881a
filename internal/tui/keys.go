package tui

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding
	Copy  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y", "c"),
			key.WithHelp("y", "copy json"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Copy, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right},
		{k.Up, k.Down},
		{k.Copy, k.Help, k.Quit},
	}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logKey(msg)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left):
		if m.day > 0 {
			m.day--
		}
	case key.Matches(msg, m.keys.Right):
		if m.day < len(m.proj.Days)-1 {
			m.day++
		}

	case key.Matches(msg, m.keys.Up):
		if m.offset > 0 {
			m.offset--
		}
	case key.Matches(msg, m.keys.Down):
		if m.offset < m.maxOffset() {
			m.offset++
		}

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyExport()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.clampOffset()
	}
	return m, nil
}

// copiedMsg reports the outcome of a clipboard write.
type copiedMsg struct {
	err error
}

func (m Model) copyExport() tea.Cmd {
	write := m.copy
	if write == nil {
		write = clipboard.WriteAll
	}
	return func() tea.Msg {
		data, err := m.proj.Export().JSON()
		if err != nil {
			return copiedMsg{err: fmt.Errorf("encoding schedule: %w", err)}
		}
		return copiedMsg{err: write(string(data))}
	}
}
