// Package tui provides the interactive week viewer for weekfit.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/weekfit/internal/tui/theme"
)

// Minimum column width for a day.
const minColWidth = 6

// Width of the HH:MM label column, including its gap.
const timeColWidth = 6

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	TitleStyle       lipgloss.Style
	StatusStyle      lipgloss.Style
	WarningStyle     lipgloss.Style
	DayHeaderStyle   lipgloss.Style
	DaySelectedStyle lipgloss.Style
	DayPeakStyle     lipgloss.Style
	TimeColumnStyle  lipgloss.Style
	EmptyCellStyle   lipgloss.Style
	EmptySelected    lipgloss.Style
	FooterStyle      lipgloss.Style
	MutedStyle       lipgloss.Style
}

// NewStyles creates styles from the given theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)

	return &Styles{
		palette: p,

		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.TextOnAccent).
			Background(p.Accent).
			Padding(0, 1),

		StatusStyle: lipgloss.NewStyle().
			Foreground(p.Fg),

		WarningStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Warning),

		DayHeaderStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Fg).
			Background(p.BgHighlight),

		DaySelectedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.TextOnAccent).
			Background(p.Accent),

		DayPeakStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.TextOnPeak).
			Background(p.Peak),

		TimeColumnStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted).
			Width(timeColWidth),

		EmptyCellStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted).
			Background(p.Bg),

		EmptySelected: lipgloss.NewStyle().
			Foreground(p.FgMuted).
			Background(p.BgSelection),

		FooterStyle: lipgloss.NewStyle().
			Foreground(p.Fg).
			Background(p.BgHighlight).
			Padding(0, 1),

		MutedStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted),
	}
}

// TaskStyle returns the cell style for the task with color index i.
func (s *Styles) TaskStyle(i int, selected bool) lipgloss.Style {
	bg, alt, fg := s.palette.TaskColor(i)
	if selected {
		bg = alt
	}
	return lipgloss.NewStyle().Foreground(fg).Background(bg)
}
