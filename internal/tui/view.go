package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/weekfit/internal/dateutil"
	"github.com/javiermolinar/weekfit/internal/solver"
)

// Column width used before the first WindowSizeMsg.
const defaultColWidth = 12

// View renders the week grid, the footer and the help line.
func (m Model) View() string {
	rows := m.visibleRows()
	lines := []string{m.renderTitle(), m.renderHeader()}
	for s := m.offset; s < m.offset+rows; s++ {
		lines = append(lines, m.renderRow(s))
	}
	lines = append(lines, m.footerLines()...)
	return strings.Join(lines, "\n")
}

func (m Model) renderTitle() string {
	title := m.styles.TitleStyle.Render("weekfit")
	info := fmt.Sprintf(" total fatigue %s  %.0f%% booked",
		formatFatigue(m.proj.Total), m.proj.Utilization()*100)
	status := m.styles.StatusStyle.Render(info)
	if m.proj.Status != solver.StatusComplete {
		status += "  " + m.styles.WarningStyle.Render(m.proj.Status.String())
	}
	return title + status
}

func (m Model) renderHeader() string {
	colW := m.colWidth()
	peak, peakFatigue := m.proj.PeakDay()

	cells := []string{m.styles.TimeColumnStyle.Render("")}
	for _, day := range m.proj.Days {
		label := day.Weekday.ShortName() + " " + formatFatigue(day.Fatigue)
		style := m.styles.DayHeaderStyle
		switch {
		case int(day.Weekday) == m.day:
			style = m.styles.DaySelectedStyle
		case day.Weekday == peak && peakFatigue > 0:
			style = m.styles.DayPeakStyle
		}
		cells = append(cells, style.Width(colW).Render(cellText(label, colW)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) renderRow(slot int) string {
	colW := m.colWidth()
	cells := []string{m.styles.TimeColumnStyle.Render(m.proj.Config.SlotLabel(slot))}

	for d, day := range m.proj.Days {
		selected := d == m.day
		cell := day.Slots[slot]
		if cell.Empty {
			style := m.styles.EmptyCellStyle
			if selected {
				style = m.styles.EmptySelected
			}
			cells = append(cells, style.Width(colW).Render(cellText("·", colW)))
			continue
		}

		text := ""
		if slot == 0 || slot == m.offset || day.Slots[slot-1].Task != cell.Task {
			text = cell.Task
		}
		style := m.styles.TaskStyle(m.colors[cell.Task], selected)
		cells = append(cells, style.Width(colW).Render(cellText(text, colW)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) footerLines() []string {
	var lines []string
	lines = append(lines, m.styles.FooterStyle.Render(m.dayDetail()))
	if len(m.proj.Unplaced) > 0 {
		lines = append(lines, m.styles.WarningStyle.Render("unplaced: "+strings.Join(m.proj.Unplaced, ", ")))
	}
	if m.statusMsg != "" {
		lines = append(lines, m.styles.MutedStyle.Render(m.statusMsg))
	}
	lines = append(lines, m.help.View(m.keys))
	return lines
}

func (m Model) dayDetail() string {
	day := m.proj.Days[m.day]
	var b strings.Builder
	fmt.Fprintf(&b, "%s  fatigue %s", day.Weekday, formatFatigue(day.Fatigue))

	blocks := day.Blocks()
	if len(blocks) == 0 {
		b.WriteString("  free")
		return b.String()
	}
	parts := make([]string, len(blocks))
	for i, blk := range blocks {
		parts[i] = blk.Task + " " + m.proj.Span(blk)
	}
	b.WriteString("  ")
	b.WriteString(strings.Join(parts, ", "))
	if m.width <= 0 {
		return b.String()
	}
	return ansi.Truncate(b.String(), max(m.width-2, 1), "…")
}

// chromeLines returns the number of lines outside the slot rows.
func (m Model) chromeLines() int {
	n := 3 // title, header, day detail
	if len(m.proj.Unplaced) > 0 {
		n++
	}
	if m.statusMsg != "" {
		n++
	}
	return n + lipgloss.Height(m.help.View(m.keys))
}

func (m Model) visibleRows() int {
	total := m.proj.Config.SlotsPerDay()
	if m.height <= 0 {
		return total - m.offset
	}
	rows := m.height - m.chromeLines()
	rows = max(rows, 1)
	return min(rows, total-m.offset)
}

func (m Model) maxOffset() int {
	total := m.proj.Config.SlotsPerDay()
	if m.height <= 0 {
		return 0
	}
	rows := max(m.height-m.chromeLines(), 1)
	return max(total-rows, 0)
}

func (m *Model) clampOffset() {
	m.offset = min(m.offset, m.maxOffset())
}

func (m Model) colWidth() int {
	if m.width <= 0 {
		return defaultColWidth
	}
	return max((m.width-timeColWidth)/dateutil.DaysPerWeek, minColWidth)
}

// cellText pads text with a leading space and truncates it to width.
func cellText(text string, width int) string {
	return ansi.Truncate(" "+text, width, "…")
}

func formatFatigue(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
