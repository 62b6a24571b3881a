package ui

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"gonum.org/v1/gonum/floats"

	"github.com/javiermolinar/weekfit/internal/dateutil"
	"github.com/javiermolinar/weekfit/internal/schedule"
	"github.com/javiermolinar/weekfit/internal/solver"
	"github.com/javiermolinar/weekfit/internal/task"
)

const (
	labelWidth  = 6 // "HH:MM "
	minColWidth = 6
	maxColWidth = 18
)

// FormatHours formats an hour count as a human-readable duration.
func FormatHours(hours float64) string {
	minutes := int(math.Round(hours * 60))
	if minutes == 0 {
		return "0m"
	}
	h := minutes / 60
	m := minutes % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// columnWidth returns the day column width that fits seven days in width.
func columnWidth(width int) int {
	w := (width - labelWidth) / dateutil.DaysPerWeek
	return min(max(w, minColWidth), maxColWidth)
}

// fitCell truncates s to width and pads it with spaces.
func fitCell(s string, width int) string {
	s = ansi.Truncate(s, width-1, "…")
	return s + strings.Repeat(" ", width-ansi.StringWidth(s))
}

// printWeekTable prints the week grid with one column per day.
func printWeekTable(w io.Writer, p *schedule.Projection, width int) {
	colW := columnWidth(width)
	peak, peakFatigue := p.PeakDay()

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth))
	for _, day := range p.Days {
		cell := fitCell(day.Weekday.ShortName()+" "+formatNumber(day.Fatigue), colW)
		if day.Weekday == peak && peakFatigue > 0 {
			b.WriteString(formatPeak(cell))
		} else {
			b.WriteString(formatHeader(cell))
		}
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	fmt.Fprintln(w, strings.Repeat("─", labelWidth+colW*dateutil.DaysPerWeek))

	for s, label := range p.Labels() {
		b.Reset()
		b.WriteString(fitCell(label, labelWidth))
		for _, day := range p.Days {
			slot := day.Slots[s]
			switch {
			case slot.Empty:
				b.WriteString(formatMuted(fitCell("·", colW)))
			case s > 0 && day.Slots[s-1].Task == slot.Task:
				b.WriteString(formatTask(fitCell("┃", colW)))
			default:
				b.WriteString(formatTask(fitCell(slot.Task, colW)))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

// printSummary prints totals and warnings below the week grid.
func printSummary(w io.Writer, p *schedule.Projection) {
	peak, peakFatigue := p.PeakDay()
	hours := p.BusyHours()
	busy := floats.Sum(hours[:])

	fmt.Fprintf(w, "  Total fatigue: %s  |  Peak: %s (%s)  |  Booked: %s (%d%%)\n",
		formatStats(formatNumber(p.Total)),
		peak, formatNumber(peakFatigue),
		FormatHours(busy), int(math.Round(p.Utilization()*100)))

	if p.Status != solver.StatusComplete {
		fmt.Fprintf(w, "  %s\n", formatWarning("Search "+strings.ReplaceAll(p.Status.String(), "_", " ")+": showing best schedule found"))
	}
	if len(p.Unplaced) > 0 {
		fmt.Fprintf(w, "  %s %s\n", formatWarning("Unplaced:"), strings.Join(p.Unplaced, ", "))
	}
}

// printDayBlocks prints every task block grouped by day.
func printDayBlocks(w io.Writer, p *schedule.Projection) {
	for _, day := range p.Days {
		blocks := day.Blocks()
		if len(blocks) == 0 {
			continue
		}
		fmt.Fprintf(w, "=== %s (fatigue %s) ===\n", day.Weekday, formatNumber(day.Fatigue))
		for _, blk := range blocks {
			fmt.Fprintf(w, "  %s  %s\n", p.Span(blk), blk.Task)
		}
	}
}

// printTasks prints stored tasks as aligned rows.
func printTasks(w io.Writer, tasks []*task.Task, width int) {
	nameWidth := 12
	for _, t := range tasks {
		nameWidth = max(nameWidth, ansi.StringWidth(t.Name))
	}
	// Room for difficulty, duration, priority and pin columns.
	nameWidth = min(nameWidth, max(width-48, 12))

	fmt.Fprintln(w, formatHeader(fmt.Sprintf("  %-*s  %5s  %6s  %4s  %-15s  %s",
		nameWidth, "NAME", "DIFF", "DUR", "PRIO", "FIXED", "DEPENDS ON")))
	for _, t := range tasks {
		prio := "-"
		if t.HasPriority() {
			prio = formatNumber(t.PriorityValue())
		}
		fixed := "-"
		if t.Fixed != nil {
			fixed = t.Fixed.String()
		}
		deps := "-"
		if len(t.Dependencies) > 0 {
			deps = strings.Join(t.Dependencies, ", ")
		}
		fmt.Fprintf(w, "  %s  %5s  %6s  %4s  %-15s  %s\n",
			padRight(ansi.Truncate(t.Name, nameWidth, "…"), nameWidth),
			formatNumber(t.Difficulty), FormatHours(t.Duration), prio, fixed, formatMuted(deps))
	}
}

func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(width-ansi.StringWidth(s), 0))
}

// printRuns prints saved runs, most recent first.
func printRuns(w io.Writer, runs []*schedule.Run) {
	fmt.Fprintln(w, formatHeader(fmt.Sprintf("  %-8s  %-19s  %-9s  %8s  %5s  %8s  %s",
		"ID", "CREATED", "STATUS", "FATIGUE", "TASKS", "UNPLACED", "NODES")))
	for _, r := range runs {
		status := padRight(r.Status, 9)
		if r.Status != solver.StatusComplete.String() {
			status = formatWarning(status)
		}
		fmt.Fprintf(w, "  %-8s  %-19s  %s  %8s  %5d  %8d  %d\n",
			r.ShortID(), r.CreatedAt.Local().Format("2006-01-02 15:04:05"), status,
			formatNumber(r.TotalFatigue), r.TaskCount, r.Unplaced, r.Nodes)
	}
}
