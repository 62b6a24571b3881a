package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/weekfit/internal/dateutil"
	"github.com/javiermolinar/weekfit/internal/grid"
	"github.com/javiermolinar/weekfit/internal/schedule"
	"github.com/javiermolinar/weekfit/internal/solver"
	"github.com/javiermolinar/weekfit/internal/task"
	"github.com/javiermolinar/weekfit/internal/tui/theme"
)

func mustTask(t *testing.T, name string, difficulty, duration float64, opts ...task.Option) *task.Task {
	t.Helper()
	tsk, err := task.New(name, difficulty, duration, opts...)
	if err != nil {
		t.Fatalf("task.New failed: %v", err)
	}
	return tsk
}

// testProjection pins "Focus" to Monday 09:00-11:00 and "Sync" to
// Wednesday 10:00, and leaves "Late" unplaced.
func testProjection(t *testing.T) *schedule.Projection {
	t.Helper()
	cfg, err := grid.NewConfig(9, 13, 60)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	tasks := []*task.Task{
		mustTask(t, "Focus", 3, 2, task.WithFixedPlacement(dateutil.Monday, 9, 0)),
		mustTask(t, "Sync", 1, 1, task.WithFixedPlacement(dateutil.Wednesday, 10, 0)),
		mustTask(t, "Late", 1, 1, task.WithFixedPlacement(dateutil.Friday, 13, 0)),
	}
	res, err := solver.Solve(context.Background(), tasks, cfg, nil)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	return schedule.Project(cfg, res)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		updated, _ := m.Update(keyPress(k))
		next, ok := updated.(Model)
		if !ok {
			t.Fatalf("Update returned %T, want Model", updated)
		}
		m = next
	}
	return m
}

func TestNew_SelectsPeakDay(t *testing.T) {
	p := testProjection(t)
	m := New(p, "mocha")

	peak, _ := p.PeakDay()
	if peak != dateutil.Monday {
		t.Fatalf("expected Monday peak, got %s", peak)
	}
	if m.day != int(peak) {
		t.Errorf("day = %d, want %d", m.day, peak)
	}
	if m.colors["Focus"] != 0 || m.colors["Sync"] != 1 {
		t.Errorf("unexpected color assignment %v", m.colors)
	}
	if _, ok := m.colors["Late"]; ok {
		t.Error("unplaced task should not get a color")
	}
}

func TestModel_DayNavigation(t *testing.T) {
	m := New(testProjection(t), "mocha")

	m = press(t, m, "left")
	if m.day != 0 {
		t.Fatalf("day = %d, want 0", m.day)
	}

	m = press(t, m, "right", "l", "l")
	if m.day != 3 {
		t.Fatalf("day = %d, want 3", m.day)
	}

	for i := 0; i < 10; i++ {
		m = press(t, m, "right")
	}
	if m.day != dateutil.DaysPerWeek-1 {
		t.Errorf("day = %d, want clamp at %d", m.day, dateutil.DaysPerWeek-1)
	}

	m = press(t, m, "h")
	if m.day != dateutil.DaysPerWeek-2 {
		t.Errorf("day = %d, want %d", m.day, dateutil.DaysPerWeek-2)
	}
}

func TestModel_ScrollClamped(t *testing.T) {
	m := New(testProjection(t), "mocha")

	// Without a window size every row is visible.
	m = press(t, m, "down")
	if m.offset != 0 {
		t.Fatalf("offset = %d, want 0 before sizing", m.offset)
	}

	chrome := m.chromeLines()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: chrome + 2})
	m = updated.(Model)

	m = press(t, m, "down", "down", "down", "j")
	if want := m.proj.Config.SlotsPerDay() - 2; m.offset != want {
		t.Errorf("offset = %d, want %d", m.offset, want)
	}
	m = press(t, m, "up", "up", "up", "k")
	if m.offset != 0 {
		t.Errorf("offset = %d, want 0", m.offset)
	}

	m = press(t, m, "down", "down")
	updated, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m = updated.(Model)
	if m.offset != 0 {
		t.Errorf("offset = %d after growing the window, want 0", m.offset)
	}
}

func TestModel_CopyExport(t *testing.T) {
	var copied string
	m := New(testProjection(t), "mocha", WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	updated, cmd := m.Update(keyPress("y"))
	if cmd == nil {
		t.Fatal("expected copy command")
	}
	msg := cmd()
	updated, _ = updated.(Model).Update(msg)
	m = updated.(Model)

	if m.statusMsg != "Copied schedule JSON" {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
	exp, err := schedule.ParseExport([]byte(copied))
	if err != nil {
		t.Fatalf("ParseExport failed: %v", err)
	}
	if exp.TotalFatigue != m.proj.Total {
		t.Errorf("copied total = %v, want %v", exp.TotalFatigue, m.proj.Total)
	}
	if got := exp.Schedule["Wednesday"][1]; got != "Sync" {
		t.Errorf("Wednesday 10:00 = %q, want Sync", got)
	}
}

func TestModel_CopyFailure(t *testing.T) {
	m := New(testProjection(t), "mocha", WithClipboard(func(string) error {
		return errors.New("no clipboard")
	}))

	_, cmd := m.Update(keyPress("c"))
	updated, _ := m.Update(cmd())
	m = updated.(Model)
	if !strings.Contains(m.statusMsg, "no clipboard") {
		t.Errorf("statusMsg = %q, want clipboard error", m.statusMsg)
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := New(testProjection(t), "mocha")
	short := m.chromeLines()

	m = press(t, m, "?")
	if !m.help.ShowAll {
		t.Fatal("expected full help")
	}
	if m.chromeLines() <= short {
		t.Errorf("full help should take more lines than short help")
	}

	m = press(t, m, "?")
	if m.help.ShowAll {
		t.Error("expected short help")
	}
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		m := New(testProjection(t), "mocha")
		_, cmd := m.Update(keyPress(k))
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestRun_UnknownTheme(t *testing.T) {
	err := Run(testProjection(t), "neon", false)
	if !errors.Is(err, theme.ErrUnknownTheme) {
		t.Errorf("Run error = %v, want ErrUnknownTheme", err)
	}
}
