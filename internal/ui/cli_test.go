package ui

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javiermolinar/weekfit/internal/config"
	"github.com/javiermolinar/weekfit/internal/db"
	"github.com/javiermolinar/weekfit/internal/grid"
	"github.com/javiermolinar/weekfit/internal/schedule"
	"github.com/javiermolinar/weekfit/internal/task"
)

func newTestStore(t *testing.T) (*db.SQLite, *config.Config) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "weekfit.db")
	store, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Default()
	cfg.Storage.DBPath = dbPath
	cfg.Log.Level = "error"
	return store, cfg
}

// execute runs one command line on a fresh App sharing store.
func execute(t *testing.T, store Store, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	noColor(t)

	app := NewApp(store, cfg)
	var stdout, stderr bytes.Buffer
	app.root.SetOut(&stdout)
	app.root.SetErr(&stderr)
	app.SetArgs(args)
	err := app.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersionCmd(t *testing.T) {
	store, cfg := newTestStore(t)
	out, _, err := execute(t, store, cfg, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "weekfit dev") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestTaskCommands(t *testing.T) {
	store, cfg := newTestStore(t)

	out, _, err := execute(t, store, cfg, "task", "add", "Report", "--difficulty=3", "--duration=2")
	if err != nil {
		t.Fatalf("task add failed: %v", err)
	}
	if !strings.Contains(out, "Created task #1: Report (difficulty 3, 2h)") {
		t.Errorf("unexpected add output %q", out)
	}

	out, _, err = execute(t, store, cfg, "task", "add", "Standup", "--difficulty=1", "--duration=1",
		"--fixed", "Mon 09:00", "--priority=1", "--depends-on=Report")
	if err != nil {
		t.Fatalf("task add failed: %v", err)
	}
	if !strings.Contains(out, "pinned to Monday 09:00") {
		t.Errorf("unexpected add output %q", out)
	}

	_, _, err = execute(t, store, cfg, "task", "add", "Report", "--difficulty=1", "--duration=1")
	if !errors.Is(err, task.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}

	_, _, err = execute(t, store, cfg, "task", "add", "Broken", "--difficulty=1", "--duration=1", "--fixed", "Funday 09:00")
	if err == nil {
		t.Error("expected error for unknown day")
	}

	out, _, err = execute(t, store, cfg, "task", "list")
	if err != nil {
		t.Fatalf("task list failed: %v", err)
	}
	for _, want := range []string{"Report", "Standup", "Monday 09:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in list:\n%s", want, out)
		}
	}

	stored, err := store.GetTask(context.Background(), "Standup")
	if err != nil || stored == nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if stored.PriorityValue() != 1 || len(stored.Dependencies) != 1 {
		t.Errorf("flags not stored: %+v", stored)
	}

	out, _, err = execute(t, store, cfg, "task", "remove", "Report")
	if err != nil {
		t.Fatalf("task remove failed: %v", err)
	}
	if !strings.Contains(out, "Removed task Report") {
		t.Errorf("unexpected remove output %q", out)
	}
	_, _, err = execute(t, store, cfg, "task", "rm", "Report")
	if err == nil || !strings.Contains(err.Error(), `no task named "Report"`) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestTaskListEmpty(t *testing.T) {
	store, cfg := newTestStore(t)
	out, _, err := execute(t, store, cfg, "task", "list")
	if err != nil {
		t.Fatalf("task list failed: %v", err)
	}
	if !strings.Contains(out, "No tasks in the catalog.") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestSolveAndRuns(t *testing.T) {
	store, cfg := newTestStore(t)
	ctx := context.Background()

	for _, args := range [][]string{
		{"task", "add", "Report", "--difficulty=3", "--duration=2"},
		{"task", "add", "Standup", "--difficulty=1", "--duration=1", "--fixed", "Mon 09:00"},
	} {
		if _, _, err := execute(t, store, cfg, args...); err != nil {
			t.Fatalf("%v failed: %v", args, err)
		}
	}

	out, stderr, err := execute(t, store, cfg, "solve", "--json", "--save")
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	exp, err := schedule.ParseExport([]byte(out))
	if err != nil {
		t.Fatalf("ParseExport failed: %v\n%s", err, out)
	}
	// Report alone costs 6 * (1 + 3), Standup 1 * (1 + 1).
	if exp.TotalFatigue != 26 {
		t.Errorf("TotalFatigue = %v, want 26", exp.TotalFatigue)
	}
	if exp.Schedule["Monday"][0] != "Standup" || exp.Schedule["Monday"][1] != "Standup" {
		t.Errorf("Monday = %v, want Standup pinned at 09:00", exp.Schedule["Monday"])
	}
	if exp.Status != "complete" || len(exp.Unplaced) != 0 {
		t.Errorf("unexpected status %q unplaced %v", exp.Status, exp.Unplaced)
	}
	if !strings.Contains(stderr, "Saved run ") {
		t.Errorf("expected save message in stderr %q", stderr)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	out, _, err = execute(t, store, cfg, "runs", "list")
	if err != nil {
		t.Fatalf("runs list failed: %v", err)
	}
	if !strings.Contains(out, runs[0].ShortID()) || !strings.Contains(out, "complete") {
		t.Errorf("unexpected runs list:\n%s", out)
	}

	out, _, err = execute(t, store, cfg, "runs", "show", runs[0].ShortID(), "--json")
	if err != nil {
		t.Fatalf("runs show failed: %v", err)
	}
	shown, err := schedule.ParseExport([]byte(out))
	if err != nil {
		t.Fatalf("ParseExport failed: %v", err)
	}
	if shown.TotalFatigue != 26 {
		t.Errorf("shown TotalFatigue = %v, want 26", shown.TotalFatigue)
	}

	out, _, err = execute(t, store, cfg, "runs", "show", runs[0].ID)
	if err != nil {
		t.Fatalf("runs show failed: %v", err)
	}
	for _, want := range []string{"Total fatigue: 26", "=== Monday (fatigue 2) ===", "09:00-10:00  Standup"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}

	_, _, err = execute(t, store, cfg, "runs", "show", "zzzz")
	if err == nil || !strings.Contains(err.Error(), `no run matches "zzzz"`) {
		t.Errorf("expected no run error, got %v", err)
	}
}

func TestSolve_TasksFileAndMetrics(t *testing.T) {
	store, cfg := newTestStore(t)
	path := writeFile(t, "week.toml", tomlTasks)

	out, stderr, err := execute(t, store, cfg, "solve", "--tasks", path, "--metrics", "--blocks")
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	for _, want := range []string{"Deep work", "Standup", "Total fatigue:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if !strings.Contains(stderr, `weekfit_searches_total{status="complete"} 1`) {
		t.Errorf("expected metrics dump in stderr:\n%s", stderr)
	}

	tasks, err := store.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("solving a file should not touch the catalog, got %d tasks", len(tasks))
	}
}

func TestSolve_NodeBudget(t *testing.T) {
	store, cfg := newTestStore(t)
	path := writeFile(t, "tasks.json", `[
		{"name": "A", "difficulty": 2, "duration": 1},
		{"name": "B", "difficulty": 2, "duration": 1},
		{"name": "C", "difficulty": 2, "duration": 1}
	]`)

	out, _, err := execute(t, store, cfg, "solve", "--tasks", path, "--max-nodes=2")
	if err != nil {
		t.Fatalf("solve with node budget should report the best result, got %v", err)
	}
	if !strings.Contains(out, "Search timed out") {
		t.Errorf("expected timeout warning:\n%s", out)
	}
}

func TestSolve_InvalidExpression(t *testing.T) {
	store, cfg := newTestStore(t)

	_, _, err := execute(t, store, cfg, "solve", "--expr", "difficulty * stress")
	if !errors.Is(err, grid.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "stress") {
		t.Errorf("expected identifier in error, got %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	store, cfg := newTestStore(t)
	out, _, err := execute(t, store, cfg, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"[schedule]", "start_hour = 9", "interval_minutes = 30"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestRunConfigInteractive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("WEEKFIT_DB_PATH", filepath.Join(t.TempDir(), "w.db"))

	// Decline editing: the defaults are written and left alone.
	var out bytes.Buffer
	if err := runConfigInteractive(strings.NewReader("n\n"), &out, path); err != nil {
		t.Fatalf("runConfigInteractive failed: %v", err)
	}
	if !strings.Contains(out.String(), "Created "+path) {
		t.Errorf("expected creation message:\n%s", out.String())
	}

	input := strings.Join([]string{
		"y",
		"8",  // start hour
		"",   // end hour
		"60", // interval
		"difficulty * duration ^ 2",
		"",
		"5s",
		"",
		"debug",
		"latte",
	}, "\n") + "\n"
	out.Reset()
	if err := runConfigInteractive(strings.NewReader(input), &out, path); err != nil {
		t.Fatalf("runConfigInteractive failed: %v\n%s", err, out.String())
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Schedule.StartHour != 8 || cfg.Schedule.EndHour != 17 || cfg.Schedule.IntervalMinutes != 60 {
		t.Errorf("unexpected schedule %+v", cfg.Schedule)
	}
	if cfg.Fatigue.Expression != "difficulty * duration ^ 2" || cfg.Search.Timeout != "5s" {
		t.Errorf("unexpected fatigue/search %+v %+v", cfg.Fatigue, cfg.Search)
	}
	if cfg.Log.Level != "debug" || cfg.UI.Theme != "latte" {
		t.Errorf("unexpected log/ui %+v %+v", cfg.Log, cfg.UI)
	}
}
