package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekfit/internal/dateutil"
	"github.com/javiermolinar/weekfit/internal/task"
)

// taskFile is the on-disk shape of a task list.
//
// TOML:
//
//	[[task]]
//	name = "Deep work"
//	difficulty = 4
//	duration = 2
//	fixed = "Fri 09:00"
//
// JSON uses {"tasks": [...]} or a bare array with the same keys.
type taskFile struct {
	Tasks []taskSpec `toml:"task" json:"tasks"`
}

type taskSpec struct {
	Name       string   `toml:"name" json:"name"`
	Difficulty float64  `toml:"difficulty" json:"difficulty"`
	Duration   float64  `toml:"duration" json:"duration"`
	Priority   *float64 `toml:"priority" json:"priority,omitempty"`
	Fixed      string   `toml:"fixed" json:"fixed,omitempty"` // "Fri 09:00"
	DependsOn  []string `toml:"depends_on" json:"depends_on,omitempty"`
}

func (a *App) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import tasks from a TOML or JSON file",
		Long: `Import every task in a TOML or JSON file into the task catalog.

The import is atomic: if any task is invalid or its name is taken,
nothing is stored.`,
		Example: `  weekfit task import week.toml
  weekfit task import ~/tasks.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}

			count, err := importTasks(cmd.Context(), a.store, path)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks from %s\n", count, path)
			return nil
		},
	}

	return cmd
}

func importTasks(ctx context.Context, dest task.Repository, path string) (int, error) {
	tasks, err := loadTaskFile(path)
	if err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, nil
	}
	if err := dest.CreateTasks(ctx, tasks); err != nil {
		return 0, fmt.Errorf("importing tasks: %w", err)
	}
	return len(tasks), nil
}

// loadTaskFile reads a task list, choosing the decoder by extension.
func loadTaskFile(path string) ([]*task.Task, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("task file does not exist: %s", path)
		}
		return nil, fmt.Errorf("checking task file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("task file path is a directory: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}

	var specs []taskSpec
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		specs, err = parseTOMLTasks(data)
	case ".json":
		specs, err = parseJSONTasks(data)
	default:
		return nil, fmt.Errorf("unsupported task file extension %q (want .toml or .json)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	tasks := make([]*task.Task, 0, len(specs))
	for i, s := range specs {
		t, err := s.toTask()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func parseTOMLTasks(data []byte) ([]taskSpec, error) {
	var f taskFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Tasks, nil
}

func parseJSONTasks(data []byte) ([]taskSpec, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var specs []taskSpec
		if err := json.Unmarshal(data, &specs); err != nil {
			return nil, err
		}
		return specs, nil
	}

	var f taskFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Tasks, nil
}

func (s taskSpec) toTask() (*task.Task, error) {
	var opts []task.Option
	if s.Priority != nil {
		opts = append(opts, task.WithPriority(*s.Priority))
	}
	if s.Fixed != "" {
		day, hour, minute, err := parseFixed(s.Fixed)
		if err != nil {
			return nil, err
		}
		opts = append(opts, task.WithFixedPlacement(day, hour, minute))
	}
	if len(s.DependsOn) > 0 {
		opts = append(opts, task.WithDependencies(s.DependsOn...))
	}
	return task.New(s.Name, s.Difficulty, s.Duration, opts...)
}

// parseFixed parses a pinned start such as "Fri 09:00" or "friday 9:30".
func parseFixed(s string) (dateutil.Weekday, int, int, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, 0, 0, fmt.Errorf("%w: %q (want \"<day> HH:MM\")", task.ErrInvalidFixedTime, s)
	}

	day, err := dateutil.ParseWeekday(fields[0])
	if err != nil {
		return 0, 0, 0, err
	}

	clock := fields[1]
	if len(clock) == 4 {
		clock = "0" + clock
	}
	minutes, err := dateutil.ClockToMinutes(clock)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %w", task.ErrInvalidFixedTime, err)
	}
	hour, minute := minutes/60, minutes%60
	return day, hour, minute, nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
