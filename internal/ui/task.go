package ui

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekfit/internal/task"
)

func (a *App) taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the task catalog",
	}
	cmd.AddCommand(a.addCmd())
	cmd.AddCommand(a.listCmd())
	cmd.AddCommand(a.removeCmd())
	cmd.AddCommand(a.importCmd())
	return cmd
}

func (a *App) addCmd() *cobra.Command {
	var (
		difficulty float64
		duration   float64
		priority   float64
		fixed      string
		dependsOn  []string
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a new task",
		Long: `Add a task to the catalog used by 'weekfit solve'.

Example:
  weekfit task add "Write report" --difficulty=3 --duration=2
  weekfit task add "Standup" --difficulty=1 --duration=0.5 --fixed="Mon 09:00"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			spec := taskSpec{
				Name:       args[0],
				Difficulty: difficulty,
				Duration:   duration,
				Fixed:      fixed,
				DependsOn:  dependsOn,
			}
			if cmd.Flags().Changed("priority") {
				spec.Priority = &priority
			}

			t, err := spec.toTask()
			if err != nil {
				return err
			}

			if err := a.store.CreateTask(cmd.Context(), t); err != nil {
				return fmt.Errorf("creating task: %w", err)
			}

			msg := fmt.Sprintf("Created task #%d: %s (difficulty %s, %s)",
				t.ID, t.Name, formatNumber(t.Difficulty), FormatHours(t.Duration))
			if t.Fixed != nil {
				msg += " pinned to " + t.Fixed.String()
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().Float64Var(&difficulty, "difficulty", 0, "Difficulty (non-negative, required)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Duration in hours (required)")
	cmd.Flags().Float64Var(&priority, "priority", 0, "Priority, lower is scheduled first")
	cmd.Flags().StringVar(&fixed, "fixed", "", `Pinned start, e.g. "Fri 09:00"`)
	cmd.Flags().StringSliceVar(&dependsOn, "depends-on", nil, "Names of tasks this one depends on")

	_ = cmd.MarkFlagRequired("difficulty")
	_ = cmd.MarkFlagRequired("duration")

	return cmd
}

func (a *App) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			tasks, err := a.store.ListTasks(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}

			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks in the catalog.")
				return nil
			}
			printTasks(cmd.OutOrStdout(), tasks, termWidth())
			return nil
		},
	}
}

func (a *App) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove [name]",
		Aliases: []string{"rm"},
		Short:   "Remove a task from the catalog",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			if err := a.store.DeleteTask(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, task.ErrTaskNotFound) {
					return fmt.Errorf("no task named %q", args[0])
				}
				return fmt.Errorf("removing task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed task %s\n", args[0])
			return nil
		},
	}
}
