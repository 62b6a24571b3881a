package ui

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekfit/internal/schedule"
	"github.com/javiermolinar/weekfit/internal/tui"
)

func (a *App) runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse saved solve runs",
	}
	cmd.AddCommand(a.runsListCmd())
	cmd.AddCommand(a.runsShowCmd())
	return cmd
}

func (a *App) runsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			runs, err := a.store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("listing runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved runs.")
				return nil
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 = all)")
	return cmd
}

func (a *App) runsShowCmd() *cobra.Command {
	var (
		jsonOut bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a saved run",
		Long: `Show a saved run by ID. Any unique prefix of the ID works, such as
the eight characters printed by 'weekfit runs list'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				DisableColor()
			}

			run, p, err := a.loadRun(cmd, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				fmt.Fprintln(out, string(run.Export))
				return nil
			}

			fmt.Fprintf(out, "\n  %s %s  %s\n\n",
				formatHeader("Run"), run.ID, formatMuted(run.CreatedAt.Local().Format("2006-01-02 15:04:05")))
			printWeekTable(out, p, termWidth())
			fmt.Fprintln(out)
			printSummary(out, p)
			fmt.Fprintln(out)
			printDayBlocks(out, p)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the stored JSON schedule")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}

func (a *App) viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view [id]",
		Short: "Open a saved run in the interactive viewer",
		Long: `Open a saved run in the interactive viewer. Without an ID the most
recent run is opened.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.viewLatest(cmd.Context())
			}
			_, p, err := a.loadRun(cmd, args[0])
			if err != nil {
				return err
			}
			return tui.Run(p, a.config.UI.Theme, a.debug)
		},
	}
}

func (a *App) loadRun(cmd *cobra.Command, id string) (*schedule.Run, *schedule.Projection, error) {
	if err := a.ensureRepo(); err != nil {
		return nil, nil, err
	}

	run, err := a.store.GetRun(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, schedule.ErrRunNotFound) {
			return nil, nil, fmt.Errorf("no run matches %q", id)
		}
		return nil, nil, fmt.Errorf("loading run: %w", err)
	}

	p, err := run.Projection()
	if err != nil {
		return nil, nil, fmt.Errorf("decoding run %s: %w", run.ShortID(), err)
	}
	return run, p, nil
}
