package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/atotto/clipboard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekfit/internal/config"
	"github.com/javiermolinar/weekfit/internal/metrics"
	"github.com/javiermolinar/weekfit/internal/schedule"
	"github.com/javiermolinar/weekfit/internal/solver"
	"github.com/javiermolinar/weekfit/internal/task"
	"github.com/javiermolinar/weekfit/internal/tui"
)

type solveOptions struct {
	tasksFile   string
	expr        string
	maxNodes    int64
	timeout     string
	jsonOut     bool
	blocks      bool
	copy        bool
	save        bool
	showMetrics bool
	noColor     bool
	view        bool
}

func (a *App) solveCmd() *cobra.Command {
	var opts solveOptions

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find the least fatiguing week for the task catalog",
		Long: `Search every placement of the catalog tasks on the week grid and print
the assignment with the lowest total fatigue.

Tasks pinned to a start outside the grid, or that no longer fit, are
reported as unplaced. When --max-nodes or --timeout stop the search early,
the best schedule found so far is shown.`,
		Example: `  weekfit solve
  weekfit solve --tasks week.toml --expr "difficulty * duration ^ 2"
  weekfit solve --timeout 10s --save --view`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.noColor {
				DisableColor()
			}
			return a.runSolve(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.tasksFile, "tasks", "", "Solve tasks from a TOML or JSON file instead of the catalog")
	cmd.Flags().StringVar(&opts.expr, "expr", "", "Fatigue cost expression (overrides config)")
	cmd.Flags().Int64Var(&opts.maxNodes, "max-nodes", 0, "Stop after exploring this many nodes (overrides config)")
	cmd.Flags().StringVar(&opts.timeout, "timeout", "", "Stop after this long, e.g. 30s (overrides config)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the schedule as JSON")
	cmd.Flags().BoolVar(&opts.blocks, "blocks", false, "List task blocks per day below the grid")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the JSON schedule to the clipboard")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store the result in the run history")
	cmd.Flags().BoolVar(&opts.showMetrics, "metrics", false, "Print search metrics")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&opts.view, "view", false, "Open the result in the interactive viewer")

	return cmd
}

// applyOverrides returns a copy of cfg with the solve flags applied.
func (a *App) applyOverrides(cmd *cobra.Command, opts solveOptions) (*config.Config, error) {
	cfg := *a.config
	if cmd.Flags().Changed("expr") {
		cfg.Fatigue.Expression = opts.expr
	}
	if cmd.Flags().Changed("max-nodes") {
		cfg.Search.MaxNodes = opts.maxNodes
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Search.Timeout = opts.timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (a *App) loadSolveTasks(ctx context.Context, opts solveOptions) ([]*task.Task, error) {
	if opts.tasksFile != "" {
		path, err := resolvePath(opts.tasksFile)
		if err != nil {
			return nil, err
		}
		return loadTaskFile(path)
	}

	if err := a.ensureRepo(); err != nil {
		return nil, err
	}
	tasks, err := a.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (a *App) runSolve(cmd *cobra.Command, opts solveOptions) error {
	cfg, err := a.applyOverrides(cmd, opts)
	if err != nil {
		return err
	}
	gridCfg, err := cfg.GridConfig()
	if err != nil {
		return err
	}
	model, err := cfg.FatigueModel()
	if err != nil {
		return err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	tasks, err := a.loadSolveTasks(ctx, opts)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	obs, err := metrics.NewPromObserver(reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, searchErr := solver.Solve(ctx, tasks, gridCfg, model,
		solver.WithMaxNodes(cfg.Search.MaxNodes),
		solver.WithLogger(a.logger),
		solver.WithObserver(obs),
	)
	switch {
	case searchErr == nil:
	case errors.Is(searchErr, solver.ErrSearchTimedOut):
		a.logger.Warn().Int64("nodes", res.Stats.Nodes).Msg("search stopped early, showing best result found")
	case errors.Is(searchErr, solver.ErrSearchCancelled) && res != nil:
		a.logger.Warn().Err(searchErr).Msg("search interrupted")
	default:
		return searchErr
	}

	p := schedule.Project(gridCfg, res)
	out := cmd.OutOrStdout()

	if opts.jsonOut || opts.copy {
		data, err := p.Export().JSON()
		if err != nil {
			return fmt.Errorf("encoding schedule: %w", err)
		}
		if opts.jsonOut {
			fmt.Fprintln(out, string(data))
		}
		if opts.copy {
			if err := clipboard.WriteAll(string(data)); err != nil {
				return fmt.Errorf("copying schedule: %w", err)
			}
			a.logger.Info().Msg("copied schedule to clipboard")
		}
	}
	if !opts.jsonOut {
		fmt.Fprintln(out)
		printWeekTable(out, p, termWidth())
		fmt.Fprintln(out)
		printSummary(out, p)
		if opts.blocks {
			fmt.Fprintln(out)
			printDayBlocks(out, p)
		}
	}

	if opts.save {
		if err := a.saveRun(cmd.Context(), cmd.ErrOrStderr(), p, res.Stats.Nodes); err != nil {
			return err
		}
	}

	if opts.showMetrics {
		fmt.Fprintln(cmd.ErrOrStderr())
		if err := metrics.Dump(cmd.ErrOrStderr(), reg); err != nil {
			return err
		}
	}

	if opts.view {
		if err := tui.Run(p, cfg.UI.Theme, a.debug); err != nil {
			return err
		}
	}

	if errors.Is(searchErr, solver.ErrSearchCancelled) {
		return searchErr
	}
	return nil
}

func (a *App) saveRun(ctx context.Context, w io.Writer, p *schedule.Projection, nodes int64) error {
	if err := a.ensureRepo(); err != nil {
		return err
	}
	run, err := schedule.NewRun(p, nodes)
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}

	start := time.Now()
	if err := a.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	a.logger.Debug().Str("run", run.ID).Dur("elapsed", time.Since(start)).Msg("saved run")
	fmt.Fprintf(w, "Saved run %s\n", run.ShortID())
	return nil
}
