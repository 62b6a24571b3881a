package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekfit/internal/config"
	"github.com/javiermolinar/weekfit/internal/db"
	"github.com/javiermolinar/weekfit/internal/logging"
	"github.com/javiermolinar/weekfit/internal/schedule"
	"github.com/javiermolinar/weekfit/internal/task"
	"github.com/javiermolinar/weekfit/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// Store persists tasks and solve runs.
type Store interface {
	task.Repository
	schedule.RunRepository
}

// App holds the CLI application state.
type App struct {
	store  Store
	config *config.Config
	root   *cobra.Command
	debug  bool // Enable debug logging
	logger zerolog.Logger
}

// NewApp creates a new CLI application with the given store and config.
// A nil store is opened lazily from the configured database path.
func NewApp(store Store, cfg *config.Config) *App {
	a := &App{store: store, config: cfg, logger: logging.Nop()}

	a.root = &cobra.Command{
		Use:   "weekfit",
		Short: "Fit a week of tasks with the least fatigue",
		Long: `Weekfit assigns tasks to fixed-size slots across a seven-day week.

It searches every placement with branch and bound and keeps the one with
the lowest total fatigue, where each day costs the sum of its task costs
scaled by how hard its tasks are.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupLogger(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.viewLatest(cmd.Context())
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.taskCmd())
	a.root.AddCommand(a.solveCmd())
	a.root.AddCommand(a.runsCmd())
	a.root.AddCommand(a.viewCmd())

	return a
}

func (a *App) setupLogger(cmd *cobra.Command) error {
	level := a.config.Log.Level
	if a.debug {
		level = "debug"
	}
	logger, err := logging.New(cmd.ErrOrStderr(), level, a.config.Log.Format, "cli")
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "weekfit %s (commit: %s)\n", Version, Commit)
		},
	}
}

// ensureRepo opens the configured database when no store was injected.
func (a *App) ensureRepo() error {
	if a.store != nil {
		return nil
	}

	path, err := resolvePath(a.config.Storage.DBPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	store, err := db.New(path)
	if err != nil {
		return err
	}
	a.logger.Debug().Str("db_path", path).Msg("opened database")
	a.store = store
	return nil
}

// viewLatest opens the most recent saved run in the viewer.
func (a *App) viewLatest(ctx context.Context) error {
	if err := a.ensureRepo(); err != nil {
		return err
	}
	runs, err := a.store.ListRuns(ctx, 1)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		return errors.New("no saved runs; use 'weekfit solve --save' first")
	}
	p, err := runs[0].Projection()
	if err != nil {
		return fmt.Errorf("decoding run %s: %w", runs[0].ShortID(), err)
	}
	return tui.Run(p, a.config.UI.Theme, a.debug)
}

// SetArgs overrides the command line arguments.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// ExecuteContext runs the CLI application with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// Close releases the store.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
