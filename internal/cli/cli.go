// Package cli implements the pgatlas command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pgatlas/pgatlas/pkg/buildinfo"
	"github.com/pgatlas/pgatlas/pkg/cache"
	"github.com/pgatlas/pgatlas/pkg/config"
	"github.com/pgatlas/pgatlas/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pgatlas"

	envConfig      = "PGATLAS_CONFIG"
	envSnapshotDir = "PGATLAS_SNAPSHOT_DIR"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "PG Atlas scores the structural health of a dependency ecosystem",
		Long: `PG Atlas analyzes a dependency graph of projects, repositories and
contributors. It scores criticality, contributor concentration and adoption,
runs the 2-of-3 metric gate, surfaces maintenance debt, keystone contributors
and funding efficiency, and records each run as a comparable snapshot.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is the normal case.
			_ = godotenv.Load()
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (.toml, .yaml); defaults to $"+envConfig)

	root.AddCommand(c.runCommand())
	root.AddCommand(c.gateCommand())
	root.AddCommand(c.debtCommand())
	root.AddCommand(c.keystoneCommand())
	root.AddCommand(c.fundingCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The render cache lives
// for the process only.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(cache.NewMemoryCache(), c.Logger)
}

// loadConfig reads --config, then $PGATLAS_CONFIG, and falls back to the
// defaults when neither is set.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("loaded config", "path", path, "fingerprint", cfg.Fingerprint())
	return cfg, nil
}

// analyze loads the graph with its patches and runs the pipeline.
func (c *CLI) analyze(ctx context.Context, runner *pipeline.Runner, in *inputFlags) (*pipeline.Result, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := loggerFromContext(ctx)

	prog := newProgress(logger)
	g, merged, err := pipeline.Load(ctx, pipeline.LoadOptions{
		GraphPath:  in.graph,
		PatchPaths: in.patches,
		WindowDays: cfg.Activity.WindowDays,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	if len(in.patches) > 0 {
		logger.Debug("applied patches", "count", len(in.patches), "added", merged.NodesAdded, "updated", merged.NodesUpdated)
	}

	spinner := newSpinnerWithContext(ctx, "Scoring graph...")
	spinner.Start()
	res, err := runner.Execute(ctx, g, pipeline.Options{
		Config: cfg,
		Round:  in.round,
		Logger: logger,
	})
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	prog.done("Analyzed " + in.graph)
	logger.Debug("stage timings", "stats", res.Stats.String())
	return res, nil
}

// =============================================================================
// Paths
// =============================================================================

// dataDir returns the data directory using XDG standard (~/.local/share/pgatlas/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// snapshotDir resolves the snapshot directory: the flag value, then
// $PGATLAS_SNAPSHOT_DIR, then <data dir>/snapshots.
func snapshotDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if dir := os.Getenv(envSnapshotDir); dir != "" {
		return dir, nil
	}
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snapshots"), nil
}
