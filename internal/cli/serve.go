package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pgatlas/pgatlas/pkg/api"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/observability"
	"github.com/pgatlas/pgatlas/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	outDir  string
	watch   bool
	timeout time.Duration
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		in   inputFlags
		opts = serveOpts{addr: ":8080", timeout: time.Minute}
	)

	cmd := &cobra.Command{
		Use:   "serve [graph.json]",
		Short: "Serve results over the HTTP API",
		Long: `Serve results over the HTTP API.

The graph is scored once at startup. POST /api/v1/snapshots rescores it from
disk and writes a snapshot file. With --watch the graph and patch files are
rescored whenever they change. Prometheus metrics are served at /metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.parse(args); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), &in, opts)
		},
	}

	in.bind(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "", "snapshot directory for POST /api/v1/snapshots")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "rescore when the graph or patch files change")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, in *inputFlags, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	dir, err := snapshotDir(opts.outDir)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics(nil)
	observability.SetPipelineHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	source := func(ctx context.Context) (*graph.Graph, error) {
		g, _, err := pipeline.Load(ctx, pipeline.LoadOptions{
			GraphPath:  in.graph,
			PatchPaths: in.patches,
			WindowDays: cfg.Activity.WindowDays,
			Logger:     logger,
		})
		return g, err
	}

	runner := c.newRunner()
	defer runner.Close()
	server := api.New(runner, source, api.Options{
		Config:      cfg,
		SnapshotDir: dir,
		Metrics:     metrics,
		Timeout:     opts.timeout,
		Logger:      logger,
	})
	if _, err := server.Refresh(ctx, in.round); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		printSuccess("Serving on %s", opts.addr)
		printNextStep("Gate results", "curl http://localhost"+opts.addr+"/api/v1/gate")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if opts.watch {
		files := append([]string{in.graph}, in.patches...)
		g.Go(func() error {
			return watchFiles(ctx, logger, files, func() {
				if _, err := server.Refresh(ctx, in.round); err != nil {
					printError("rescore failed, keeping previous results: %v", err)
					return
				}
				printInfo("Rescored %s", in.graph)
			})
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
