package pipeline

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/pgatlas/pgatlas/pkg/config"
	pgerrors "github.com/pgatlas/pgatlas/pkg/errors"
	"github.com/pgatlas/pgatlas/pkg/graph"
)

// LoadOptions names the graph file and the patches folded into it.
type LoadOptions struct {
	// GraphPath is the JSON graph file. Required.
	GraphPath string

	// PatchPaths are JSON patch files merged in order.
	PatchPaths []string

	// WindowDays decides the active flag of packages that receive activity
	// records from a patch. Zero uses the default window.
	WindowDays int

	Logger *log.Logger
}

// Load reads the graph at opts.GraphPath and merges every patch into it.
// The returned stats accumulate over all patches.
func Load(ctx context.Context, opts LoadOptions) (*graph.Graph, graph.MergeStats, error) {
	var total graph.MergeStats
	if opts.GraphPath == "" {
		return nil, total, pgerrors.New(pgerrors.ErrCodeInvalidInput, "graph path is required")
	}
	if opts.WindowDays == 0 {
		opts.WindowDays = config.DefaultActiveWindowDays
	}

	g, err := graph.ReadGraphFile(opts.GraphPath)
	if err != nil {
		return nil, total, err
	}
	if opts.Logger != nil {
		opts.Logger.Debug("read graph", "path", opts.GraphPath, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	}

	for _, path := range opts.PatchPaths {
		if err := ctx.Err(); err != nil {
			return nil, total, err
		}
		p, err := graph.ReadPatchFile(path)
		if err != nil {
			return nil, total, err
		}
		merged, stats, err := graph.Merge(g, p, opts.WindowDays)
		if err != nil {
			return nil, total, pgerrors.Wrap(pgerrors.ErrCodeInvalidGraph, err, "merge %s", path)
		}
		g = merged
		total.NodesAdded += stats.NodesAdded
		total.NodesUpdated += stats.NodesUpdated
		total.EdgesAdded += stats.EdgesAdded
		total.EdgesUpdated += stats.EdgesUpdated
		total.Skipped += stats.Skipped
		if opts.Logger != nil {
			opts.Logger.Info("merged patch", "path", path, "stats", fmt.Sprintf("%+v", stats))
		}
	}
	return g, total, nil
}
