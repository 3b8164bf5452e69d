// Package active projects an ecosystem graph onto its dormancy-aware working set.
//
// Projection is the mandatory first stage of the pipeline: every scorer reads
// the projected graph, never the raw one. Classification rules:
//
//   - Project and Contributor nodes are always retained.
//   - Repo and ExternalRepo nodes are retained iff their days since last
//     commit is within the window and they are not archived.
//   - A Repo with unknown activity is treated as dormant and pruned.
//   - An ExternalRepo with unknown activity is retained; it cannot be observed
//     directly but must stay traversable for dependency analysis.
//   - A node of unknown type is retained and reported as a warning.
//
// The result is the induced subgraph: every edge between two retained nodes
// is kept with its attributes. Projecting a projected graph again with the
// same window returns the same node and edge set.
package active

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/pgatlas/pgatlas/pkg/graph"
)

// Options configures a projection.
type Options struct {
	// WindowDays is the dormancy window; a package is active when its days
	// since last commit is at most WindowDays.
	WindowDays int

	// Logger receives warnings about nodes of unknown type. Nil discards them.
	Logger *log.Logger
}

// Result is the output of [Project].
type Result struct {
	Graph    *graph.Graph
	Pruned   []string // ids removed by the projection, sorted
	Retained int
	Removed  int
}

// Project returns the active subgraph of g. g is not modified.
func Project(g *graph.Graph, opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	var pruned []string
	keep := make(map[string]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		if Keep(n, opts.WindowDays) {
			keep[n.ID] = true
			if n.Kind == graph.KindUnknown {
				logger.Warn("retaining node of unknown type", "id", n.ID, "node_type", n.RawType)
			}
			continue
		}
		pruned = append(pruned, n.ID)
	}
	slices.Sort(pruned)

	sub := g.Induced(func(n *graph.Node) bool { return keep[n.ID] })
	logger.Debug("projected active subgraph",
		"window_days", opts.WindowDays,
		"retained", sub.NodeCount(),
		"removed", len(pruned))

	return Result{
		Graph:    sub,
		Pruned:   pruned,
		Retained: sub.NodeCount(),
		Removed:  len(pruned),
	}
}

// Keep reports whether a single node survives projection with the given window.
func Keep(n *graph.Node, windowDays int) bool {
	switch n.Kind {
	case graph.KindProject, graph.KindContributor:
		return true
	case graph.KindRepo, graph.KindExternalRepo:
		// Unknown recency keeps an external package even when archived.
		days := n.Repo.DaysSinceCommit
		if !days.Known() {
			return n.Kind == graph.KindExternalRepo
		}
		return int(days) <= windowDays && !n.Repo.Archived
	default:
		return true
	}
}
