package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/pgatlas/pgatlas/pkg/active"
	"github.com/pgatlas/pgatlas/pkg/cache"
	pgerrors "github.com/pgatlas/pgatlas/pkg/errors"
	"github.com/pgatlas/pgatlas/pkg/gate"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/narrative"
	"github.com/pgatlas/pgatlas/pkg/observability"
	"github.com/pgatlas/pgatlas/pkg/score"
	"github.com/pgatlas/pgatlas/pkg/snapshot"
	"github.com/pgatlas/pgatlas/pkg/stats"
	"github.com/pgatlas/pgatlas/pkg/structure"
	"github.com/pgatlas/pgatlas/pkg/surface"
)

// Runner executes the pipeline and caches rendered diagrams.
// Both CLI and API use it so stage order and logging live in one place.
//
// The Runner is stateless except for the cache and logger: it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different graphs.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables render caching; a nil
// logger uses the charmbracelet default logger.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs every stage over g. g itself is never modified; scores are
// annotated onto the projected copy returned in [Result.Active].
func (r *Runner) Execute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if g == nil {
		return nil, pgerrors.New(pgerrors.ErrCodeInvalidInput, "graph is required")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	cfg := opts.Config
	logger := opts.Logger
	start := time.Now()

	res := &Result{
		GraphHash: GraphHash(g),
		Config:    cfg,
		Stats: Stats{
			NodeCount: g.NodeCount(),
			EdgeCount: g.EdgeCount(),
			Stages:    make(map[string]time.Duration),
		},
	}
	t := &tracker{logger: logger, stages: res.Stats.Stages}

	// Stage 1: Project
	err := t.run(ctx, StageProject, func() (int, error) {
		p := active.Project(g, active.Options{WindowDays: cfg.Activity.WindowDays, Logger: logger})
		res.Active = p.Graph
		res.Pruned = p.Pruned
		return p.Retained, nil
	})
	if err != nil {
		return nil, err
	}
	ag := res.Active
	res.Stats.ActiveNodes = ag.NodeCount()
	res.Stats.ActiveEdges = ag.EdgeCount()
	logger.Info("projected active subgraph",
		"nodes", ag.NodeCount(),
		"edges", ag.EdgeCount(),
		"pruned", len(res.Pruned))

	// Stage 2: Scores
	err = t.parallel(ctx,
		stage{StageCriticality, func() (int, error) {
			res.Criticality = score.Criticality(ag)
			res.CriticalityPct = stats.ExclusivePercentiles(res.Criticality)
			return len(res.Criticality), nil
		}},
		stage{StageDecay, func() (int, error) {
			res.DecayCriticality = score.DecayCriticality(ag, cfg.Criticality.DecayHalflifeDays)
			return len(res.DecayCriticality), nil
		}},
		stage{StageConcentration, func() (int, error) {
			res.Concentration = score.ConcentrationRisk(ag, cfg.Concentration)
			return len(res.Concentration), nil
		}},
		stage{StageAdoption, func() (int, error) {
			res.Adoption = score.Adoption(ag)
			return len(res.Adoption), nil
		}},
	)
	if err != nil {
		return nil, err
	}

	// Stage 3: Structure
	err = t.parallel(ctx,
		stage{StageKCore, func() (int, error) {
			res.Cores = structure.CoreNumbers(ag)
			return len(res.Cores), nil
		}},
		stage{StageBridges, func() (int, error) {
			res.Bridges = structure.Bridges(ag)
			return len(res.Bridges), nil
		}},
	)
	if err != nil {
		return nil, err
	}
	logger.Info("scored packages",
		"criticality", len(res.Criticality),
		"concentration", len(res.Concentration),
		"max_kcore", structure.MaxCore(res.Cores),
		"bridges", len(res.Bridges))

	// Stage 4: Annotate (Graph.Annotate is not safe for concurrent use)
	err = t.run(ctx, StageAnnotate, func() (int, error) {
		return annotate(ag, res), nil
	})
	if err != nil {
		return nil, err
	}

	// Stage 5: Gate
	err = t.run(ctx, StageGate, func() (int, error) {
		inputs := gate.Inputs(gate.Scores{
			Criticality:    res.Criticality,
			CriticalityPct: res.CriticalityPct,
			Concentration:  res.Concentration,
			Adoption:       score.AdoptionValues(res.Adoption),
		})
		res.Gate = gate.EvaluateAll(inputs, cfg.Gate)
		gate.ExplainAll(res.Gate, narrative.Gate{Tiers: cfg.Concentration})
		res.GateSummary = gate.Summarize(res.Gate)
		return len(res.Gate), nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("evaluated metric gate",
		"total", res.GateSummary.Total,
		"passed", res.GateSummary.Passed,
		"borderline", res.GateSummary.Borderline)

	// Stage 6: Surfaces
	in := surface.Inputs{
		Graph:          ag,
		Criticality:    res.Criticality,
		CriticalityPct: res.CriticalityPct,
		Concentration:  res.Concentration,
	}
	err = t.parallel(ctx,
		stage{StageDebt, func() (int, error) {
			res.Debt = surface.MaintenanceDebt(in, cfg)
			narrative.FillDebt(res.Debt)
			return len(res.Debt), nil
		}},
		stage{StageKeystone, func() (int, error) {
			res.Keystone = surface.Keystone(in)
			narrative.FillKeystone(res.Keystone)
			return len(res.Keystone), nil
		}},
		stage{StageFunding, func() (int, error) {
			res.Funding = surface.FundingEfficiency(in, cfg.Funding)
			narrative.FillFunding(res.Funding)
			res.FundingSummary = surface.SummarizeFunding(res.Funding, cfg.Snapshot.TopUnderfunded)
			return len(res.Funding), nil
		}},
	)
	if err != nil {
		return nil, err
	}

	// Stage 7: Snapshot
	err = t.run(ctx, StageSnapshot, func() (int, error) {
		res.Snapshot = snapshot.Build(snapshot.Input{
			Graph:          ag,
			Pruned:         len(res.Pruned),
			Criticality:    res.Criticality,
			CriticalityPct: res.CriticalityPct,
			Concentration:  res.Concentration,
			Cores:          res.Cores,
			Bridges:        res.Bridges,
			Gate:           res.Gate,
			Debt:           res.Debt,
			Keystone:       res.Keystone,
			Funding:        res.Funding,
		}, snapshot.BuildOptions{
			Round:             opts.Round,
			Now:               opts.Now,
			Sizes:             cfg.Snapshot,
			GraphFingerprint:  res.GraphHash,
			ConfigFingerprint: cfg.Fingerprint(),
		})
		res.Snapshot.Narrative = narrative.GoverningAnswer(res.Funding, len(res.Debt), res.GateSummary)
		return 1, nil
	})
	if err != nil {
		return nil, err
	}

	res.Stats.Total = time.Since(start)
	observability.Pipeline().OnSnapshot(ctx, res.Snapshot.Label(), res.Snapshot.GatePassRate)
	logger.Info("built snapshot",
		"id", res.Snapshot.ID,
		"round", res.Snapshot.Label(),
		"debt", len(res.Debt),
		"keystones", len(res.Keystone),
		"duration", res.Stats.Total)

	return res, nil
}

// annotate writes the advisory scores onto g and returns the number of
// values written.
func annotate(g *graph.Graph, res *Result) int {
	n := 0
	for id, a := range res.Adoption {
		if g.Annotate(id, graph.AnnotationAdoption, a.Score) {
			n++
		}
	}
	for id, c := range res.Criticality {
		if g.Annotate(id, graph.AnnotationCriticality, float64(c)) {
			n++
		}
	}
	for id, k := range res.Cores {
		if g.Annotate(id, graph.AnnotationKCore, float64(k)) {
			n++
		}
	}
	return n
}

// GraphHash fingerprints a graph by its canonical JSON form.
func GraphHash(g *graph.Graph) string {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Stage Tracking
// =============================================================================

type stage struct {
	name string
	fn   func() (int, error)
}

// tracker times stages, fires hooks, and stops at the first cancellation.
type tracker struct {
	logger *log.Logger
	mu     sync.Mutex
	stages map[string]time.Duration
}

func (t *tracker) run(ctx context.Context, name string, fn func() (int, error)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)

	start := time.Now()
	items, err := fn()
	d := time.Since(start)
	hooks.OnStageComplete(ctx, name, items, d, err)

	t.mu.Lock()
	t.stages[name] = d
	t.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	t.logger.Debug("stage complete", "stage", name, "items", items, "duration", d)
	return nil
}

func (t *tracker) parallel(ctx context.Context, stages ...stage) error {
	eg, gctx := errgroup.WithContext(ctx)
	for _, s := range stages {
		eg.Go(func() error { return t.run(gctx, s.name, s.fn) })
	}
	return eg.Wait()
}
