// Package pipeline runs the complete PG Atlas analytics pass.
//
// This package implements the graph → projection → scores → gate → surfaces →
// snapshot pipeline used by the CLI and the API server. By centralizing
// stage order, concurrency and annotation here, every entry point produces
// the same results from the same graph and configuration.
//
// # Architecture
//
// The pipeline consists of these stages:
//
//  1. Project: Reduce the graph to its active subgraph
//  2. Score: Criticality, decay criticality, concentration and adoption (parallel)
//  3. Structure: k-core numbers and bridge edges (parallel)
//  4. Annotate: Write advisory scores back onto the active graph (serial)
//  5. Gate: Evaluate every repository with a concentration score
//  6. Surfaces: Maintenance debt, keystone index and funding efficiency (parallel)
//  7. Snapshot: Aggregate everything into a governance record
//
// Every stage fires [observability.PipelineHooks] events and records its
// duration in [Stats].
//
// # Usage
//
//	g, _, err := pipeline.Load(ctx, pipeline.LoadOptions{GraphPath: "atlas.json"})
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(nil, logger)
//	result, err := runner.Execute(ctx, g, pipeline.Options{Round: "2025-q3"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Snapshot.Narrative)
package pipeline

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pgatlas/pgatlas/pkg/config"
	pgerrors "github.com/pgatlas/pgatlas/pkg/errors"
	"github.com/pgatlas/pgatlas/pkg/gate"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/score"
	"github.com/pgatlas/pgatlas/pkg/snapshot"
	"github.com/pgatlas/pgatlas/pkg/structure"
	"github.com/pgatlas/pgatlas/pkg/surface"
)

// Stage names reported to hooks, logs and [Stats.Stages].
const (
	StageProject       = "project"
	StageCriticality   = "criticality"
	StageDecay         = "decay"
	StageConcentration = "concentration"
	StageAdoption      = "adoption"
	StageKCore         = "kcore"
	StageBridges       = "bridges"
	StageAnnotate      = "annotate"
	StageGate          = "gate"
	StageDebt          = "debt"
	StageKeystone      = "keystone"
	StageFunding       = "funding"
	StageSnapshot      = "snapshot"
)

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Config holds every threshold. The zero value means [config.Default].
	Config config.Config

	// Round labels the snapshot, e.g. "2025-q3". Optional.
	Round string

	// Now stamps the snapshot. Zero means time.Now.
	Now time.Time

	// Logger receives stage progress. Nil falls back to the runner's logger.
	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults fills defaults and validates the options. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Config == (config.Config{}) {
		o.Config = config.Default()
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if err := pgerrors.ValidateRoundLabel(o.Round); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result holds every stage output of one run.
type Result struct {
	// Active is the projected, annotated graph every scorer read.
	Active *graph.Graph
	Pruned []string

	Criticality      map[string]int
	DecayCriticality map[string]float64
	CriticalityPct   map[string]float64
	Concentration    map[string]score.Risk
	Adoption         map[string]score.AdoptionScore

	Cores   map[string]int
	Bridges []structure.Bridge

	Gate        []gate.Result
	GateSummary gate.Summary

	Debt           []surface.DebtEntry
	Keystone       []surface.KeystoneEntry
	Funding        []surface.FundingEntry
	FundingSummary surface.FundingSummary

	Snapshot *snapshot.Snapshot

	// GraphHash fingerprints the input graph.
	GraphHash string
	Config    config.Config
	Stats     Stats
}

// Stats records graph sizes and stage timings.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	ActiveNodes int
	ActiveEdges int
	Stages      map[string]time.Duration
	Total       time.Duration
}

// String renders the stage timings on one line, slowest first.
func (s Stats) String() string {
	names := make([]string, 0, len(s.Stages))
	for name := range s.Stages {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(s.Stages[b], s.Stages[a]), cmp.Compare(a, b))
	})
	out := fmt.Sprintf("total %s", s.Total.Round(time.Microsecond))
	for _, name := range names {
		out += fmt.Sprintf(", %s %s", name, s.Stages[name].Round(time.Microsecond))
	}
	return out
}

// CriticalityRow is one package of the criticality table.
type CriticalityRow struct {
	ID         string  `json:"id"`
	Score      int     `json:"score"`
	Decayed    float64 `json:"decayed"`
	Percentile float64 `json:"percentile"`
	Ecosystem  string  `json:"ecosystem"`
}

// CriticalityRows lists every scored package, highest score first, ties by id.
func (r *Result) CriticalityRows() []CriticalityRow {
	rows := make([]CriticalityRow, 0, len(r.Criticality))
	for id, s := range r.Criticality {
		row := CriticalityRow{
			ID:         id,
			Score:      s,
			Decayed:    r.DecayCriticality[id],
			Percentile: r.CriticalityPct[id],
			Ecosystem:  "unknown",
		}
		if n, ok := r.Active.Node(id); ok && n.Ecosystem() != "" {
			row.Ecosystem = n.Ecosystem()
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b CriticalityRow) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), cmp.Compare(a.ID, b.ID))
	})
	return rows
}

// ConcentrationRows lists every concentration score, highest HHI first,
// ties by repository id.
func (r *Result) ConcentrationRows() []score.Risk {
	rows := make([]score.Risk, 0, len(r.Concentration))
	for _, risk := range r.Concentration {
		rows = append(rows, risk)
	}
	slices.SortFunc(rows, func(a, b score.Risk) int {
		return cmp.Or(cmp.Compare(b.HHI, a.HHI), cmp.Compare(a.Repo, b.Repo))
	})
	return rows
}
