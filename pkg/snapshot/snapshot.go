// Package snapshot captures one run of the pipeline as a governance record.
//
// A [Snapshot] aggregates ecosystem-level statistics, ranked lists and the
// funding tier distribution into a single timestamped value that can be
// written to disk with [WriteFile] and compared against any other snapshot
// with [Compare]. Deltas are always later minus earlier.
//
// Snapshots are values: [Build] copies every slice it embeds, and callers
// treat the result as immutable.
package snapshot

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pgatlas/pgatlas/pkg/config"
	"github.com/pgatlas/pgatlas/pkg/gate"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/score"
	"github.com/pgatlas/pgatlas/pkg/stats"
	"github.com/pgatlas/pgatlas/pkg/structure"
	"github.com/pgatlas/pgatlas/pkg/surface"
)

// Snapshot is a timestamped record of ecosystem structural health.
type Snapshot struct {
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	Round             string    `json:"round,omitempty"`
	GraphFingerprint  string    `json:"graph_fingerprint,omitempty"`
	ConfigFingerprint string    `json:"config_fingerprint,omitempty"`

	ActiveProjects  int `json:"total_active_projects"`
	ActiveRepos     int `json:"total_active_repos"`
	ExternalRepos   int `json:"total_external_repos"`
	Contributors    int `json:"total_contributors"`
	DependencyEdges int `json:"total_dependency_edges"`
	DormantPruned   int `json:"dormant_pruned"`
	MaxKCore        int `json:"max_kcore"`
	BridgeCount     int `json:"bridge_edge_count"`

	MeanHHI           float64 `json:"mean_hhi"`
	MedianHHI         float64 `json:"median_hhi"`
	PonyFactorRate    float64 `json:"pony_factor_rate"`
	MeanCriticality   float64 `json:"mean_criticality"`
	MedianCriticality float64 `json:"median_criticality"`

	GatePassRate   float64 `json:"gate_pass_rate"`
	GateBorderline int     `json:"gate_borderline_count"`
	DebtSurface    int     `json:"maintenance_debt_surface_size"`
	Keystones      int     `json:"keystone_contributor_count"`

	TopCritical []CriticalPackage      `json:"top_critical_packages"`
	TopKeystone []KeystoneSummary      `json:"top_keystone_contributors"`
	Funding     surface.FundingSummary `json:"funding_efficiency_summary"`
	Narrative   string                 `json:"governing_answer,omitempty"`
}

// Label returns the round label, or the creation date when unlabeled.
func (s *Snapshot) Label() string {
	if s.Round != "" {
		return s.Round
	}
	return s.CreatedAt.UTC().Format(time.DateOnly)
}

// CriticalPackage is one entry of the top critical packages list.
type CriticalPackage struct {
	ID          string  `json:"id"`
	Criticality int     `json:"criticality"`
	Percentile  float64 `json:"pct"`
	Ecosystem   string  `json:"ecosystem"`
}

// KeystoneSummary is one entry of the top keystone contributors list.
type KeystoneSummary struct {
	Contributor string  `json:"contributor"`
	KCI         float64 `json:"kci"`
	Repos       int     `json:"repos"`
	Downstream  int     `json:"downstream"`
}

// Input holds every stage output a snapshot summarizes.
type Input struct {
	Graph          *graph.Graph // active subgraph
	Pruned         int
	Criticality    map[string]int
	CriticalityPct map[string]float64
	Concentration  map[string]score.Risk
	Cores          map[string]int
	Bridges        []structure.Bridge
	Gate           []gate.Result
	Debt           []surface.DebtEntry
	Keystone       []surface.KeystoneEntry
	Funding        []surface.FundingEntry
}

// BuildOptions controls snapshot metadata and list sizes.
type BuildOptions struct {
	Round             string
	Now               time.Time
	Sizes             config.Snapshot
	GraphFingerprint  string
	ConfigFingerprint string
}

// Build aggregates in into a new snapshot. Empty inputs yield zero
// statistics and empty lists.
func Build(in Input, opts BuildOptions) *Snapshot {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	s := &Snapshot{
		ID:                uuid.NewString(),
		CreatedAt:         now.UTC(),
		Round:             opts.Round,
		GraphFingerprint:  opts.GraphFingerprint,
		ConfigFingerprint: opts.ConfigFingerprint,
		DormantPruned:     in.Pruned,
		MaxKCore:          structure.MaxCore(in.Cores),
		BridgeCount:       len(in.Bridges),
		DebtSurface:       len(in.Debt),
		Keystones:         len(in.Keystone),
	}

	if g := in.Graph; g != nil {
		s.ActiveProjects = g.CountKind(graph.KindProject)
		s.ExternalRepos = g.CountKind(graph.KindExternalRepo)
		s.Contributors = g.CountKind(graph.KindContributor)
		s.DependencyEdges = g.CountRelation(graph.DependsOn)
		for _, n := range g.NodesOf(graph.KindRepo) {
			if n.IsActive() {
				s.ActiveRepos++
			}
		}
	}

	hhi := stats.Values(score.HHIValues(in.Concentration))
	s.MeanHHI = stats.Round(stats.Mean(hhi), 1)
	s.MedianHHI = stats.Round(stats.Median(hhi), 1)
	if len(in.Concentration) > 0 {
		flagged := 0
		for _, r := range in.Concentration {
			if r.Flagged() {
				flagged++
			}
		}
		s.PonyFactorRate = stats.Round(float64(flagged)/float64(len(in.Concentration)), 4)
	}

	crit := stats.Values(in.Criticality)
	s.MeanCriticality = stats.Round(stats.Mean(crit), 2)
	s.MedianCriticality = stats.Round(stats.Median(crit), 2)

	gs := gate.Summarize(in.Gate)
	s.GatePassRate = stats.Round(gs.PassRate, 4)
	s.GateBorderline = gs.Borderline

	s.TopCritical = topCritical(in, opts.Sizes.TopCritical)
	s.TopKeystone = topKeystone(in.Keystone, opts.Sizes.TopKeystone)
	s.Funding = surface.SummarizeFunding(in.Funding, opts.Sizes.TopUnderfunded)
	return s
}

// topCritical ranks packages with positive criticality, highest first.
func topCritical(in Input, n int) []CriticalPackage {
	out := make([]CriticalPackage, 0, max(n, 0))
	for id, c := range in.Criticality {
		if c <= 0 {
			continue
		}
		eco := "unknown"
		if in.Graph != nil {
			if node, ok := in.Graph.Node(id); ok && node.Ecosystem() != "" {
				eco = node.Ecosystem()
			}
		}
		out = append(out, CriticalPackage{
			ID:          id,
			Criticality: c,
			Percentile:  stats.Round(in.CriticalityPct[id], 1),
			Ecosystem:   eco,
		})
	}
	slices.SortFunc(out, func(a, b CriticalPackage) int {
		if c := cmp.Compare(b.Criticality, a.Criticality); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(out) > n {
		out = out[:max(n, 0)]
	}
	return out
}

func topKeystone(entries []surface.KeystoneEntry, n int) []KeystoneSummary {
	n = min(max(n, 0), len(entries))
	out := make([]KeystoneSummary, n)
	for i, e := range entries[:n] {
		out[i] = KeystoneSummary{
			Contributor: e.Contributor,
			KCI:         e.KCI,
			Repos:       len(e.DominantRepos),
			Downstream:  e.AtRisk,
		}
	}
	return out
}
