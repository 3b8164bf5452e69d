package snapshot

import (
	"github.com/pgatlas/pgatlas/pkg/config"
	"github.com/pgatlas/pgatlas/pkg/stats"
)

// Trend is the overall direction between two snapshots.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDegrading Trend = "degrading"
	TrendStable    Trend = "stable"
)

// Directional metric names.
const (
	MetricPonyFactorRate = "pony_factor_rate"
	MetricMeanHHI        = "mean_hhi"
	MetricGatePassRate   = "gate_pass_rate"
	MetricDebtSurface    = "maintenance_debt_surface_size"
	MetricKeystones      = "keystone_contributor_count"
)

// Deltas holds the five directional deltas (later minus earlier).
type Deltas struct {
	PonyFactorRate float64 `json:"pony_factor_rate_delta"` // lower is better
	MeanHHI        float64 `json:"mean_hhi_delta"`         // lower is better
	GatePassRate   float64 `json:"gate_pass_rate_delta"`   // higher is better
	DebtSurface    int     `json:"maintenance_debt_surface_delta"`
	Keystones      int     `json:"keystone_contributor_delta"`
}

// Informational holds deltas reported without a direction.
type Informational struct {
	GateBorderline  int     `json:"gate_borderline_count_delta"`
	MedianHHI       float64 `json:"median_hhi_delta"`
	ActiveRepos     int     `json:"active_repos_delta"`
	ActiveProjects  int     `json:"active_projects_delta"`
	DependencyEdges int     `json:"total_dependency_edges_delta"`
	Bridges         int     `json:"bridge_edge_count_delta"`
}

// Comparison is the delta between an earlier and a later snapshot.
type Comparison struct {
	From          string        `json:"from"`
	To            string        `json:"to"`
	FromID        string        `json:"from_id"`
	ToID          string        `json:"to_id"`
	Deltas        Deltas        `json:"deltas"`
	Informational Informational `json:"informational"`
	Improved      []string      `json:"metrics_improved"`
	Degraded      []string      `json:"metrics_degraded"`
	Trend         Trend         `json:"fragility_trend"`
	Narrative     string        `json:"narrative,omitempty"`
}

// Compare computes b - a. The snapshots need not be adjacent in time. The
// trend is improving when more directional metrics improved than degraded,
// degrading for the reverse, and stable on a tie. Rate and HHI deltas within
// the tolerances of cfg do not vote.
func Compare(a, b *Snapshot, cfg config.Compare) Comparison {
	d := Deltas{
		PonyFactorRate: stats.Round(b.PonyFactorRate-a.PonyFactorRate, 4),
		MeanHHI:        stats.Round(b.MeanHHI-a.MeanHHI, 1),
		GatePassRate:   stats.Round(b.GatePassRate-a.GatePassRate, 4),
		DebtSurface:    b.DebtSurface - a.DebtSurface,
		Keystones:      b.Keystones - a.Keystones,
	}

	c := Comparison{
		From:   a.Label(),
		To:     b.Label(),
		FromID: a.ID,
		ToID:   b.ID,
		Deltas: d,
		Informational: Informational{
			GateBorderline:  b.GateBorderline - a.GateBorderline,
			MedianHHI:       stats.Round(b.MedianHHI-a.MedianHHI, 1),
			ActiveRepos:     b.ActiveRepos - a.ActiveRepos,
			ActiveProjects:  b.ActiveProjects - a.ActiveProjects,
			DependencyEdges: b.DependencyEdges - a.DependencyEdges,
			Bridges:         b.BridgeCount - a.BridgeCount,
		},
		Improved: []string{},
		Degraded: []string{},
	}

	judge := func(name string, delta, tolerance float64, lowerIsBetter bool) {
		if lowerIsBetter {
			delta = -delta
		}
		switch {
		case delta > tolerance:
			c.Improved = append(c.Improved, name)
		case delta < -tolerance:
			c.Degraded = append(c.Degraded, name)
		}
	}
	judge(MetricPonyFactorRate, d.PonyFactorRate, cfg.RateTolerance, true)
	judge(MetricMeanHHI, d.MeanHHI, cfg.HHITolerance, true)
	judge(MetricGatePassRate, d.GatePassRate, cfg.RateTolerance, false)
	judge(MetricDebtSurface, float64(d.DebtSurface), 0, true)
	judge(MetricKeystones, float64(d.Keystones), 0, true)

	switch {
	case len(c.Improved) > len(c.Degraded):
		c.Trend = TrendImproving
	case len(c.Degraded) > len(c.Improved):
		c.Trend = TrendDegrading
	default:
		c.Trend = TrendStable
	}
	return c
}
