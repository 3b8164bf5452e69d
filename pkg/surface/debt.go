package surface

import (
	"cmp"
	"slices"

	"github.com/pgatlas/pgatlas/pkg/config"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/score"
	"github.com/pgatlas/pgatlas/pkg/stats"
)

// Trend classifies commit recency.
type Trend string

const (
	TrendActive    Trend = "active"
	TrendStable    Trend = "stable"
	TrendStagnant  Trend = "stagnant"
	TrendDeclining Trend = "declining"
)

// ClassifyTrend maps days since the last commit to a trend. Unknown activity
// is treated as a commit today.
func ClassifyTrend(days graph.Days, cfg config.Trend) Trend {
	d := 0
	if days.Known() {
		d = int(days)
	}
	switch {
	case d < cfg.ActiveDays:
		return TrendActive
	case d < cfg.StableDays:
		return TrendStable
	case d < cfg.StagnantDays:
		return TrendStagnant
	default:
		return TrendDeclining
	}
}

// Slowing reports whether t qualifies for the maintenance debt surface.
func (t Trend) Slowing() bool { return t == TrendStagnant || t == TrendDeclining }

// Inputs bundles the active graph with the score maps the surfaces read.
type Inputs struct {
	Graph          *graph.Graph
	Criticality    map[string]int
	CriticalityPct map[string]float64
	Concentration  map[string]score.Risk
}

// DebtEntry is one repository on the maintenance debt surface.
type DebtEntry struct {
	Repo           string     `json:"repo"`
	Project        string     `json:"project"`
	CriticalityPct float64    `json:"criticality_percentile"`
	Dependents     int        `json:"transitive_dependents"`
	HHI            float64    `json:"hhi"`
	HHITier        score.Tier `json:"hhi_tier"`
	Trend          Trend      `json:"commit_trend"`
	DaysSince      int        `json:"days_since_last_commit"`
	TopContributor string     `json:"top_contributor"`
	TopShare       float64    `json:"top_contributor_share"`
	RiskScore      float64    `json:"risk_score"`
	Narrative      string     `json:"narrative,omitempty"`
}

// MaintenanceDebt returns the repositories that meet all three conditions:
// criticality percentile at or above cfg.Debt.CriticalityPercentile, HHI at
// or above cfg.Debt.HHIMin, and a stagnant or declining trend. Entries are
// sorted by risk score, highest first.
func MaintenanceDebt(in Inputs, cfg config.Config) []DebtEntry {
	var out []DebtEntry
	for _, n := range in.Graph.NodesOf(graph.KindRepo) {
		crit, ok := in.Criticality[n.ID]
		if !ok {
			continue
		}
		pct := in.CriticalityPct[n.ID]
		if pct < cfg.Debt.CriticalityPercentile {
			continue
		}
		risk, ok := in.Concentration[n.ID]
		if !ok || risk.HHI < cfg.Debt.HHIMin {
			continue
		}
		trend := ClassifyTrend(n.DaysSinceCommit(), cfg.Trend)
		if !trend.Slowing() {
			continue
		}

		tier := score.TierConcentrated
		if risk.HHI >= cfg.Concentration.HHICritical {
			tier = score.TierCritical
		}
		project := in.Graph.Owner(n.ID)
		if project == "" {
			project = n.ID
		}
		days := 0
		if d := n.DaysSinceCommit(); d.Known() {
			days = int(d)
		}

		out = append(out, DebtEntry{
			Repo:           n.ID,
			Project:        project,
			CriticalityPct: stats.Round(pct, 1),
			Dependents:     crit,
			HHI:            risk.HHI,
			HHITier:        tier,
			Trend:          trend,
			DaysSince:      days,
			TopContributor: risk.TopContributor,
			TopShare:       risk.TopShare,
			RiskScore:      stats.Round(pct/100*risk.HHI/10000, 4),
		})
	}
	slices.SortFunc(out, func(a, b DebtEntry) int {
		if c := cmp.Compare(b.RiskScore, a.RiskScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Repo, b.Repo)
	})
	return out
}

// DebtSummary condenses the debt surface.
type DebtSummary struct {
	Total       int         `json:"total"`
	CriticalHHI int         `json:"critical_hhi_count"`
	Declining   int         `json:"declining_count"`
	Top         []DebtEntry `json:"top_entries"`
}

// SummarizeDebt counts the surface and keeps its first top entries.
func SummarizeDebt(entries []DebtEntry, top int) DebtSummary {
	s := DebtSummary{Total: len(entries), Top: head(entries, top)}
	for _, e := range entries {
		if e.HHITier == score.TierCritical {
			s.CriticalHHI++
		}
		if e.Trend == TrendDeclining {
			s.Declining++
		}
	}
	return s
}

func head[T any](xs []T, n int) []T {
	if n > len(xs) {
		n = len(xs)
	}
	if n <= 0 {
		return []T{}
	}
	return slices.Clone(xs[:n])
}
