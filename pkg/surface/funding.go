package surface

import (
	"cmp"
	"slices"

	"github.com/pgatlas/pgatlas/pkg/config"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/stats"
)

// FundingTier classifies a project's funding efficiency ratio.
type FundingTier string

const (
	TierCriticallyUnderfunded   FundingTier = "critically_underfunded"
	TierUnderfunded             FundingTier = "underfunded"
	TierBalanced                FundingTier = "balanced"
	TierOverfunded              FundingTier = "overfunded"
	TierSignificantlyOverfunded FundingTier = "significantly_overfunded"
	TierUnfunded                FundingTier = "unfunded"
	TierUndefined               FundingTier = "undefined"
)

// FundingTiers lists every tier in report order.
var FundingTiers = []FundingTier{
	TierCriticallyUnderfunded,
	TierUnderfunded,
	TierBalanced,
	TierOverfunded,
	TierSignificantlyOverfunded,
	TierUnfunded,
	TierUndefined,
}

// ClassifyFER maps a ratio to its tier. Bounds are strict lower bounds.
func ClassifyFER(fer float64, cfg config.Funding) FundingTier {
	switch {
	case fer > cfg.CriticallyUnderfunded:
		return TierCriticallyUnderfunded
	case fer > cfg.Underfunded:
		return TierUnderfunded
	case fer > cfg.Balanced:
		return TierBalanced
	case fer > cfg.Overfunded:
		return TierOverfunded
	default:
		return TierSignificantlyOverfunded
	}
}

// FundingEntry is the funding efficiency of one project.
type FundingEntry struct {
	Project        string      `json:"project"`
	Title          string      `json:"title,omitempty"`
	Criticality    float64     `json:"criticality_raw"`
	CriticalityPct float64     `json:"criticality_pct"`
	Funding        float64     `json:"funding"`
	FundingPct     float64     `json:"funding_pct"`
	FER            *float64    `json:"fer"` // nil when undefined
	Tier           FundingTier `json:"fer_tier"`
	PonyFlag       bool        `json:"pony_flag"`
	PonyRiskRepos  int         `json:"pony_risk_repos"`
	Narrative      string      `json:"narrative,omitempty"`
}

// FundingEfficiency computes FER = criticality percentile / funding
// percentile for every Project in the graph.
//
// Project criticality is the sum of its repositories' criticality scores.
// Criticality percentiles rank every project; funding percentiles rank only
// funded projects, so an unfunded project has funding percentile 0. FER is
// nil for unfunded projects (tier unfunded) and for funded projects whose
// funding percentile is 0 (tier undefined).
//
// Entries are sorted with nil ratios first, then by FER descending.
func FundingEfficiency(in Inputs, cfg config.Funding) []FundingEntry {
	projects := in.Graph.NodesOf(graph.KindProject)
	if len(projects) == 0 {
		return nil
	}

	crit := make(map[string]float64, len(projects))
	funding := make(map[string]float64, len(projects))
	funded := make(map[string]float64)
	for _, p := range projects {
		crit[p.ID] = 0
		funding[p.ID] = p.Project.Funding
		if p.Project.Funding > 0 {
			funded[p.ID] = p.Project.Funding
		}
	}

	pony := make(map[string]int)
	for _, r := range in.Graph.NodesOf(graph.KindRepo) {
		owner := in.Graph.Owner(r.ID)
		if _, ok := crit[owner]; !ok {
			continue
		}
		crit[owner] += float64(in.Criticality[r.ID])
		if risk, ok := in.Concentration[r.ID]; ok && risk.Flagged() {
			pony[owner]++
		}
	}

	critPct := stats.ExclusivePercentiles(crit)
	fundPct := stats.ExclusivePercentiles(funded)

	out := make([]FundingEntry, 0, len(projects))
	for _, p := range projects {
		e := FundingEntry{
			Project:        p.ID,
			Title:          p.Project.Title,
			Criticality:    stats.Round(crit[p.ID], 2),
			CriticalityPct: stats.Round(critPct[p.ID], 1),
			Funding:        funding[p.ID],
			FundingPct:     stats.Round(fundPct[p.ID], 1),
			PonyFlag:       pony[p.ID] > 0,
			PonyRiskRepos:  pony[p.ID],
		}
		switch {
		case funding[p.ID] <= 0:
			e.Tier = TierUnfunded
		case fundPct[p.ID] == 0:
			e.Tier = TierUndefined
		default:
			fer := stats.Round(critPct[p.ID]/fundPct[p.ID], 4)
			e.FER = &fer
			e.Tier = ClassifyFER(fer, cfg)
		}
		out = append(out, e)
	}

	slices.SortFunc(out, compareFER)
	return out
}

func compareFER(a, b FundingEntry) int {
	switch {
	case a.FER == nil && b.FER != nil:
		return -1
	case a.FER != nil && b.FER == nil:
		return 1
	case a.FER != nil && b.FER != nil:
		if c := cmp.Compare(*b.FER, *a.FER); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Project, b.Project)
}

// FundingSummary is the tier distribution of a funding efficiency run.
type FundingSummary struct {
	Tiers          map[FundingTier]int `json:"tiers"`
	TopUnderfunded []FundingEntry      `json:"top_underfunded"`
}

// SummarizeFunding counts entries per tier (every tier present, zero
// included) and lists up to top critically underfunded projects by FER.
func SummarizeFunding(entries []FundingEntry, top int) FundingSummary {
	s := FundingSummary{Tiers: make(map[FundingTier]int, len(FundingTiers))}
	for _, t := range FundingTiers {
		s.Tiers[t] = 0
	}
	var critical []FundingEntry
	for _, e := range entries {
		s.Tiers[e.Tier]++
		if e.Tier == TierCriticallyUnderfunded {
			critical = append(critical, e)
		}
	}
	slices.SortStableFunc(critical, compareFER)
	s.TopUnderfunded = head(critical, top)
	return s
}
