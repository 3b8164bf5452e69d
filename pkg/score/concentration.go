package score

import (
	"cmp"
	"math"
	"slices"

	"github.com/pgatlas/pgatlas/pkg/config"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/stats"
)

// Tier classifies a repository's contributor concentration by HHI.
type Tier string

const (
	TierHealthy      Tier = "healthy"
	TierModerate     Tier = "moderate"
	TierConcentrated Tier = "concentrated"
	TierCritical     Tier = "critical"
)

// ClassifyHHI maps an HHI value to its tier.
func ClassifyHHI(hhi float64, cfg config.Concentration) Tier {
	switch {
	case hhi < cfg.HHIModerate:
		return TierHealthy
	case hhi < cfg.HHIConcentrated:
		return TierModerate
	case hhi < cfg.HHICritical:
		return TierConcentrated
	default:
		return TierCritical
	}
}

// Share is one contributor's part of a repository's commits.
type Share struct {
	Contributor string  `json:"contributor"`
	Commits     int     `json:"commits"`
	Share       float64 `json:"share"`
}

// Risk is the contributor concentration of one repository.
type Risk struct {
	Repo           string  `json:"repo"`
	PonyFactor     int     `json:"pony_factor"` // 1 iff TopShare >= threshold
	HHI            float64 `json:"hhi"`         // 0..10000, 1 decimal
	Entropy        float64 `json:"shannon_entropy"`
	TopContributor string  `json:"top_contributor"`
	TopShare       float64 `json:"top_contributor_share"`
	Contributors   int     `json:"total_contributors"`
	TotalCommits   int     `json:"total_commits"`
	Tier           Tier    `json:"risk_tier"`
	Shares         []Share `json:"shares,omitempty"` // descending by share
}

// Flagged reports whether the repository has a pony-factor flag.
func (r Risk) Flagged() bool { return r.PonyFactor == 1 }

// ConcentrationRisk computes contributor concentration for every Repo in g
// with at least one contributed_to edge and a positive commit total.
// Missing commit counts count as zero.
func ConcentrationRisk(g *graph.Graph, cfg config.Concentration) map[string]Risk {
	out := make(map[string]Risk)
	for _, n := range g.NodesOf(graph.KindRepo) {
		edges := g.Contributions(n.ID)
		if len(edges) == 0 {
			continue
		}
		total := 0
		for _, e := range edges {
			total += e.Commits()
		}
		if total == 0 {
			continue
		}

		shares := make([]Share, len(edges))
		for i, e := range edges {
			shares[i] = Share{
				Contributor: e.From,
				Commits:     e.Commits(),
				Share:       float64(e.Commits()) / float64(total),
			}
		}
		slices.SortStableFunc(shares, func(a, b Share) int { return cmp.Compare(b.Share, a.Share) })

		var hhi, entropy float64
		for _, s := range shares {
			hhi += s.Share * s.Share
			if s.Share > 0 {
				entropy -= s.Share * math.Log(s.Share)
			}
		}
		hhi *= 10000

		top := shares[0]
		pony := 0
		if top.Share >= cfg.PonyThreshold {
			pony = 1
		}

		out[n.ID] = Risk{
			Repo:           n.ID,
			PonyFactor:     pony,
			HHI:            stats.Round(hhi, 1),
			Entropy:        stats.Round(entropy, 3),
			TopContributor: top.Contributor,
			TopShare:       stats.Round(top.Share, 3),
			Contributors:   len(edges),
			TotalCommits:   total,
			Tier:           ClassifyHHI(hhi, cfg),
			Shares:         shares,
		}
	}
	return out
}

// HHIValues extracts the HHI of every scored repository.
func HHIValues(risks map[string]Risk) map[string]float64 {
	out := make(map[string]float64, len(risks))
	for id, r := range risks {
		out[id] = r.HHI
	}
	return out
}
