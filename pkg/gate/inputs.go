package gate

import (
	"slices"

	"github.com/pgatlas/pgatlas/pkg/score"
)

// Scores bundles the per-node score maps the gate reads.
type Scores struct {
	Criticality    map[string]int
	CriticalityPct map[string]float64
	Concentration  map[string]score.Risk
	Adoption       map[string]float64
}

// Inputs joins the score maps into gate inputs, sorted by id. Only entities
// present in both the criticality and concentration maps are gated; a
// missing adoption score counts as zero.
func Inputs(s Scores) []Input {
	ids := make([]string, 0, len(s.Concentration))
	for id := range s.Concentration {
		if _, ok := s.Criticality[id]; ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	out := make([]Input, len(ids))
	for i, id := range ids {
		r := s.Concentration[id]
		out[i] = Input{
			ID:             id,
			Criticality:    s.Criticality[id],
			CriticalityPct: s.CriticalityPct[id],
			HHI:            r.HHI,
			TopContributor: r.TopContributor,
			TopShare:       r.TopShare,
			Adoption:       s.Adoption[id],
		}
	}
	return out
}
