// Package gate implements the 2-of-3 metric gate.
//
// The gate evaluates three independent signals for a scored repository:
//
//   - criticality passes when its percentile is at or above the threshold
//   - concentration passes when its HHI is strictly below the threshold
//   - adoption passes when its composite percentile is at or above the threshold
//
// An entity passes when at least [config.Gate.Required] signals pass. A
// result with exactly the required number of passing signals is borderline
// and still passes.
//
// [Evaluate] and [EvaluateAll] return structured results only. Audit text is
// attached afterwards by an [Explainer] (see package narrative), which keeps
// the decision logic free of formatting.
package gate

import (
	"cmp"
	"slices"

	"github.com/pgatlas/pgatlas/pkg/config"
)

// Signal names.
const (
	SignalCriticality   = "criticality"
	SignalConcentration = "concentration"
	SignalAdoption      = "adoption"
)

// Input holds the scores of one entity.
type Input struct {
	ID             string
	Criticality    int     // raw active transitive dependents
	CriticalityPct float64 // exclusive percentile
	HHI            float64
	TopContributor string
	TopShare       float64
	Adoption       float64 // composite adoption percentile
}

// Signal is the verdict on one of the three gate signals.
type Signal struct {
	Name      string  `json:"name"`
	Raw       float64 `json:"raw_value"`
	Threshold float64 `json:"threshold"`
	Passed    bool    `json:"passed"`
	Narrative string  `json:"narrative,omitempty"`
}

// Result is the complete, auditable gate decision for one entity.
type Result struct {
	ID              string      `json:"id"`
	Passed          bool        `json:"passed"`
	Borderline      bool        `json:"borderline"`
	SignalsPassed   int         `json:"signals_passed"`
	SignalsRequired int         `json:"signals_required"`
	Criticality     Signal      `json:"criticality"`
	Concentration   Signal      `json:"concentration"`
	Adoption        Signal      `json:"adoption"`
	Thresholds      config.Gate `json:"thresholds"`
	Explanation     string      `json:"explanation,omitempty"`

	// Context carried for explanations.
	CriticalityRaw int     `json:"criticality_raw"`
	CriticalityPct float64 `json:"criticality_pct"`
	TopContributor string  `json:"top_contributor,omitempty"`
	TopShare       float64 `json:"top_contributor_share"`
}

// Signals returns the three signals in evaluation order.
func (r *Result) Signals() []*Signal {
	return []*Signal{&r.Criticality, &r.Concentration, &r.Adoption}
}

// Evaluate applies the gate to one entity.
func Evaluate(in Input, cfg config.Gate) Result {
	crit := Signal{
		Name:      SignalCriticality,
		Raw:       in.CriticalityPct,
		Threshold: cfg.CriticalityPercentile,
		Passed:    in.CriticalityPct >= cfg.CriticalityPercentile,
	}
	conc := Signal{
		Name:      SignalConcentration,
		Raw:       in.HHI,
		Threshold: cfg.HHIMax,
		Passed:    in.HHI < cfg.HHIMax,
	}
	adopt := Signal{
		Name:      SignalAdoption,
		Raw:       in.Adoption,
		Threshold: cfg.AdoptionPercentile,
		Passed:    in.Adoption >= cfg.AdoptionPercentile,
	}

	n := 0
	for _, s := range []Signal{crit, conc, adopt} {
		if s.Passed {
			n++
		}
	}

	return Result{
		ID:              in.ID,
		Passed:          n >= cfg.Required,
		Borderline:      n == cfg.Required,
		SignalsPassed:   n,
		SignalsRequired: cfg.Required,
		Criticality:     crit,
		Concentration:   conc,
		Adoption:        adopt,
		Thresholds:      cfg,
		CriticalityRaw:  in.Criticality,
		CriticalityPct:  in.CriticalityPct,
		TopContributor:  in.TopContributor,
		TopShare:        in.TopShare,
	}
}

// EvaluateAll applies the gate to every input and sorts the results:
// failures first by descending criticality percentile, then passes with
// borderline results ahead of confident ones, each by descending criticality
// percentile. Ties fall back to the entity id.
func EvaluateAll(inputs []Input, cfg config.Gate) []Result {
	results := make([]Result, len(inputs))
	for i, in := range inputs {
		results[i] = Evaluate(in, cfg)
	}
	slices.SortFunc(results, compareResults)
	return results
}

func compareResults(a, b Result) int {
	if c := cmp.Compare(rank(a), rank(b)); c != 0 {
		return c
	}
	if c := cmp.Compare(b.CriticalityPct, a.CriticalityPct); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func rank(r Result) int {
	switch {
	case !r.Passed:
		return 0
	case r.Borderline:
		return 1
	default:
		return 2
	}
}

// Find returns the result for id.
func Find(results []Result, id string) (Result, bool) {
	for _, r := range results {
		if r.ID == id {
			return r, true
		}
	}
	return Result{}, false
}
