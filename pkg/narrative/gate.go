package narrative

import (
	"fmt"
	"strings"

	"github.com/pgatlas/pgatlas/pkg/config"
	"github.com/pgatlas/pgatlas/pkg/gate"
	"github.com/pgatlas/pgatlas/pkg/score"
)

// Gate explains gate decisions. Tiers labels the HHI of failing
// concentration signals.
type Gate struct {
	Tiers config.Concentration
}

var _ gate.Explainer = Gate{}

// Signal names the raw value, the threshold and the verdict of one signal.
func (x Gate) Signal(r gate.Result, s gate.Signal) string {
	switch s.Name {
	case gate.SignalCriticality:
		if s.Passed {
			return fmt.Sprintf("Criticality: %d transitive active dependents (%s percentile), at or above the %s percentile gate threshold. %s",
				r.CriticalityRaw, Ordinal(s.Raw), Ordinal(s.Threshold), verdict(true))
		}
		return fmt.Sprintf("Criticality: %d transitive active dependents (%s percentile), below the %s percentile gate threshold. This package has limited downstream impact in the current active graph. %s",
			r.CriticalityRaw, Ordinal(s.Raw), Ordinal(s.Threshold), verdict(false))

	case gate.SignalConcentration:
		if s.Passed {
			return fmt.Sprintf("Maintenance Health: HHI = %.0f, below the %.0f concentration threshold. Commit distribution is sufficiently diversified. %s",
				s.Raw, s.Threshold, verdict(true))
		}
		return fmt.Sprintf("Maintenance Health: %s accounts for %s of commits (HHI: %.0f, %s concentration). HHI is at or above the %.0f gate threshold. Single-contributor failure risk is elevated. %s",
			contributorName(r.TopContributor), Percent(r.TopShare), s.Raw, score.ClassifyHHI(s.Raw, x.Tiers), s.Threshold, verdict(false))

	case gate.SignalAdoption:
		if s.Passed {
			return fmt.Sprintf("Adoption: %s percentile on combined download/star/fork signals, at or above the %s percentile gate threshold. %s",
				Ordinal(s.Raw), Ordinal(s.Threshold), verdict(true))
		}
		return fmt.Sprintf("Adoption: %s percentile on combined download/star/fork signals, below the %s percentile gate threshold. Limited ecosystem uptake in current data. %s",
			Ordinal(s.Raw), Ordinal(s.Threshold), verdict(false))
	}
	return fmt.Sprintf("%s: %.2f against %.2f. %s", s.Name, s.Raw, s.Threshold, verdict(s.Passed))
}

// Explanation assembles the audit block for r.
func (Gate) Explanation(r gate.Result) string {
	result := "FAIL"
	if r.Passed {
		result = "PASS"
	}
	lines := []string{
		"PG Atlas Metric Gate: " + r.ID,
		"",
		fmt.Sprintf("Result: %s (%d of 3 signals passed, %d required)", result, r.SignalsPassed, r.SignalsRequired),
		"",
	}
	for _, s := range r.Signals() {
		lines = append(lines, s.Narrative)
	}
	if r.Passed && r.Borderline {
		lines = append(lines, "", "This result is borderline and is recommended for human review.")
	}
	return strings.Join(lines, "\n")
}

func contributorName(id string) string {
	if id == "" {
		return "an unknown contributor"
	}
	return id
}
