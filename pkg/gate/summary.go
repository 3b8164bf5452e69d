package gate

// Summary is the distribution of a batch of gate results.
type Summary struct {
	Total            int              `json:"total"`
	Passed           int              `json:"passed"`
	Failed           int              `json:"failed"`
	Borderline       int              `json:"borderline"`
	PassRate         float64          `json:"pass_rate"`
	SignalPassRates  SignalRates      `json:"signal_pass_rates"`
	FailureBreakdown FailureBreakdown `json:"failure_breakdown"`
}

// SignalRates holds the share of entities passing each signal.
type SignalRates struct {
	Criticality   float64 `json:"criticality"`
	Concentration float64 `json:"concentration"`
	Adoption      float64 `json:"adoption"`
}

// FailureBreakdown counts failing entities by which signals failed.
// AllThreeFailed counts every result, the others count failing results only.
type FailureBreakdown struct {
	AllThreeFailed          int `json:"all_three_failed"`
	CriticalityOnlyFailed   int `json:"criticality_only_failed"`
	ConcentrationOnlyFailed int `json:"concentration_only_failed"`
	AdoptionOnlyFailed      int `json:"adoption_only_failed"`
	TwoFailed               int `json:"two_failed"`
}

// Summarize computes pass rates and a failure breakdown. An empty batch
// yields a zero Summary.
func Summarize(results []Result) Summary {
	var s Summary
	if len(results) == 0 {
		return s
	}
	s.Total = len(results)

	var crit, conc, adopt int
	for _, r := range results {
		if r.Passed {
			s.Passed++
		}
		if r.Borderline {
			s.Borderline++
		}
		if r.Criticality.Passed {
			crit++
		}
		if r.Concentration.Passed {
			conc++
		}
		if r.Adoption.Passed {
			adopt++
		}

		failed := 3 - r.SignalsPassed
		if failed == 3 {
			s.FailureBreakdown.AllThreeFailed++
		}
		if r.Passed {
			continue
		}
		switch {
		case failed == 2:
			s.FailureBreakdown.TwoFailed++
		case failed == 1 && !r.Criticality.Passed:
			s.FailureBreakdown.CriticalityOnlyFailed++
		case failed == 1 && !r.Concentration.Passed:
			s.FailureBreakdown.ConcentrationOnlyFailed++
		case failed == 1 && !r.Adoption.Passed:
			s.FailureBreakdown.AdoptionOnlyFailed++
		}
	}

	n := float64(s.Total)
	s.Failed = s.Total - s.Passed
	s.PassRate = float64(s.Passed) / n
	s.SignalPassRates = SignalRates{
		Criticality:   float64(crit) / n,
		Concentration: float64(conc) / n,
		Adoption:      float64(adopt) / n,
	}
	return s
}
