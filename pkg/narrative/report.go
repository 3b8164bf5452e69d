package narrative

import (
	"fmt"
	"strings"

	"github.com/pgatlas/pgatlas/pkg/snapshot"
)

// ComparisonReport renders a Markdown round-over-round report.
func ComparisonReport(c snapshot.Comparison, a, b *snapshot.Snapshot) string {
	var sb strings.Builder
	w := func(format string, args ...any) { fmt.Fprintf(&sb, format+"\n", args...) }

	w("# PG Atlas Round-over-Round Comparison")
	w("")
	w("**%s → %s**", c.From, c.To)
	w("")
	w("## Summary")
	w("")
	w("%s", Comparison(c))
	w("")
	w("## Key Metric Deltas")
	w("")
	w("| Metric | %s | %s | Delta | Direction |", c.From, c.To)
	w("|--------|----|----|-------|-----------|")
	w("| Gate Pass Rate | %.1f%% | %.1f%% | %+.1fpp | %s |", a.GatePassRate*100, b.GatePassRate*100, c.Deltas.GatePassRate*100, direction(c.Deltas.GatePassRate, false))
	w("| Mean HHI | %.0f | %.0f | %+.0f | %s |", a.MeanHHI, b.MeanHHI, c.Deltas.MeanHHI, direction(c.Deltas.MeanHHI, true))
	w("| Pony Factor Rate | %.1f%% | %.1f%% | %+.1fpp | %s |", a.PonyFactorRate*100, b.PonyFactorRate*100, c.Deltas.PonyFactorRate*100, direction(c.Deltas.PonyFactorRate, true))
	w("| Debt Surface | %d | %d | %+d | %s |", a.DebtSurface, b.DebtSurface, c.Deltas.DebtSurface, direction(float64(c.Deltas.DebtSurface), true))
	w("| Keystone Contributors | %d | %d | %+d | %s |", a.Keystones, b.Keystones, c.Deltas.Keystones, direction(float64(c.Deltas.Keystones), true))
	w("| Active Repos | %d | %d | %+d | -- |", a.ActiveRepos, b.ActiveRepos, c.Informational.ActiveRepos)
	w("| Bridge Edges | %d | %d | %+d | -- |", a.BridgeCount, b.BridgeCount, c.Informational.Bridges)
	w("")

	for _, s := range []*snapshot.Snapshot{a, b} {
		w("## Top Critical Packages: %s", s.Label())
		w("")
		if len(s.TopCritical) == 0 {
			w("_No critical packages recorded._")
			w("")
			continue
		}
		w("| Package | Dependents | Percentile | Ecosystem |")
		w("|---------|------------|------------|-----------|")
		for _, p := range s.TopCritical {
			w("| %s | %d | %s | %s |", p.ID, p.Criticality, Ordinal(p.Percentile), p.Ecosystem)
		}
		w("")
	}
	return sb.String()
}

func direction(delta float64, lowerIsBetter bool) string {
	switch {
	case delta == 0:
		return "--"
	case (delta < 0) == lowerIsBetter:
		return "improving"
	default:
		return "worsening"
	}
}
