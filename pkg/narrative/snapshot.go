package narrative

import (
	"fmt"
	"math"
	"strings"

	"github.com/pgatlas/pgatlas/pkg/gate"
	"github.com/pgatlas/pgatlas/pkg/snapshot"
	"github.com/pgatlas/pgatlas/pkg/surface"
)

// GoverningAnswer answers whether funding tracks structural criticality,
// from the funding results, the debt surface size and the gate outcome.
func GoverningAnswer(funding []surface.FundingEntry, debtSize int, gs gate.Summary) string {
	var parts []string

	if len(funding) > 0 {
		under := 0
		for _, e := range funding {
			if e.Tier == surface.TierCriticallyUnderfunded || e.Tier == surface.TierUnderfunded {
				under++
			}
		}
		parts = append(parts, fmt.Sprintf(
			"Of %d tracked public goods %s, %d %s critically or underfunded relative to %s structural ecosystem importance.",
			len(funding), plural(len(funding), "project", "projects"),
			under, plural(under, "is", "are"), plural(under, "its", "their")))
	} else {
		parts = append(parts, "No funding efficiency data is available for this snapshot.")
	}

	if debtSize > 0 {
		parts = append(parts, fmt.Sprintf(
			"The Maintenance Debt Surface contains %d high-criticality %s with concentrated human capital and slowing activity, the highest-risk silent failures.",
			debtSize, plural(debtSize, "repository", "repositories")))
	} else {
		parts = append(parts, "No repository currently qualifies for the Maintenance Debt Surface.")
	}

	if gs.Total > 0 {
		parts = append(parts, fmt.Sprintf("The Metric Gate passes %.0f%% of projects (%d/%d) for expert review.",
			math.Round(gs.PassRate*100), gs.Passed, gs.Total))
	}
	return strings.Join(parts, " ")
}

// Comparison summarizes the direction between two snapshots.
func Comparison(c snapshot.Comparison) string {
	period := fmt.Sprintf("%s and %s", c.From, c.To)
	d := c.Deltas
	switch c.Trend {
	case snapshot.TrendImproving:
		return fmt.Sprintf("Between %s, structural health is improving: %d %s improved and %d degraded. "+
			"Pony factor rate changed by %+.1fpp; gate pass rate changed by %+.1fpp.",
			period, len(c.Improved), plural(len(c.Improved), "metric", "metrics"), len(c.Degraded),
			d.PonyFactorRate*100, d.GatePassRate*100)
	case snapshot.TrendDegrading:
		moved := "grew"
		if d.DebtSurface < 0 {
			moved = "shrank"
		}
		return fmt.Sprintf("Between %s, structural health is degrading: %d %s worsened and %d improved. "+
			"The Maintenance Debt Surface %s by %d %s. Immediate attention is recommended.",
			period, len(c.Degraded), plural(len(c.Degraded), "metric", "metrics"), len(c.Improved),
			moved, abs(d.DebtSurface), plural(abs(d.DebtSurface), "entry", "entries"))
	default:
		return fmt.Sprintf("Between %s, structural health is stable: %d %s improved and %d degraded, with no net directional change.",
			period, len(c.Improved), plural(len(c.Improved), "metric", "metrics"), len(c.Degraded))
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
