package narrative

import (
	"fmt"

	"github.com/pgatlas/pgatlas/pkg/surface"
)

// Debt describes why a repository is on the maintenance debt surface.
func Debt(e surface.DebtEntry) string {
	return fmt.Sprintf("%s is in the %s criticality percentile: %d %s on it. "+
		"Its primary maintainer (%s) accounts for %s of commits (HHI: %.0f, %s concentration). "+
		"Activity is %s: last commit was %d %s ago. This project is at elevated risk of silent failure.",
		e.Repo, Ordinal(e.CriticalityPct), e.Dependents, plural(e.Dependents, "package transitively depends", "packages transitively depend"),
		contributorName(e.TopContributor), Percent(e.TopShare), e.HHI, e.HHITier,
		e.Trend, e.DaysSince, plural(e.DaysSince, "day", "days"))
}

// Keystone describes the cascade risk of losing a contributor.
func Keystone(e surface.KeystoneEntry) string {
	repos := len(e.DominantRepos)
	return fmt.Sprintf("If %s became unavailable, %d %s across %d %s would lose their primary maintainer (KCI=%.1f). "+
		"These repos account for %d unique transitive downstream %s.",
		e.Contributor, repos, plural(repos, "package", "packages"),
		e.Projects, plural(e.Projects, "project", "projects"), e.KCI,
		e.AtRisk, plural(e.AtRisk, "dependency", "dependencies"))
}

// Funding names both percentiles and the ratio of a funding entry.
func Funding(e surface.FundingEntry) string {
	crit, fund := Ordinal(e.CriticalityPct), Ordinal(e.FundingPct)
	var fer float64
	if e.FER != nil {
		fer = *e.FER
	}
	switch e.Tier {
	case surface.TierUnfunded:
		return fmt.Sprintf("This project has received no funding to date. Its structural criticality (%s percentile) may warrant consideration.", crit)
	case surface.TierUndefined:
		return fmt.Sprintf("This project is in the %s criticality percentile and holds the lowest funding among funded projects (%s funding percentile), so its ratio is undefined.", crit, fund)
	case surface.TierCriticallyUnderfunded:
		return fmt.Sprintf("This project is in the %s criticality percentile but only the %s funding percentile (FER=%.2f): a critically underfunded load-bearing package.", crit, fund, fer)
	case surface.TierUnderfunded:
		return fmt.Sprintf("This project is in the %s criticality percentile but only the %s funding percentile (FER=%.2f): underfunded relative to its structural importance.", crit, fund, fer)
	case surface.TierBalanced:
		return fmt.Sprintf("Funding is well calibrated to structural importance (FER=%.2f). Criticality: %s percentile. Funding: %s percentile.", fer, crit, fund)
	case surface.TierOverfunded:
		return fmt.Sprintf("This project receives above-average funding (%s percentile) relative to its structural criticality (%s percentile, FER=%.2f).", fund, crit, fer)
	default:
		return fmt.Sprintf("This project receives significantly above-average funding (%s percentile) relative to its structural criticality (%s percentile, FER=%.2f). May warrant review.", fund, crit, fer)
	}
}

// FillDebt sets the narrative of every entry.
func FillDebt(entries []surface.DebtEntry) {
	for i := range entries {
		entries[i].Narrative = Debt(entries[i])
	}
}

// FillKeystone sets the narrative of every entry.
func FillKeystone(entries []surface.KeystoneEntry) {
	for i := range entries {
		entries[i].Narrative = Keystone(entries[i])
	}
}

// FillFunding sets the narrative of every entry.
func FillFunding(entries []surface.FundingEntry) {
	for i := range entries {
		entries[i].Narrative = Funding(entries[i])
	}
}
