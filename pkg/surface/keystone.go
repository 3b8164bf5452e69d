package surface

import (
	"cmp"
	"slices"

	"github.com/pgatlas/pgatlas/pkg/score"
	"github.com/pgatlas/pgatlas/pkg/stats"
)

// KeystoneEntry is a contributor who is the flagged top contributor of one
// or more repositories.
type KeystoneEntry struct {
	Contributor     string         `json:"contributor"`
	DominantRepos   []string       `json:"dominant_repos"`
	RepoCriticality map[string]int `json:"repo_criticality_scores"`
	KCI             float64        `json:"kci_score"`
	KCIPercentile   float64        `json:"kci_percentile"`
	AtRisk          int            `json:"at_risk_downstream"`
	Projects        int            `json:"projects"`
	Narrative       string         `json:"narrative,omitempty"`
}

// Keystone computes the Keystone Contributor Index. For each contributor
// who is the pony-flagged top contributor of at least one repository, KCI is
// the sum of those repositories' criticality scores, and AtRisk is the size
// of the union of their active transitive dependents. The KCI percentile is
// ranked over every flagged contributor, including those with KCI 0, but
// only contributors with positive KCI are returned, highest first.
func Keystone(in Inputs) []KeystoneEntry {
	dominant := make(map[string][]string)
	for repo, r := range in.Concentration {
		if r.Flagged() {
			dominant[r.TopContributor] = append(dominant[r.TopContributor], repo)
		}
	}
	if len(dominant) == 0 {
		return nil
	}

	kci := make(map[string]float64, len(dominant))
	for c, repos := range dominant {
		sum := 0
		for _, repo := range repos {
			sum += in.Criticality[repo]
		}
		kci[c] = float64(sum)
	}
	pct := stats.ExclusivePercentiles(kci)

	var out []KeystoneEntry
	for c, repos := range dominant {
		if kci[c] == 0 {
			continue
		}
		slices.Sort(repos)

		perRepo := make(map[string]int, len(repos))
		projects := make(map[string]struct{})
		for _, repo := range repos {
			perRepo[repo] = in.Criticality[repo]
			if p := in.Graph.Owner(repo); p != "" {
				projects[p] = struct{}{}
			}
		}

		out = append(out, KeystoneEntry{
			Contributor:     c,
			DominantRepos:   repos,
			RepoCriticality: perRepo,
			KCI:             kci[c],
			KCIPercentile:   stats.Round(pct[c], 1),
			AtRisk:          len(score.ActiveDependents(in.Graph, repos...)),
			Projects:        len(projects),
		})
	}
	slices.SortFunc(out, func(a, b KeystoneEntry) int {
		if c := cmp.Compare(b.KCI, a.KCI); c != 0 {
			return c
		}
		return cmp.Compare(a.Contributor, b.Contributor)
	})
	return out
}
