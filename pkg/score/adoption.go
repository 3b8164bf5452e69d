package score

import (
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/stats"
)

// AdoptionScore holds the raw adoption signals of one package, their
// inclusive percentile ranks, and the composite score (their mean).
type AdoptionScore struct {
	ID           string  `json:"id"`
	Stars        int64   `json:"stars"`
	Forks        int64   `json:"forks"`
	Downloads    int64   `json:"downloads"`
	StarsPct     float64 `json:"stars_pct"`
	ForksPct     float64 `json:"forks_pct"`
	DownloadsPct float64 `json:"downloads_pct"`
	Score        float64 `json:"adoption_score"`
}

// Adoption scores every Repo and ExternalRepo in g. Each signal is ranked
// independently across all scored packages; the composite is the unweighted
// mean of the three ranks. Missing counters are zero.
func Adoption(g *graph.Graph) map[string]AdoptionScore {
	nodes := g.NodesOf(graph.KindRepo, graph.KindExternalRepo)
	out := make(map[string]AdoptionScore, len(nodes))
	if len(nodes) == 0 {
		return out
	}

	stars := make(map[string]int64, len(nodes))
	forks := make(map[string]int64, len(nodes))
	downloads := make(map[string]int64, len(nodes))
	for _, n := range nodes {
		stars[n.ID] = n.Repo.Stars
		forks[n.ID] = n.Repo.Forks
		downloads[n.ID] = n.Repo.Downloads
	}

	starsPct := stats.InclusivePercentiles(stars)
	forksPct := stats.InclusivePercentiles(forks)
	downloadsPct := stats.InclusivePercentiles(downloads)

	for _, n := range nodes {
		id := n.ID
		out[id] = AdoptionScore{
			ID:           id,
			Stars:        stars[id],
			Forks:        forks[id],
			Downloads:    downloads[id],
			StarsPct:     starsPct[id],
			ForksPct:     forksPct[id],
			DownloadsPct: downloadsPct[id],
			Score:        (starsPct[id] + forksPct[id] + downloadsPct[id]) / 3,
		}
	}
	return out
}

// AdoptionValues extracts the composite score of every package.
func AdoptionValues(scores map[string]AdoptionScore) map[string]float64 {
	out := make(map[string]float64, len(scores))
	for id, s := range scores {
		out[id] = s.Score
	}
	return out
}
