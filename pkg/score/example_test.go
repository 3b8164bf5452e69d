package score_test

import (
	"fmt"

	"github.com/pgatlas/pgatlas/pkg/config"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/score"
)

func ExampleCriticality() {
	g := graph.New()
	for _, id := range []string{"app", "framework", "core"} {
		_ = g.AddNode(graph.NewRepo(id, graph.RepoAttrs{Active: true, DaysSinceCommit: 1}))
	}
	_ = g.AddEdge(graph.DependsOnEdge("app", "framework", graph.DependencyAttrs{}))
	_ = g.AddEdge(graph.DependsOnEdge("framework", "core", graph.DependencyAttrs{}))

	crit := score.Criticality(g)
	fmt.Println(crit["app"], crit["framework"], crit["core"])
	// Output: 0 1 2
}

func ExampleConcentrationRisk() {
	g := graph.New()
	_ = g.AddNode(graph.NewRepo("sdk", graph.RepoAttrs{Active: true, DaysSinceCommit: 5}))
	_ = g.AddNode(graph.NewContributor("alice", graph.ContributorAttrs{Active: true}))
	_ = g.AddNode(graph.NewContributor("bob", graph.ContributorAttrs{Active: true}))
	_ = g.AddEdge(graph.ContributedToEdge("alice", "sdk", graph.ContributionAttrs{Commits: 80}))
	_ = g.AddEdge(graph.ContributedToEdge("bob", "sdk", graph.ContributionAttrs{Commits: 20}))

	r := score.ConcentrationRisk(g, config.Default().Concentration)["sdk"]
	fmt.Println(r.PonyFactor, r.HHI, r.Tier)
	// Output: 1 6800 critical
}
