package surface

import (
	"slices"
	"testing"

	"github.com/pgatlas/pgatlas/pkg/config"
	"github.com/pgatlas/pgatlas/pkg/graph/graphtest"
	"github.com/pgatlas/pgatlas/pkg/score"
)

func keystoneFixture(t *testing.T) Inputs {
	g := graphtest.New(t).
		Project("p", 10).Project("q", 10).
		Repo("a", 1).Repo("b", 1).Repo("c", 1).Repo("s", 1).Repo("d", 1).
		Owns("p", "a").
		Owns("q", "b").
		Depends("s", "a", "b").
		Depends("d", "a").
		Commits("alice", "a", 9).
		Commits("alice", "b", 9).
		Commits("bob", "c", 9).
		Commits("carol", "s", 4).
		Commits("dave", "s", 3).
		Commits("erin", "s", 3).
		Graph()

	return Inputs{
		Graph:         g,
		Criticality:   score.Criticality(g),
		Concentration: score.ConcentrationRisk(g, config.Default().Concentration),
	}
}

func TestKeystone(t *testing.T) {
	got := Keystone(keystoneFixture(t))
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (bob has KCI 0): %+v", len(got), got)
	}
	e := got[0]
	if e.Contributor != "alice" {
		t.Errorf("Contributor = %s, want alice", e.Contributor)
	}
	if !slices.Equal(e.DominantRepos, []string{"a", "b"}) {
		t.Errorf("DominantRepos = %v", e.DominantRepos)
	}
	if e.KCI != 3 {
		t.Errorf("KCI = %v, want 3", e.KCI)
	}
	// s depends on both a and b and is counted once.
	if e.AtRisk != 2 {
		t.Errorf("AtRisk = %d, want 2", e.AtRisk)
	}
	if e.Projects != 2 {
		t.Errorf("Projects = %d, want 2", e.Projects)
	}
	if e.KCIPercentile != 50 {
		t.Errorf("KCIPercentile = %v, want 50", e.KCIPercentile)
	}
	if e.RepoCriticality["a"] != 2 || e.RepoCriticality["b"] != 1 {
		t.Errorf("RepoCriticality = %v", e.RepoCriticality)
	}
}

func TestKeystoneEmpty(t *testing.T) {
	g := graphtest.New(t).Repo("a", 1).Graph()
	in := Inputs{Graph: g, Criticality: map[string]int{"a": 0}, Concentration: map[string]score.Risk{}}
	if got := Keystone(in); len(got) != 0 {
		t.Errorf("Keystone = %+v, want empty", got)
	}
}
