// Package graphtest provides a fluent builder for ecosystem graphs in tests.
//
// Every builder method fails the test immediately on a structural error, so
// fixtures stay one line per fact:
//
//	g := graphtest.New(t).
//		Project("p", 1000).
//		Repo("a", 3).Repo("b", 10).
//		Owns("p", "a", "b").
//		Depends("a", "b").
//		Commits("alice", "b", 80).
//		Graph()
package graphtest

import (
	"testing"

	"github.com/pgatlas/pgatlas/pkg/graph"
)

// Window is the activity window the builder uses to derive active flags.
const Window = 90

// Builder accumulates nodes and edges into a graph.
type Builder struct {
	t testing.TB
	g *graph.Graph
}

// New starts an empty graph.
func New(t testing.TB) *Builder {
	t.Helper()
	return &Builder{t: t, g: graph.New()}
}

func (b *Builder) node(n graph.Node) *Builder {
	b.t.Helper()
	if b.g.Has(n.ID) {
		return b
	}
	if err := b.g.AddNode(n); err != nil {
		b.t.Fatalf("graphtest: add node %s: %v", n.ID, err)
	}
	return b
}

func (b *Builder) edge(e graph.Edge) *Builder {
	b.t.Helper()
	if err := b.g.AddEdge(e); err != nil {
		b.t.Fatalf("graphtest: add edge %s -> %s: %v", e.From, e.To, err)
	}
	return b
}

// Project adds a Project with the given funding.
func (b *Builder) Project(id string, funding float64) *Builder {
	b.t.Helper()
	return b.node(graph.NewProject(id, graph.ProjectAttrs{Funding: funding}))
}

// Repo adds a Repo last committed days ago; a negative value means unknown.
// The active flag follows [Window].
func (b *Builder) Repo(id string, days int) *Builder {
	b.t.Helper()
	return b.node(graph.NewRepo(id, attrs(days)))
}

// External adds an ExternalRepo last committed days ago; negative means unknown.
func (b *Builder) External(id string, days int) *Builder {
	b.t.Helper()
	return b.node(graph.NewExternalRepo(id, attrs(days)))
}

// RepoWith adds a Repo with explicit attributes.
func (b *Builder) RepoWith(id string, a graph.RepoAttrs) *Builder {
	b.t.Helper()
	return b.node(graph.NewRepo(id, a))
}

// Contributor adds an active Contributor.
func (b *Builder) Contributor(id string) *Builder {
	b.t.Helper()
	return b.node(graph.NewContributor(id, graph.ContributorAttrs{DisplayName: id, Active: true}))
}

// Owns links each repo to project with a belongs_to edge.
func (b *Builder) Owns(project string, repos ...string) *Builder {
	b.t.Helper()
	for _, r := range repos {
		b.edge(graph.BelongsToEdge(r, project))
	}
	return b
}

// Depends adds from → to dependency edges.
func (b *Builder) Depends(from string, to ...string) *Builder {
	b.t.Helper()
	for _, dst := range to {
		b.edge(graph.DependsOnEdge(from, dst, graph.DependencyAttrs{Confidence: graph.ConfidenceDirect}))
	}
	return b
}

// Commits records n commits by contributor to repo, creating the contributor
// if needed.
func (b *Builder) Commits(contributor, repo string, n int) *Builder {
	b.t.Helper()
	b.Contributor(contributor)
	return b.edge(graph.ContributedToEdge(contributor, repo, graph.ContributionAttrs{Commits: n}))
}

// Graph returns the built graph.
func (b *Builder) Graph() *graph.Graph { return b.g }

// Chain returns active repos ids[0] → ids[1] → ... where each depends on the next.
func Chain(t testing.TB, ids ...string) *graph.Graph {
	t.Helper()
	b := New(t)
	for _, id := range ids {
		b.Repo(id, 1)
	}
	for i := 0; i+1 < len(ids); i++ {
		b.Depends(ids[i], ids[i+1])
	}
	return b.Graph()
}

func attrs(days int) graph.RepoAttrs {
	d := graph.DaysOf(days)
	return graph.RepoAttrs{
		DaysSinceCommit: d,
		Active:          d.Known() && days <= Window,
	}
}
