package active

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/graph/graphtest"
)

func fixture(t *testing.T) *graph.Graph {
	b := graphtest.New(t).
		Project("proj", 500).
		Repo("fresh", 10).
		Repo("edge", 90).
		Repo("stale", 91).
		Repo("unknown-repo", -1).
		External("ext-unknown", -1).
		External("ext-stale", 400).
		RepoWith("archived", graph.RepoAttrs{DaysSinceCommit: 2, Archived: true}).
		Owns("proj", "fresh", "edge", "stale", "unknown-repo", "archived").
		Depends("fresh", "edge", "stale", "ext-unknown", "ext-stale").
		Commits("alice", "fresh", 4).
		Commits("bob", "stale", 9)
	return b.Graph()
}

func TestKeep(t *testing.T) {
	g := fixture(t)
	tests := []struct {
		id   string
		want bool
	}{
		{"proj", true},
		{"fresh", true},
		{"edge", true},
		{"stale", false},
		{"unknown-repo", false},
		{"ext-unknown", true},
		{"ext-stale", false},
		{"archived", false},
		{"alice", true},
		{"bob", true},
	}
	for _, tt := range tests {
		n, _ := g.Node(tt.id)
		if got := Keep(n, 90); got != tt.want {
			t.Errorf("Keep(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestKeepArchived(t *testing.T) {
	tests := []struct {
		name string
		node graph.Node
		want bool
	}{
		{"archived repo, fresh", graph.NewRepo("r", graph.RepoAttrs{DaysSinceCommit: 1, Archived: true}), false},
		{"archived repo, unknown", graph.NewRepo("r", graph.RepoAttrs{DaysSinceCommit: graph.UnknownDays, Archived: true}), false},
		{"archived external, fresh", graph.NewExternalRepo("x", graph.RepoAttrs{DaysSinceCommit: 1, Archived: true}), false},
		{"archived external, unknown", graph.NewExternalRepo("x", graph.RepoAttrs{DaysSinceCommit: graph.UnknownDays, Archived: true}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Keep(&tt.node, 90); got != tt.want {
				t.Errorf("Keep() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProject(t *testing.T) {
	g := fixture(t)
	res := Project(g, Options{WindowDays: 90})

	wantPruned := []string{"archived", "ext-stale", "stale", "unknown-repo"}
	if !slices.Equal(res.Pruned, wantPruned) {
		t.Errorf("Pruned = %v, want %v", res.Pruned, wantPruned)
	}
	if res.Removed != 4 || res.Retained != g.NodeCount()-4 {
		t.Errorf("Retained/Removed = %d/%d, want %d/4", res.Retained, res.Removed, g.NodeCount()-4)
	}

	// Edges into pruned nodes disappear; the rest survive verbatim.
	if got := res.Graph.Dependencies("fresh"); !slices.Equal(got, []string{"edge", "ext-unknown"}) {
		t.Errorf("Dependencies(fresh) = %v, want [edge ext-unknown]", got)
	}
	if got := len(res.Graph.Contributions("stale")); got != 0 {
		t.Errorf("contributions to pruned repo = %d, want 0", got)
	}
	if !res.Graph.Has("bob") {
		t.Error("contributors are always retained")
	}
	if got := res.Graph.Owner("fresh"); got != "proj" {
		t.Errorf("Owner(fresh) = %q, want proj", got)
	}

	if g.NodeCount() != 10 {
		t.Errorf("input graph modified: NodeCount() = %d", g.NodeCount())
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	first := Project(fixture(t), Options{WindowDays: 90})
	second := Project(first.Graph, Options{WindowDays: 90})

	a, _ := graph.MarshalGraph(first.Graph)
	b, _ := graph.MarshalGraph(second.Graph)
	if !bytes.Equal(a, b) {
		t.Error("projecting a projected graph should be a no-op")
	}
	if second.Removed != 0 || len(second.Pruned) != 0 {
		t.Errorf("second projection removed %d nodes, want 0", second.Removed)
	}
}

func TestProjectWarnsOnUnknownType(t *testing.T) {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "org", Kind: graph.KindUnknown, RawType: "Organization"})

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})
	res := Project(g, Options{WindowDays: 90, Logger: logger})

	if !res.Graph.Has("org") {
		t.Error("unknown node types are retained")
	}
	if !strings.Contains(buf.String(), "org") {
		t.Errorf("expected warning mentioning org, got %q", buf.String())
	}
}

func TestProjectEmptyGraph(t *testing.T) {
	res := Project(graph.New(), Options{WindowDays: 90})
	if res.Graph.NodeCount() != 0 || res.Retained != 0 || res.Removed != 0 || res.Pruned != nil {
		t.Errorf("Project(empty) = %+v, want empty result", res)
	}
}
