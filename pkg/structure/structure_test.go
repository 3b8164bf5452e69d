package structure

import (
	"fmt"
	"slices"
	"testing"

	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/graph/graphtest"
)

func TestBridgesChain(t *testing.T) {
	g := graphtest.Chain(t, "a", "b", "c", "d")
	got := Bridges(g)
	want := []Bridge{{"a", "b"}, {"b", "c"}, {"c", "d"}}
	if !slices.Equal(got, want) {
		t.Errorf("Bridges = %v, want %v", got, want)
	}
}

func TestBridgesCycle(t *testing.T) {
	for _, n := range []int{2, 3, 5} {
		ids := []string{"a", "b", "c", "d", "e"}[:n]
		b := graphtest.New(t)
		for _, id := range ids {
			b.Repo(id, 1)
		}
		for i, id := range ids {
			b.Depends(id, ids[(i+1)%n])
		}
		got := Bridges(b.Graph())
		// Two nodes with opposite dependencies form one undirected edge.
		want := 0
		if n == 2 {
			want = 1
		}
		if len(got) != want {
			t.Errorf("cycle of %d: Bridges = %v, want %d", n, got, want)
		}
	}
}

func TestBridgesMixed(t *testing.T) {
	// triangle a-b-c with a tail c-d, plus isolated e and a self loop on d.
	g := graphtest.New(t).
		Repo("a", 1).Repo("b", 1).Repo("c", 1).Repo("d", 1).Repo("e", 1).
		Depends("a", "b").
		Depends("b", "c").
		Depends("c", "a").
		Depends("d", "c", "d").
		Graph()

	got := Bridges(g)
	want := []Bridge{{"c", "d"}}
	if !slices.Equal(got, want) {
		t.Errorf("Bridges = %v, want %v", got, want)
	}
}

func TestBridgesIgnoreNonDependencyEdges(t *testing.T) {
	g := graphtest.New(t).
		Project("p", 10).
		Repo("a", 1).Repo("b", 1).
		Owns("p", "a", "b").
		Commits("alice", "a", 3).
		Commits("alice", "b", 3).
		Graph()

	if got := Bridges(g); len(got) != 0 {
		t.Errorf("Bridges = %v, want none", got)
	}
	for id, k := range CoreNumbers(g) {
		if k != 0 {
			t.Errorf("CoreNumbers[%s] = %d, want 0", id, k)
		}
	}
}

func TestBridgesLongChain(t *testing.T) {
	const n = 20000
	g := graph.New()
	id := func(i int) string { return fmt.Sprintf("r%05d", i) }
	for i := range n {
		_ = g.AddNode(graph.NewRepo(id(i), graph.RepoAttrs{Active: true}))
	}
	for i := 0; i+1 < n; i++ {
		_ = g.AddEdge(graph.DependsOnEdge(id(i), id(i+1), graph.DependencyAttrs{}))
	}
	if got := len(Bridges(g)); got != n-1 {
		t.Errorf("len(Bridges) = %d, want %d", got, n-1)
	}
}

func TestCoreNumbers(t *testing.T) {
	// K4 on a,b,c,d; e hangs off a; f is isolated; x is external on e.
	g := graphtest.New(t).
		Repo("a", 1).Repo("b", 1).Repo("c", 1).Repo("d", 1).Repo("e", 1).Repo("f", 1).
		External("x", -1).
		Depends("a", "b", "c", "d").
		Depends("b", "c", "d").
		Depends("c", "d").
		Depends("e", "a", "x").
		Graph()

	got := CoreNumbers(g)
	want := map[string]int{"a": 3, "b": 3, "c": 3, "d": 3, "e": 1, "x": 1, "f": 0}
	for id, w := range want {
		if got[id] != w {
			t.Errorf("CoreNumbers[%s] = %d, want %d", id, got[id], w)
		}
	}
	if MaxCore(got) != 3 {
		t.Errorf("MaxCore = %d, want 3", MaxCore(got))
	}
	if core := Core(got, 3); !slices.Equal(core, []string{"a", "b", "c", "d"}) {
		t.Errorf("Core(3) = %v", core)
	}
}

func TestCoreNumbersMergesOppositeEdges(t *testing.T) {
	g := graphtest.New(t).
		Repo("a", 1).Repo("b", 1).
		Depends("a", "b").
		Depends("b", "a").
		Graph()

	got := CoreNumbers(g)
	if got["a"] != 1 || got["b"] != 1 {
		t.Errorf("CoreNumbers = %v, want a:1 b:1", got)
	}
}

func TestStructureEmpty(t *testing.T) {
	g := graph.New()
	if got := CoreNumbers(g); len(got) != 0 {
		t.Errorf("CoreNumbers(empty) = %v", got)
	}
	if got := Bridges(g); len(got) != 0 {
		t.Errorf("Bridges(empty) = %v", got)
	}
	if MaxCore(nil) != 0 {
		t.Error("MaxCore(nil) != 0")
	}
}

func TestIsBridge(t *testing.T) {
	set := BridgeSet([]Bridge{{"a", "b"}})
	if !IsBridge(set, "b", "a") {
		t.Error("IsBridge(b, a) = false, want true")
	}
	if IsBridge(set, "a", "c") {
		t.Error("IsBridge(a, c) = true, want false")
	}
}
