package structure

import (
	"slices"

	"github.com/pgatlas/pgatlas/pkg/graph"
)

// undirected is the dependency-only simple graph shared by both analyses.
// Vertices are numbered 0..n-1 in sorted id order so that results are
// deterministic.
type undirected struct {
	ids []string
	adj [][]int
}

func buildUndirected(g *graph.Graph) *undirected {
	pkgs := g.NodesOf(graph.KindRepo, graph.KindExternalRepo)
	u := &undirected{ids: make([]string, len(pkgs))}
	for i, n := range pkgs {
		u.ids[i] = n.ID
	}
	slices.Sort(u.ids)

	pos := make(map[string]int, len(u.ids))
	for i, id := range u.ids {
		pos[id] = i
	}

	sets := make([]map[int]struct{}, len(u.ids))
	link := func(a, b int) {
		if sets[a] == nil {
			sets[a] = make(map[int]struct{})
		}
		sets[a][b] = struct{}{}
	}
	for _, e := range g.EdgesOf(graph.DependsOn) {
		a, okA := pos[e.From]
		b, okB := pos[e.To]
		if !okA || !okB || a == b {
			continue
		}
		link(a, b)
		link(b, a)
	}

	u.adj = make([][]int, len(u.ids))
	for v, set := range sets {
		nbrs := make([]int, 0, len(set))
		for w := range set {
			nbrs = append(nbrs, w)
		}
		slices.Sort(nbrs)
		u.adj[v] = nbrs
	}
	return u
}
