package structure

import "github.com/pgatlas/pgatlas/pkg/graph"

// CoreNumbers returns the k-core number of every Repo and ExternalRepo.
// Isolated packages have core number 0.
//
// It uses the Batagelj-Zaversnik bucket algorithm, O(V+E): vertices are kept
// sorted by current degree and peeled lowest first; removing a vertex lowers
// each remaining neighbour of higher degree by one bucket.
func CoreNumbers(g *graph.Graph) map[string]int {
	u := buildUndirected(g)
	n := len(u.ids)
	out := make(map[string]int, n)
	if n == 0 {
		return out
	}

	deg := make([]int, n)
	maxDeg := 0
	for v := range n {
		deg[v] = len(u.adj[v])
		maxDeg = max(maxDeg, deg[v])
	}

	// bin[d] is the start of the degree-d block in vert.
	bin := make([]int, maxDeg+1)
	for _, d := range deg {
		bin[d]++
	}
	start := 0
	for d := range bin {
		count := bin[d]
		bin[d] = start
		start += count
	}

	vert := make([]int, n)
	pos := make([]int, n)
	for v := range n {
		pos[v] = bin[deg[v]]
		vert[pos[v]] = v
		bin[deg[v]]++
	}
	for d := maxDeg; d > 0; d-- {
		bin[d] = bin[d-1]
	}
	bin[0] = 0

	for i := range n {
		v := vert[i]
		for _, w := range u.adj[v] {
			if deg[w] <= deg[v] {
				continue
			}
			dw := deg[w]
			pw := pos[w]
			ps := bin[dw]
			s := vert[ps]
			if s != w {
				vert[pw], vert[ps] = s, w
				pos[s], pos[w] = pw, ps
			}
			bin[dw]++
			deg[w]--
		}
	}

	for v, id := range u.ids {
		out[id] = deg[v]
	}
	return out
}

// MaxCore returns the largest core number in cores, or 0 when empty.
func MaxCore(cores map[string]int) int {
	m := 0
	for _, k := range cores {
		m = max(m, k)
	}
	return m
}

// Core returns the ids whose core number is at least k.
func Core(cores map[string]int, k int) []string {
	var ids []string
	for id, c := range cores {
		if c >= k {
			ids = append(ids, id)
		}
	}
	return sortedStrings(ids)
}
