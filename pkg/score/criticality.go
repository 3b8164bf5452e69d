package score

import (
	"math"
	"slices"

	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/stats"
)

// Criticality returns the number of active transitive dependents of every
// Repo and ExternalRepo in g. Leaves and isolated packages score 0.
//
// Complexity is O(V·(V+E)) in the worst case; dependency graphs are sparse
// and most packages are leaves, so practical cost is far lower.
func Criticality(g *graph.Graph) map[string]int {
	w := newWalker(g)
	out := make(map[string]int)
	for _, n := range g.NodesOf(graph.KindRepo, graph.KindExternalRepo) {
		count := 0
		w.each(n.ID, func(dep *graph.Node) {
			if dep.IsActive() {
				count++
			}
		})
		out[n.ID] = count
	}
	return out
}

// DecayCriticality returns the recency-weighted criticality of every package:
// each active transitive dependent contributes exp(-days/halflifeDays).
// Dependents with unknown activity weigh as if committed today. Values are
// rounded to 3 decimal places. A non-positive halflife disables decay, so the
// result equals [Criticality].
func DecayCriticality(g *graph.Graph, halflifeDays float64) map[string]float64 {
	decay := halflifeDays > 0
	w := newWalker(g)
	out := make(map[string]float64)
	for _, n := range g.NodesOf(graph.KindRepo, graph.KindExternalRepo) {
		var sum float64
		w.each(n.ID, func(dep *graph.Node) {
			if !dep.IsActive() {
				return
			}
			if !decay {
				sum++
				return
			}
			days := 0.0
			if d := dep.DaysSinceCommit(); d.Known() {
				days = float64(d)
			}
			sum += math.Exp(-days / halflifeDays)
		})
		out[n.ID] = stats.Round(sum, 3)
	}
	return out
}

// ActiveDependents returns the sorted union of the active nodes that depend,
// directly or transitively, on any of ids. A source appears in the result
// only when it depends on another source.
func ActiveDependents(g *graph.Graph, ids ...string) []string {
	w := newWalker(g)
	set := make(map[string]struct{})
	for _, id := range ids {
		w.each(id, func(dep *graph.Node) {
			if dep.IsActive() {
				set[dep.ID] = struct{}{}
			}
		})
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// walker runs repeated reverse breadth-first searches over depends_on edges,
// reusing its visit marks between searches.
type walker struct {
	g     *graph.Graph
	seen  []int
	stamp int
	queue []graph.Handle
}

func newWalker(g *graph.Graph) *walker {
	return &walker{g: g, seen: make([]int, g.NodeCount())}
}

// each calls fn once for every node that transitively depends on id.
func (w *walker) each(id string, fn func(*graph.Node)) {
	src, ok := w.g.Handle(id)
	if !ok {
		return
	}
	w.stamp++
	w.seen[src] = w.stamp
	w.queue = append(w.queue[:0], src)

	for len(w.queue) > 0 {
		h := w.queue[0]
		w.queue = w.queue[1:]
		for _, p := range w.g.Predecessors(h, graph.DependsOn) {
			if w.seen[p] == w.stamp {
				continue
			}
			w.seen[p] = w.stamp
			fn(w.g.NodeAt(p))
			w.queue = append(w.queue, p)
		}
	}
}
