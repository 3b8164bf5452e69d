package structure

import (
	"cmp"
	"slices"

	"github.com/pgatlas/pgatlas/pkg/graph"
)

// Bridge is an undirected dependency edge whose removal disconnects its
// endpoints. A is always the lexically smaller id.
type Bridge struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Phases of an explicit DFS frame. The walk is iterative so that long
// dependency chains cannot exhaust the goroutine stack.
const (
	phaseEnter = iota
	phaseScan
	phaseReturn
)

type frame struct {
	v      int
	parent int
	next   int // index into adj[v]
	child  int
	phase  int
}

// Bridges returns every bridge of the undirected dependency graph, sorted by
// (A, B). A cycle of any length contains none; a path over n packages
// contains n-1.
func Bridges(g *graph.Graph) []Bridge {
	u := buildUndirected(g)
	n := len(u.ids)

	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	timer := 0
	var out []Bridge

	stack := make([]frame, 0, 64)
	for root := range n {
		if disc[root] >= 0 {
			continue
		}
		stack = append(stack[:0], frame{v: root, parent: -1})

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			switch f.phase {
			case phaseEnter:
				disc[f.v] = timer
				low[f.v] = timer
				timer++
				f.phase = phaseScan

			case phaseScan:
				pushed := false
				for f.next < len(u.adj[f.v]) {
					w := u.adj[f.v][f.next]
					f.next++
					if w == f.parent {
						continue
					}
					if disc[w] < 0 {
						f.child = w
						f.phase = phaseReturn
						stack = append(stack, frame{v: w, parent: f.v})
						pushed = true
						break
					}
					low[f.v] = min(low[f.v], disc[w])
				}
				if !pushed {
					stack = stack[:len(stack)-1]
				}

			case phaseReturn:
				low[f.v] = min(low[f.v], low[f.child])
				if low[f.child] > disc[f.v] {
					out = append(out, makeBridge(u.ids[f.v], u.ids[f.child]))
				}
				f.phase = phaseScan
			}
		}
	}

	slices.SortFunc(out, func(x, y Bridge) int {
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})
	return out
}

func makeBridge(a, b string) Bridge {
	if b < a {
		a, b = b, a
	}
	return Bridge{A: a, B: b}
}

// BridgeSet indexes bridges by endpoint pair for membership tests.
func BridgeSet(bridges []Bridge) map[Bridge]bool {
	set := make(map[Bridge]bool, len(bridges))
	for _, b := range bridges {
		set[b] = true
	}
	return set
}

// IsBridge reports whether the undirected edge {a, b} is in set.
func IsBridge(set map[Bridge]bool, a, b string) bool {
	return set[makeBridge(a, b)]
}

func sortedStrings(ids []string) []string {
	slices.Sort(ids)
	return ids
}
