package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.AddEdge] when an endpoint
	// has the wrong kind for the relation (for example a belongs_to edge whose
	// target is not a Project).
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrUnknownRelation is returned when an edge carries a relation outside
	// the three defined ones.
	ErrUnknownRelation = errors.New("unknown relation")

	// ErrKindMismatch is returned by [Merge] when a patch node redefines an
	// existing node with a different kind.
	ErrKindMismatch = errors.New("node kind mismatch")
)

// Handle is the arena index of a node. Handles are stable for the lifetime of
// a graph but are not preserved by [Graph.Induced], [Graph.Clone] or [Merge].
type Handle int

type edgeKey struct {
	from, to Handle
	rel      Relation
}

// Graph is the in-memory ecosystem graph.
//
// The zero value is not usable; use [New]. A Graph is not safe for
// concurrent mutation. Concurrent reads are safe as long as no goroutine
// calls AddNode, AddEdge or Annotate.
type Graph struct {
	nodes     []Node
	index     map[string]Handle
	edges     []Edge
	edgeIndex map[edgeKey]int
	out       [numRelations][][]int // relation -> node handle -> edge indices
	in        [numRelations][][]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index:     make(map[string]Handle),
		edgeIndex: make(map[edgeKey]int),
	}
}

// =============================================================================
// Construction
// =============================================================================

// AddNode adds a node. Missing variant attributes are filled with zero values
// (a Repo without attributes gets UnknownDays activity).
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.index[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	n.normalize()

	h := Handle(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.index[n.ID] = h
	for r := range numRelations {
		g.out[r] = append(g.out[r], nil)
		g.in[r] = append(g.in[r], nil)
	}
	return nil
}

// AddEdge adds a typed edge between two existing nodes, or replaces the
// attributes of an existing edge with the same endpoints and relation.
func (g *Graph) AddEdge(e Edge) error {
	if int(e.Relation) >= numRelations {
		return fmt.Errorf("%w: %d", ErrUnknownRelation, e.Relation)
	}
	from, ok := g.index[e.From]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.From)
	}
	to, ok := g.index[e.To]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.To)
	}
	if err := checkEndpoints(e.Relation, g.nodes[from].Kind, g.nodes[to].Kind); err != nil {
		return fmt.Errorf("%s %s -> %s: %w", e.Relation, e.From, e.To, err)
	}
	e.normalize()

	key := edgeKey{from: from, to: to, rel: e.Relation}
	if i, exists := g.edgeIndex[key]; exists {
		g.edges[i] = e
		return nil
	}

	i := len(g.edges)
	g.edges = append(g.edges, e)
	g.edgeIndex[key] = i
	g.out[e.Relation][from] = append(g.out[e.Relation][from], i)
	g.in[e.Relation][to] = append(g.in[e.Relation][to], i)
	return nil
}

func checkEndpoints(rel Relation, from, to Kind) error {
	var ok bool
	switch rel {
	case BelongsTo:
		ok = from == KindRepo && to == KindProject
	case DependsOn:
		ok = from.IsPackage() && to.IsPackage()
	case ContributedTo:
		ok = from == KindContributor && to == KindRepo
	}
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidEdgeEndpoint, from, to)
	}
	return nil
}

// Annotate stores an advisory value on a node. It reports whether the node exists.
// Annotate must not be called concurrently with any other method.
func (g *Graph) Annotate(id, key string, value float64) bool {
	h, ok := g.index[id]
	if !ok {
		return false
	}
	n := &g.nodes[h]
	if n.Annotations == nil {
		n.Annotations = make(map[string]float64)
	}
	n.Annotations[key] = value
	return true
}

// =============================================================================
// Node Queries
// =============================================================================

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges across all relations.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Has reports whether a node with the given ID exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Handle returns the arena handle of a node.
func (g *Graph) Handle(id string) (Handle, bool) {
	h, ok := g.index[id]
	return h, ok
}

// Node returns the node with the given ID. The returned pointer aliases graph
// storage and must be treated as read-only.
func (g *Graph) Node(id string) (*Node, bool) {
	h, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.nodes[h], true
}

// NodeAt returns the node stored at handle h.
func (g *Graph) NodeAt(h Handle) *Node { return &g.nodes[h] }

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	for i := range g.nodes {
		out[i] = &g.nodes[i]
	}
	return out
}

// NodesOf returns the nodes of the given kinds in insertion order.
func (g *Graph) NodesOf(kinds ...Kind) []*Node {
	var out []*Node
	for i := range g.nodes {
		for _, k := range kinds {
			if g.nodes[i].Kind == k {
				out = append(out, &g.nodes[i])
				break
			}
		}
	}
	return out
}

// CountKind returns the number of nodes of kind k.
func (g *Graph) CountKind(k Kind) int {
	n := 0
	for i := range g.nodes {
		if g.nodes[i].Kind == k {
			n++
		}
	}
	return n
}

// =============================================================================
// Edge Queries
// =============================================================================

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// EdgesOf returns the edges of one relation in insertion order.
func (g *Graph) EdgesOf(rel Relation) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Relation == rel {
			out = append(out, e)
		}
	}
	return out
}

// CountRelation returns the number of edges of relation rel.
func (g *Graph) CountRelation(rel Relation) int {
	n := 0
	for _, e := range g.edges {
		if e.Relation == rel {
			n++
		}
	}
	return n
}

// Out returns the outgoing edges of id for one relation.
func (g *Graph) Out(id string, rel Relation) []Edge {
	h, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.collect(g.out[rel][h])
}

// In returns the incoming edges of id for one relation.
func (g *Graph) In(id string, rel Relation) []Edge {
	h, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.collect(g.in[rel][h])
}

func (g *Graph) collect(idx []int) []Edge {
	if len(idx) == 0 {
		return nil
	}
	out := make([]Edge, len(idx))
	for i, ei := range idx {
		out[i] = g.edges[ei]
	}
	return out
}

// Successors returns the handles reached by outgoing edges of h for one relation.
func (g *Graph) Successors(h Handle, rel Relation) []Handle {
	idx := g.out[rel][h]
	out := make([]Handle, len(idx))
	for i, ei := range idx {
		out[i] = g.index[g.edges[ei].To]
	}
	return out
}

// Predecessors returns the handles with an edge of relation rel into h.
func (g *Graph) Predecessors(h Handle, rel Relation) []Handle {
	idx := g.in[rel][h]
	out := make([]Handle, len(idx))
	for i, ei := range idx {
		out[i] = g.index[g.edges[ei].From]
	}
	return out
}

// Dependencies returns the IDs that id depends on directly.
func (g *Graph) Dependencies(id string) []string {
	return endpoints(g.Out(id, DependsOn), func(e Edge) string { return e.To })
}

// Dependents returns the IDs that depend on id directly.
func (g *Graph) Dependents(id string) []string {
	return endpoints(g.In(id, DependsOn), func(e Edge) string { return e.From })
}

// Contributions returns the contributed_to edges into a repo.
func (g *Graph) Contributions(repo string) []Edge {
	return g.In(repo, ContributedTo)
}

// Owner returns the Project a repo belongs to, or "" if it has none.
func (g *Graph) Owner(repo string) string {
	edges := g.Out(repo, BelongsTo)
	if len(edges) == 0 {
		return ""
	}
	return edges[0].To
}

func endpoints(edges []Edge, pick func(Edge) string) []string {
	if len(edges) == 0 {
		return nil
	}
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = pick(e)
	}
	return out
}

// =============================================================================
// Derived Graphs
// =============================================================================

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	return g.Induced(func(*Node) bool { return true })
}

// Induced returns the subgraph over the nodes for which keep returns true.
// Every edge whose endpoints are both kept is copied with its attributes.
// Node and edge order is preserved.
func (g *Graph) Induced(keep func(*Node) bool) *Graph {
	out := New()
	kept := make([]bool, len(g.nodes))
	for i := range g.nodes {
		if keep(&g.nodes[i]) {
			kept[i] = true
			_ = out.AddNode(g.nodes[i].clone())
		}
	}
	for _, e := range g.edges {
		if kept[g.index[e.From]] && kept[g.index[e.To]] {
			_ = out.AddEdge(e.clone())
		}
	}
	return out
}
