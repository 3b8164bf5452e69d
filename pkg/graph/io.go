package graph

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	pgerrors "github.com/pgatlas/pgatlas/pkg/errors"
)

// =============================================================================
// Wire Format
// =============================================================================

// File is the canonical JSON form of a graph.
type File struct {
	Nodes []FileNode `json:"nodes"`
	Edges []FileEdge `json:"edges"`
}

// FileNode is the flat JSON form of a node. Only the fields of the node's
// kind are populated.
type FileNode struct {
	ID       string `json:"id"`
	NodeType string `json:"node_type"`

	// Project
	Title             string  `json:"title,omitempty"`
	Category          string  `json:"category,omitempty"`
	Funding           float64 `json:"funding,omitempty"`
	IntegrationStatus string  `json:"integration_status,omitempty"`
	Description       string  `json:"description,omitempty"`

	// Repo and ExternalRepo
	Ecosystem       string `json:"ecosystem,omitempty"`
	Active          bool   `json:"active,omitempty"`
	DaysSinceCommit *int   `json:"days_since_commit,omitempty"`
	Stars           int64  `json:"stars,omitempty"`
	Forks           int64  `json:"forks,omitempty"`
	Downloads       int64  `json:"downloads,omitempty"`
	Archived        bool   `json:"archived,omitempty"`

	// Contributor
	DisplayName string `json:"display_name,omitempty"`

	Annotations map[string]float64 `json:"annotations,omitempty"`
}

// FileEdge is the flat JSON form of an edge.
type FileEdge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	EdgeType string `json:"edge_type"`

	// depends_on
	Ecosystem  string `json:"ecosystem,omitempty"`
	Confidence string `json:"confidence,omitempty"`

	// contributed_to
	Commits     int        `json:"commits,omitempty"`
	FirstCommit *time.Time `json:"first_commit,omitempty"`
	LastCommit  *time.Time `json:"last_commit,omitempty"`
}

// PatchFile is the JSON form of a [Patch].
type PatchFile struct {
	Nodes    []FileNode              `json:"nodes,omitempty"`
	Edges    []FileEdge              `json:"edges,omitempty"`
	Adoption map[string]FileAdoption `json:"adoption,omitempty"`
	Activity map[string]FileActivity `json:"activity,omitempty"`
}

// FileAdoption is the JSON form of an [Adoption] record.
type FileAdoption struct {
	Stars     int64 `json:"stars"`
	Forks     int64 `json:"forks"`
	Downloads int64 `json:"downloads"`
}

// FileActivity is the JSON form of an [Activity] record. A missing
// days_since_commit means unknown.
type FileActivity struct {
	DaysSinceCommit *int `json:"days_since_commit"`
	Archived        bool `json:"archived,omitempty"`
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalGraph converts a graph to JSON bytes.
// Nodes are sorted by ID and edges by (from, to, relation) for deterministic output.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a graph to a JSON file.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// WriteGraph writes a graph as indented JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToFile(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraphFile reads a JSON graph file.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pgerrors.Wrap(pgerrors.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// ReadGraph decodes a JSON graph from r. Structural violations (duplicate
// ids, edges with unknown endpoints or wrong endpoint kinds) are reported
// with [pgerrors.ErrCodeInvalidGraph].
func ReadGraph(r io.Reader) (*Graph, error) {
	var data File
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeInvalidGraph, err, "decode graph")
	}
	return FromFile(data)
}

// ReadPatchFile reads a JSON patch file.
func ReadPatchFile(path string) (Patch, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Patch{}, pgerrors.Wrap(pgerrors.ErrCodeFileNotFound, err, "patch file %s", path)
		}
		return Patch{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadPatch(f)
}

// ReadPatch decodes a JSON patch from r.
func ReadPatch(r io.Reader) (Patch, error) {
	var data PatchFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return Patch{}, pgerrors.Wrap(pgerrors.ErrCodeInvalidGraph, err, "decode patch")
	}
	return FromPatchFile(data)
}

// =============================================================================
// Conversion
// =============================================================================

// ToFile converts a graph to its wire form.
func ToFile(g *Graph) File {
	out := File{
		Nodes: make([]FileNode, 0, g.NodeCount()),
		Edges: make([]FileEdge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, toFileNode(n))
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, toFileEdge(e))
	}
	slices.SortFunc(out.Nodes, func(a, b FileNode) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(out.Edges, func(a, b FileEdge) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To), cmp.Compare(a.EdgeType, b.EdgeType))
	})
	return out
}

// FromFile builds a graph from its wire form.
func FromFile(f File) (*Graph, error) {
	g := New()
	for _, fn := range f.Nodes {
		if err := g.AddNode(fromFileNode(fn)); err != nil {
			return nil, pgerrors.Wrap(pgerrors.ErrCodeInvalidGraph, err, "node %q", fn.ID)
		}
	}
	for _, fe := range f.Edges {
		e, err := fromFileEdge(fe)
		if err != nil {
			return nil, pgerrors.Wrap(pgerrors.ErrCodeInvalidGraph, err, "edge %s -> %s", fe.From, fe.To)
		}
		if err := g.AddEdge(e); err != nil {
			return nil, pgerrors.Wrap(pgerrors.ErrCodeInvalidGraph, err, "edge %s -> %s", fe.From, fe.To)
		}
	}
	return g, nil
}

func toFileNode(n *Node) FileNode {
	fn := FileNode{ID: n.ID, NodeType: n.Kind.String(), Annotations: n.Annotations}
	if n.Kind == KindUnknown {
		fn.NodeType = n.RawType
	}
	if p := n.Project; p != nil {
		fn.Title = p.Title
		fn.Category = p.Category
		fn.Funding = p.Funding
		fn.IntegrationStatus = p.IntegrationStatus
		fn.Description = p.Description
	}
	if r := n.Repo; r != nil {
		fn.Ecosystem = r.Ecosystem
		fn.Active = r.Active
		if r.DaysSinceCommit.Known() {
			days := int(r.DaysSinceCommit)
			fn.DaysSinceCommit = &days
		}
		fn.Stars = r.Stars
		fn.Forks = r.Forks
		fn.Downloads = r.Downloads
		fn.Archived = r.Archived
	}
	if c := n.Contributor; c != nil {
		fn.DisplayName = c.DisplayName
		fn.Active = c.Active
	}
	return fn
}

func fromFileNode(fn FileNode) Node {
	n := Node{ID: fn.ID, Kind: ParseKind(fn.NodeType), Annotations: fn.Annotations}
	switch n.Kind {
	case KindProject:
		n.Project = &ProjectAttrs{
			Title:             fn.Title,
			Category:          fn.Category,
			Funding:           fn.Funding,
			IntegrationStatus: fn.IntegrationStatus,
			Description:       fn.Description,
		}
	case KindRepo, KindExternalRepo:
		days := UnknownDays
		if fn.DaysSinceCommit != nil {
			days = DaysOf(*fn.DaysSinceCommit)
		}
		n.Repo = &RepoAttrs{
			Ecosystem:       fn.Ecosystem,
			Active:          fn.Active,
			DaysSinceCommit: days,
			Stars:           fn.Stars,
			Forks:           fn.Forks,
			Downloads:       fn.Downloads,
			Archived:        fn.Archived,
		}
	case KindContributor:
		name := fn.DisplayName
		if name == "" {
			name = fn.ID
		}
		n.Contributor = &ContributorAttrs{DisplayName: name, Active: fn.Active}
	default:
		n.RawType = fn.NodeType
	}
	return n
}

func toFileEdge(e Edge) FileEdge {
	fe := FileEdge{From: e.From, To: e.To, EdgeType: e.Relation.String()}
	if d := e.Dependency; d != nil {
		fe.Ecosystem = d.Ecosystem
		fe.Confidence = string(d.Confidence)
	}
	if c := e.Contribution; c != nil {
		fe.Commits = c.Commits
		if !c.FirstCommit.IsZero() {
			t := c.FirstCommit
			fe.FirstCommit = &t
		}
		if !c.LastCommit.IsZero() {
			t := c.LastCommit
			fe.LastCommit = &t
		}
	}
	return fe
}

func fromFileEdge(fe FileEdge) (Edge, error) {
	rel, ok := ParseRelation(fe.EdgeType)
	if !ok {
		return Edge{}, fmt.Errorf("%w: %q", ErrUnknownRelation, fe.EdgeType)
	}
	e := Edge{From: fe.From, To: fe.To, Relation: rel}
	switch rel {
	case DependsOn:
		e.Dependency = &DependencyAttrs{Ecosystem: fe.Ecosystem, Confidence: Confidence(fe.Confidence)}
	case ContributedTo:
		c := &ContributionAttrs{Commits: fe.Commits}
		if fe.FirstCommit != nil {
			c.FirstCommit = *fe.FirstCommit
		}
		if fe.LastCommit != nil {
			c.LastCommit = *fe.LastCommit
		}
		e.Contribution = c
	}
	return e, nil
}

// FromPatchFile converts a patch from its wire form.
func FromPatchFile(f PatchFile) (Patch, error) {
	var p Patch
	for _, fn := range f.Nodes {
		p.Nodes = append(p.Nodes, fromFileNode(fn))
	}
	for _, fe := range f.Edges {
		e, err := fromFileEdge(fe)
		if err != nil {
			return Patch{}, pgerrors.Wrap(pgerrors.ErrCodeInvalidGraph, err, "patch edge %s -> %s", fe.From, fe.To)
		}
		p.Edges = append(p.Edges, e)
	}
	if len(f.Adoption) > 0 {
		p.Adoption = make(map[string]Adoption, len(f.Adoption))
		for id, a := range f.Adoption {
			p.Adoption[id] = Adoption{Stars: a.Stars, Forks: a.Forks, Downloads: a.Downloads}
		}
	}
	if len(f.Activity) > 0 {
		p.Activity = make(map[string]Activity, len(f.Activity))
		for id, a := range f.Activity {
			days := UnknownDays
			if a.DaysSinceCommit != nil {
				days = DaysOf(*a.DaysSinceCommit)
			}
			p.Activity[id] = Activity{DaysSinceCommit: days, Archived: a.Archived}
		}
	}
	return p, nil
}
