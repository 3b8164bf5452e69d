package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pgerrors "github.com/pgatlas/pgatlas/pkg/errors"
)

func TestRoundTripPreservesVariants(t *testing.T) {
	g := sampleGraph(t)
	first := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	_ = g.AddEdge(ContributedToEdge("alice", "app", ContributionAttrs{Commits: 7, FirstCommit: first}))
	_ = g.AddNode(Node{ID: "org", Kind: KindUnknown, RawType: "Organization"})

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error = %v", err)
	}
	back, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadGraph() error = %v", err)
	}

	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Fatalf("counts = %d/%d, want %d/%d", back.NodeCount(), back.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}

	ext, _ := back.Node("ext")
	if ext.Repo.DaysSinceCommit.Known() {
		t.Error("unknown activity should survive a round trip")
	}
	lib, _ := back.Node("lib")
	if lib.Repo.DaysSinceCommit != 10 || !lib.Repo.Active {
		t.Errorf("lib attrs = %+v", *lib.Repo)
	}
	proj, _ := back.Node("proj")
	if proj.Project.Funding != 1000 {
		t.Errorf("Funding = %v, want 1000", proj.Project.Funding)
	}
	org, _ := back.Node("org")
	if org.Kind != KindUnknown || org.RawType != "Organization" {
		t.Errorf("org = %+v, want unknown kind with raw type Organization", org)
	}

	var found bool
	for _, e := range back.Contributions("app") {
		if e.From == "alice" {
			found = true
			if e.Commits() != 7 || !e.Contribution.FirstCommit.Equal(first) {
				t.Errorf("contribution = %+v", *e.Contribution)
			}
		}
	}
	if !found {
		t.Error("alice -> app contribution lost")
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	a, _ := MarshalGraph(sampleGraph(t))
	b, _ := MarshalGraph(sampleGraph(t))
	if !bytes.Equal(a, b) {
		t.Error("MarshalGraph output should be deterministic")
	}
	if strings.Index(string(a), `"id": "alice"`) > strings.Index(string(a), `"id": "proj"`) {
		t.Error("nodes should be sorted by id")
	}
}

func TestReadGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{"nodes": [`},
		{"duplicate node", `{"nodes":[{"id":"a","node_type":"Repo"},{"id":"a","node_type":"Repo"}],"edges":[]}`},
		{"unknown relation", `{"nodes":[{"id":"a","node_type":"Repo"},{"id":"b","node_type":"Repo"}],"edges":[{"from":"a","to":"b","edge_type":"maintains"}]}`},
		{"bad endpoint", `{"nodes":[{"id":"a","node_type":"Repo"},{"id":"b","node_type":"Repo"}],"edges":[{"from":"a","to":"b","edge_type":"belongs_to"}]}`},
		{"missing endpoint", `{"nodes":[{"id":"a","node_type":"Repo"}],"edges":[{"from":"a","to":"b","edge_type":"depends_on"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(tt.json))
			if !pgerrors.Is(err, pgerrors.ErrCodeInvalidGraph) {
				t.Errorf("ReadGraph() error = %v, want INVALID_GRAPH", err)
			}
		})
	}
}

func TestGraphFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	if err := WriteGraphFile(sampleGraph(t), path); err != nil {
		t.Fatalf("WriteGraphFile() error = %v", err)
	}
	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile() error = %v", err)
	}
	if g.NodeCount() != 5 {
		t.Errorf("NodeCount() = %d, want 5", g.NodeCount())
	}

	_, err = ReadGraphFile(filepath.Join(dir, "missing.json"))
	if !pgerrors.Is(err, pgerrors.ErrCodeFileNotFound) {
		t.Errorf("ReadGraphFile(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	_ = os.Remove(path)
}

func TestContributorDisplayNameDefaultsToID(t *testing.T) {
	g, err := ReadGraph(strings.NewReader(`{"nodes":[{"id":"octocat","node_type":"Contributor","active":true}],"edges":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	n, _ := g.Node("octocat")
	if n.Contributor.DisplayName != "octocat" {
		t.Errorf("DisplayName = %q, want octocat", n.Contributor.DisplayName)
	}
}

func TestReadPatch(t *testing.T) {
	const data = `{
  "nodes": [{"id": "new", "node_type": "Repo", "ecosystem": "go", "days_since_commit": 3}],
  "edges": [{"from": "new", "to": "lib", "edge_type": "depends_on", "confidence": "direct"}],
  "adoption": {"lib": {"stars": 10, "forks": 2, "downloads": 500}},
  "activity": {"app": {"days_since_commit": null}, "ext": {"days_since_commit": 4}}
}`
	p, err := ReadPatch(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadPatch() error = %v", err)
	}
	if len(p.Nodes) != 1 || p.Nodes[0].Repo == nil || p.Nodes[0].Repo.DaysSinceCommit != 3 {
		t.Errorf("Nodes = %+v", p.Nodes)
	}
	if len(p.Edges) != 1 || p.Edges[0].Dependency == nil || p.Edges[0].Dependency.Confidence != ConfidenceDirect {
		t.Errorf("Edges = %+v", p.Edges)
	}
	if got := p.Adoption["lib"]; got.Downloads != 500 {
		t.Errorf("Adoption[lib] = %+v", got)
	}
	if p.Activity["app"].DaysSinceCommit.Known() {
		t.Error("null days_since_commit should decode as unknown")
	}
	if p.Activity["ext"].DaysSinceCommit != 4 {
		t.Errorf("Activity[ext] = %+v", p.Activity["ext"])
	}
}

func TestReadPatchUnknownRelation(t *testing.T) {
	_, err := ReadPatch(strings.NewReader(`{"edges": [{"from": "a", "to": "b", "edge_type": "maintains"}]}`))
	if !pgerrors.Is(err, pgerrors.ErrCodeInvalidGraph) {
		t.Errorf("ReadPatch() error = %v, want invalid graph", err)
	}
}

func TestReadPatchFileMissing(t *testing.T) {
	_, err := ReadPatchFile(filepath.Join(t.TempDir(), "nope.json"))
	if !pgerrors.Is(err, pgerrors.ErrCodeFileNotFound) {
		t.Errorf("ReadPatchFile() error = %v, want file not found", err)
	}
}
