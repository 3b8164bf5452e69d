package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pgatlas/pgatlas/pkg/cache"
	"github.com/pgatlas/pgatlas/pkg/config"
	pgerrors "github.com/pgatlas/pgatlas/pkg/errors"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/graph/graphtest"
	"github.com/pgatlas/pgatlas/pkg/observability"
	"github.com/pgatlas/pgatlas/pkg/render"
)

func fixture(t *testing.T) *graph.Graph {
	return graphtest.New(t).
		Project("lib-project", 0).Project("app-project", 1000).
		Repo("core", 5).Repo("util", 5).Repo("app", 5).Repo("web", 5).Repo("old", 200).
		Owns("lib-project", "core", "util").
		Owns("app-project", "app", "web").
		Depends("app", "core").
		Depends("web", "core", "util").
		Depends("util", "core").
		Depends("old", "core").
		Commits("alice", "core", 90).
		Commits("bob", "core", 10).
		Commits("carol", "app", 5).
		Commits("dave", "app", 5).
		Commits("alice", "util", 1).
		Graph()
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Config != config.Default() {
		t.Error("zero Config should become config.Default()")
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	tests := []struct {
		name string
		opts Options
	}{
		{"bad round", Options{Round: "bad label!"}},
		{"bad config", Options{Config: config.Config{Activity: config.Activity{WindowDays: -1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExecute(t *testing.T) {
	g := fixture(t)
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	res, err := NewRunner(nil, nil).Execute(context.Background(), g, Options{Round: "r1", Now: now})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !slices.Equal(res.Pruned, []string{"old"}) {
		t.Errorf("Pruned = %v, want [old]", res.Pruned)
	}
	if got := res.Criticality["core"]; got != 3 {
		t.Errorf("Criticality[core] = %d, want 3", got)
	}
	if got := res.Criticality["util"]; got != 1 {
		t.Errorf("Criticality[util] = %d, want 1", got)
	}
	if len(res.Gate) != 3 {
		t.Errorf("len(Gate) = %d, want 3", len(res.Gate))
	}
	for _, r := range res.Gate {
		if r.Explanation == "" {
			t.Errorf("gate %s has no explanation", r.ID)
		}
	}

	core, _ := res.Active.Node("core")
	if v, ok := core.Annotation(graph.AnnotationCriticality); !ok || v != 3 {
		t.Errorf("core criticality annotation = %v/%v, want 3", v, ok)
	}
	if v, ok := core.Annotation(graph.AnnotationKCore); !ok || v != 2 {
		t.Errorf("core kcore annotation = %v/%v, want 2", v, ok)
	}
	orig, _ := g.Node("core")
	if len(orig.Annotations) != 0 {
		t.Errorf("input graph was annotated: %v", orig.Annotations)
	}

	s := res.Snapshot
	if s == nil {
		t.Fatal("Snapshot is nil")
	}
	if s.Round != "r1" || !s.CreatedAt.Equal(now) {
		t.Errorf("snapshot round/time = %q/%v", s.Round, s.CreatedAt)
	}
	if s.DormantPruned != 1 || s.ActiveRepos != 4 {
		t.Errorf("snapshot pruned/active = %d/%d, want 1/4", s.DormantPruned, s.ActiveRepos)
	}
	if s.GraphFingerprint != res.GraphHash || s.ConfigFingerprint != config.Default().Fingerprint() {
		t.Error("snapshot fingerprints do not match the run")
	}
	if s.Narrative == "" {
		t.Error("snapshot has no governing answer")
	}

	for _, name := range []string{
		StageProject, StageCriticality, StageDecay, StageConcentration, StageAdoption,
		StageKCore, StageBridges, StageAnnotate, StageGate, StageDebt, StageKeystone,
		StageFunding, StageSnapshot,
	} {
		if _, ok := res.Stats.Stages[name]; !ok {
			t.Errorf("Stats.Stages missing %q", name)
		}
	}
	if res.Stats.NodeCount != g.NodeCount() || res.Stats.ActiveNodes != g.NodeCount()-1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
}

func TestExecuteIsDeterministic(t *testing.T) {
	g := fixture(t)
	opts := Options{Now: time.Unix(0, 0)}
	a, err := NewRunner(nil, nil).Execute(context.Background(), g, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRunner(nil, nil).Execute(context.Background(), g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if a.GraphHash != b.GraphHash {
		t.Error("GraphHash differs between runs")
	}
	for i := range a.Gate {
		if a.Gate[i].ID != b.Gate[i].ID || a.Gate[i].Passed != b.Gate[i].Passed {
			t.Errorf("gate[%d] = %s/%v, want %s/%v", i, b.Gate[i].ID, b.Gate[i].Passed, a.Gate[i].ID, a.Gate[i].Passed)
		}
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil).Execute(ctx, fixture(t), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestExecuteNilGraph(t *testing.T) {
	_, err := NewRunner(nil, nil).Execute(context.Background(), nil, Options{})
	if !pgerrors.Is(err, pgerrors.ErrCodeInvalidInput) {
		t.Errorf("Execute(nil) error = %v, want invalid input", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu        sync.Mutex
	completed []string
	snapshots int
}

func (h *recordingHooks) OnStageComplete(_ context.Context, stage string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed = append(h.completed, stage)
}

func (h *recordingHooks) OnSnapshot(context.Context, string, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots++
}

func TestExecuteFiresHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	defer observability.Reset()

	if _, err := NewRunner(nil, nil).Execute(context.Background(), fixture(t), Options{}); err != nil {
		t.Fatal(err)
	}
	if len(h.completed) != 13 {
		t.Errorf("completed stages = %d (%v), want 13", len(h.completed), h.completed)
	}
	if h.completed[0] != StageProject || h.completed[len(h.completed)-1] != StageSnapshot {
		t.Errorf("stage order = %v", h.completed)
	}
	if h.snapshots != 1 {
		t.Errorf("snapshots = %d, want 1", h.snapshots)
	}
}

func TestCriticalityRows(t *testing.T) {
	res, err := NewRunner(nil, nil).Execute(context.Background(), fixture(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	rows := res.CriticalityRows()
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}
	if rows[0].ID != "core" || rows[0].Score != 3 || rows[0].Ecosystem != "unknown" {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[1].ID != "util" {
		t.Errorf("rows[1] = %+v, want util", rows[1])
	}

	conc := res.ConcentrationRows()
	if len(conc) != 3 || conc[0].Repo != "util" {
		t.Errorf("ConcentrationRows()[0] = %+v, want util (HHI 10000)", conc[0])
	}
}

func TestLoadMergesPatches(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph.json")
	if err := graph.WriteGraphFile(fixture(t), graphPath); err != nil {
		t.Fatal(err)
	}
	patchPath := filepath.Join(dir, "patch.json")
	patch := `{
  "edges": [{"from": "app", "to": "left-pad", "edge_type": "depends_on", "ecosystem": "npm"}],
  "activity": {"old": {"days_since_commit": 3}}
}`
	if err := os.WriteFile(patchPath, []byte(patch), 0o644); err != nil {
		t.Fatal(err)
	}

	g, stats, err := Load(context.Background(), LoadOptions{GraphPath: graphPath, PatchPaths: []string{patchPath}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stats.NodesAdded != 1 || stats.EdgesAdded != 1 || stats.NodesUpdated != 1 {
		t.Errorf("stats = %+v", stats)
	}
	ext, ok := g.Node("left-pad")
	if !ok || ext.Kind != graph.KindExternalRepo {
		t.Errorf("left-pad = %v/%v, want ExternalRepo", ext, ok)
	}
	old, _ := g.Node("old")
	if !old.IsActive() {
		t.Error("old should be active after the activity patch")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, _, err := Load(context.Background(), LoadOptions{}); !pgerrors.Is(err, pgerrors.ErrCodeInvalidInput) {
		t.Errorf("Load() error = %v, want invalid input", err)
	}
	missing := filepath.Join(t.TempDir(), "missing.json")
	if _, _, err := Load(context.Background(), LoadOptions{GraphPath: missing}); !pgerrors.IsNotFound(err) {
		t.Errorf("Load() error = %v, want not found", err)
	}
}

func TestRenderCachesDiagrams(t *testing.T) {
	runner := NewRunner(cache.NewMemoryCache(), nil)
	res, err := runner.Execute(context.Background(), fixture(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	dot, hit, err := runner.Render(context.Background(), res, render.FormatDOT, render.Options{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if hit {
		t.Error("first render should miss the cache")
	}
	if !strings.Contains(string(dot), `"app" -> "core" [color=red, penwidth=3];`) {
		t.Errorf("bridge app -> core not highlighted:\n%s", dot)
	}

	again, hit, err := runner.Render(context.Background(), res, render.FormatDOT, render.Options{})
	if err != nil || !hit {
		t.Errorf("second render hit = %v, err = %v; want cached", hit, err)
	}
	if string(again) != string(dot) {
		t.Error("cached diagram differs")
	}

	if _, _, err := runner.Render(context.Background(), res, "png", render.Options{}); !pgerrors.Is(err, pgerrors.ErrCodeUnsupported) {
		t.Errorf("Render(png) error = %v, want unsupported", err)
	}
}
