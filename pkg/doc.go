// Package pkg provides the core libraries for PG Atlas ecosystem analytics.
//
// # Overview
//
// PG Atlas scores the structural health of a software ecosystem modeled as a
// graph of projects, repositories, external packages and contributors. It
// answers which packages matter most, who they depend on, and whether funding
// follows importance. The pkg directory is organized into four main areas:
//
//  1. [graph] - The ecosystem graph, its JSON format and patch merging
//  2. Scoring - [active], [score], [structure], [stats]
//  3. Governance - [gate], [surface], [snapshot], [narrative]
//  4. Orchestration - [pipeline], [api], [render], [observability]
//
// # Architecture
//
// The typical data flow through PG Atlas:
//
//	graph.json (+ patches)
//	         ↓
//	    [active] package (drop dormant repos, keep the active subgraph)
//	         ↓
//	    [score] / [structure] (criticality, concentration, adoption, k-core, bridges)
//	         ↓
//	    [gate] / [surface] (2-of-3 gate, maintenance debt, keystones, funding)
//	         ↓
//	    [snapshot] (timestamped record, comparable across rounds)
//
// # Quick Start
//
// Score a graph file and write a snapshot:
//
//	import (
//	    "context"
//	    "github.com/pgatlas/pgatlas/pkg/cache"
//	    "github.com/pgatlas/pgatlas/pkg/graph"
//	    "github.com/pgatlas/pgatlas/pkg/pipeline"
//	    "github.com/pgatlas/pgatlas/pkg/snapshot"
//	)
//
//	// 1. Load the graph
//	g, _ := graph.ReadGraphFile("graph.json")
//
//	// 2. Run every stage
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil)
//	res, _ := runner.Execute(context.Background(), g, pipeline.Options{Round: "SCF-38"})
//
//	// 3. Persist the snapshot
//	path, _ := snapshot.WriteFile("snapshots", res.Snapshot)
//
// # Main Packages
//
// ## Graph
//
// [graph] - Typed nodes (Project, Repo, ExternalRepo, Contributor) and typed
// edges (belongs_to, depends_on, contributed_to) with node-link JSON IO and
// [graph.Merge] for incremental patches.
//
// [active] - The active subgraph projection. Dormant repositories are pruned
// before anything is scored.
//
// ## Scoring
//
// [score] - Criticality (active transitive dependents, plain and
// time-decayed), contributor concentration (HHI, pony factor, entropy) and
// composite adoption.
//
// [structure] - k-core decomposition and bridge edges of the undirected
// dependency graph.
//
// [stats] - Exclusive and inclusive percentile ranks and rounding helpers.
//
// ## Governance
//
// [gate] - The 2-of-3 metric gate with structured, auditable results.
//
// [surface] - Maintenance debt surface, Keystone Contributor Index and
// funding efficiency ratio.
//
// [snapshot] - Ecosystem-level snapshot records, file export and
// round-over-round comparison.
//
// [narrative] - Human-readable audit text for every structured result.
//
// ## Infrastructure
//
// [pipeline] - Runs every stage in order, in parallel where stages are
// independent. Used by both the CLI and the API so results are identical.
//
// [api] - Read-only HTTP API over the latest pipeline result.
//
// [render] - Graphviz diagrams of the active graph with bridges and the
// innermost core highlighted.
//
// [config] - Every threshold, loaded from TOML or YAML on top of defaults.
//
// [cache] - Content-addressed cache for rendered diagrams.
//
// [observability] - Hook interfaces and their Prometheus implementation.
//
// [errors] - Error codes shared by the CLI and the API.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/score/...    # Specific package
//	go test -run Example       # Examples only
//
// [graph]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/graph
// [active]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/active
// [score]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/score
// [structure]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/structure
// [stats]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/stats
// [gate]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/gate
// [surface]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/surface
// [snapshot]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/snapshot
// [narrative]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/narrative
// [pipeline]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/pipeline
// [api]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/api
// [render]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/render
// [config]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/config
// [cache]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/cache
// [observability]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/observability
// [errors]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/errors
// [graph.Merge]: https://pkg.go.dev/github.com/pgatlas/pgatlas/pkg/graph#Merge
package pkg
