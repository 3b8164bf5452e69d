// Package graph provides the typed ecosystem graph that every PG Atlas metric
// reads from.
//
// The graph is heterogeneous: four node kinds and three directed relations,
// each with its own attribute struct.
//
// # Node Kinds
//
//   - [KindProject]: a funded project ([ProjectAttrs]: category, funding).
//   - [KindRepo]: a source repository owned by one Project ([RepoAttrs]).
//   - [KindExternalRepo]: a package outside the funded universe that still
//     participates in dependency analysis (also [RepoAttrs]).
//   - [KindContributor]: a human identity ([ContributorAttrs]).
//
// Nodes whose type is not recognised are kept as [KindUnknown] so that the
// active projection can warn about them instead of silently dropping data.
//
// # Relations
//
//   - [BelongsTo]: Repo → Project.
//   - [DependsOn]: Repo|ExternalRepo → Repo|ExternalRepo ([DependencyAttrs]).
//   - [ContributedTo]: Contributor → Repo ([ContributionAttrs]).
//
// [Graph.AddEdge] enforces these endpoint rules; there is at most one edge per
// (from, to, relation) triple and adding it again replaces its attributes.
//
// # Storage
//
// Nodes live in an arena indexed by [Handle] with a string → handle lookup.
// Edges live in a second arena, and each relation keeps its own in/out
// adjacency lists so traversals never scan edges of another relation.
// Iteration order is insertion order, which keeps every downstream metric
// deterministic.
//
// # Mutation
//
// A graph is built once and then read by the scorers. The only write allowed
// after construction is [Graph.Annotate], which stores advisory score values
// on a node. Enrichment goes through [Merge], which returns a new graph and
// never deletes anything.
//
// # Serialization
//
// [ReadGraphFile], [ReadGraph], [WriteGraphFile] and [MarshalGraph] use a flat
// node-link JSON format:
//
//	{
//	  "nodes": [
//	    {"id": "stellar-sdk", "node_type": "Project", "funding": 150000},
//	    {"id": "stellar/js-stellar-sdk", "node_type": "Repo", "days_since_commit": 4}
//	  ],
//	  "edges": [
//	    {"from": "stellar/js-stellar-sdk", "to": "stellar-sdk", "edge_type": "belongs_to"}
//	  ]
//	}
package graph
