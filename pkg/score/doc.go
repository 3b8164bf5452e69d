// Package score implements the three per-node scorers of the pipeline.
//
// All scorers read an active subgraph (see package active) and return plain
// maps keyed by node id. They never write to the graph, so the pipeline runs
// them concurrently on the same graph value.
//
// # Criticality
//
// [Criticality] counts, for every Repo and ExternalRepo, the distinct active
// nodes that depend on it directly or transitively. It walks depends_on edges
// backwards from each package. [DecayCriticality] weights each dependent by
// exp(-days/halflife) instead of 1, so its value never exceeds the plain
// count for the same node.
//
// # Concentration Risk
//
// [ConcentrationRisk] derives per-Repo contributor statistics from
// contributed_to commit counts: the pony-factor flag, the
// Herfindahl-Hirschman Index (0 to 10000), Shannon entropy and an HHI tier.
// Repos with no contributors or zero commits are omitted, not scored as safe.
//
// # Adoption
//
// [Adoption] ranks stars, forks and downloads independently with the
// inclusive percentile and averages the three ranks.
package score
