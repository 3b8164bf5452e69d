// Package structure characterizes the topology of the dependency layer.
//
// Both analyses run on the same view of the graph: an undirected simple graph
// built from depends_on edges between Repo and ExternalRepo nodes. Funding
// (belongs_to) and contributor (contributed_to) edges never enter it.
// Self loops are dropped and a pair of opposite dependencies collapses into a
// single undirected edge.
//
//   - [CoreNumbers] assigns each package its k-core number, the largest k
//     for which it survives repeated removal of nodes with degree below k.
//   - [Bridges] lists the edges whose removal disconnects their endpoints.
package structure
