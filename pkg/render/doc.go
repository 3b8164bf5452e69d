// Package render draws the active dependency graph as a node-link diagram.
//
// # Overview
//
// [ToDOT] converts the depends_on subgraph of an active graph into Graphviz
// DOT source, coloring nodes by their structural role:
//
//   - Nodes of the innermost k-core are filled orange
//   - ExternalRepo nodes are dashed and grey
//   - Bridge edges are drawn thick and red
//
// Edges point from a dependent to its dependency, so foundational packages
// sink to the bottom of the top-to-bottom layout.
//
// # Usage
//
//	dot := render.ToDOT(render.Input{
//	    Graph:   result.Active,
//	    Cores:   result.Cores,
//	    Bridges: result.Bridges,
//	}, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [Render] combines both steps and dispatches on a format name.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package render
