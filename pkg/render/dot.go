package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	pgerrors "github.com/pgatlas/pgatlas/pkg/errors"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/structure"
)

// Output formats accepted by [Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// Input is the structural data a diagram is drawn from.
type Input struct {
	Graph   *graph.Graph
	Cores   map[string]int // k-core numbers; nil disables core highlighting
	Bridges []structure.Bridge
}

// Options configures diagram generation.
type Options struct {
	// Detailed adds the criticality and k-core annotations to node labels.
	Detailed bool

	// Ecosystem restricts the diagram to packages of one ecosystem.
	// Empty draws every package.
	Ecosystem string
}

// ToDOT converts the dependency subgraph of in.Graph to Graphviz DOT.
// Nodes and edges are emitted in sorted order so the output is stable.
func ToDOT(in Input, opts Options) string {
	top := structure.MaxCore(in.Cores)
	bridges := structure.BridgeSet(in.Bridges)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	nodes := in.Graph.NodesOf(graph.KindRepo, graph.KindExternalRepo)
	slices.SortFunc(nodes, func(a, b *graph.Node) int { return strings.Compare(a.ID, b.ID) })
	keep := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if opts.Ecosystem != "" && n.Ecosystem() != opts.Ecosystem {
			continue
		}
		keep[n.ID] = true
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), top > 0 && in.Cores[n.ID] == top)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	edges := in.Graph.EdgesOf(graph.DependsOn)
	slices.SortFunc(edges, func(a, b graph.Edge) int {
		if c := strings.Compare(a.From, b.From); c != 0 {
			return c
		}
		return strings.Compare(a.To, b.To)
	})
	for _, e := range edges {
		if !keep[e.From] || !keep[e.To] {
			continue
		}
		if structure.IsBridge(bridges, e.From, e.To) {
			fmt.Fprintf(&buf, "  %q -> %q [color=red, penwidth=3];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	parts := []string{n.ID}
	if v, ok := n.Annotation(graph.AnnotationCriticality); ok {
		parts = append(parts, fmt.Sprintf("criticality: %.0f", v))
	}
	if v, ok := n.Annotation(graph.AnnotationKCore); ok {
		parts = append(parts, fmt.Sprintf("k-core: %.0f", v))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *graph.Node, label string, inTopCore bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case inTopCore:
		attrs = append(attrs, "fillcolor=orange")
	case n.Kind == graph.KindExternalRepo:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render produces the diagram in format.
func Render(ctx context.Context, in Input, format string, opts Options) ([]byte, error) {
	if !ValidFormats[format] {
		return nil, pgerrors.New(pgerrors.ErrCodeUnsupported, "unsupported render format: %q (use dot or svg)", format)
	}
	dot := ToDOT(in, opts)
	if format == FormatDOT {
		return []byte(dot), nil
	}
	return RenderSVG(ctx, dot)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
