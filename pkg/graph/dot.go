package graph

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT representation of the graph.
//
// Node representation:
//   - annotations: ellipse
//   - neurons: box
//   - volumes: diamond
//
// Meta-annotation edges (annotation to annotation) are drawn dashed.
// Nodes and edges are emitted in sorted/insertion order respectively, so
// the output is stable for a given graph.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph annotations {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n\n")

	for _, id := range g.NodeIDs() {
		n := g.nodes[id]
		shape := "ellipse"
		switch n.Kind {
		case KindNeuron:
			shape = "box"
		case KindVolume:
			shape = "diamond"
		}
		fmt.Fprintf(&buf, "  %q [shape=%s];\n", n.ID, shape)
	}
	buf.WriteString("\n")
	for _, e := range g.edges {
		if e.Meta {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.From, e.To)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders the graph as an SVG image.
//
// RenderSVG generates a DOT representation via ToDOT, then uses Graphviz to
// render it. The returned bytes are a complete SVG document.
func (g *Graph) RenderSVG(ctx context.Context) ([]byte, error) {
	dot := g.ToDOT()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
