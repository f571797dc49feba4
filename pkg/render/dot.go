package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/contactviz/contactviz/pkg/network"
)

// ToDOT converts a contact network to Graphviz DOT format. Inferred-only
// edges are dashed; explicit edges carry their contact weight as penwidth.
// The resulting DOT string can be rendered with [PNG] or any Graphviz tool.
func ToDOT(n *network.Network) string {
	var buf bytes.Buffer
	buf.WriteString("graph contacts {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=\"#65ADFF\", fontsize=10];\n")
	buf.WriteString("\n")

	for _, p := range n.People() {
		if p.Label != "" && p.Label != p.ID {
			fmt.Fprintf(&buf, "  %q [label=%q];\n", p.ID, p.ID+"\n"+p.Label)
		} else {
			fmt.Fprintf(&buf, "  %q;\n", p.ID)
		}
	}

	buf.WriteString("\n")
	for _, e := range n.Edges() {
		if e.Provenance.InferredOnly() {
			fmt.Fprintf(&buf, "  %q -- %q [style=dashed, color=grey];\n", e.Pair.Lo, e.Pair.Hi)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [penwidth=%d];\n", e.Pair.Lo, e.Pair.Hi, e.Weight)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// PNG renders a DOT graph to PNG bytes using Graphviz.
func PNG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
