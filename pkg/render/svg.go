// Package render turns an encoded scene into output artifacts: a static SVG,
// a self-contained interactive HTML document, and a Graphviz-backed DOT/PNG
// alternative for quick structural inspection.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/contactviz/contactviz/pkg/scene"
)

// SVG renders the scene as a standalone static vector image, no script.
func SVG(sc *scene.Scene) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		sc.Width, sc.Height, sc.Width, sc.Height)
	writeScene(&buf, sc)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// writeScene emits the scene body: edges under nodes under labels, so labels
// always stay readable.
func writeScene(buf *bytes.Buffer, sc *scene.Scene) {
	buf.WriteString("  <g class=\"edges\">\n")
	for i, e := range sc.Edges {
		dash := ""
		if e.Dashed {
			dash = ` stroke-dasharray="6,4"`
		}
		fmt.Fprintf(buf,
			`    <line id="edge-%d" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#999999" stroke-width="%.2f" stroke-opacity="%.2f"%s/>`+"\n",
			i, e.X1, e.Y1, e.X2, e.Y2, e.Width, e.Alpha, dash)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("  <g class=\"nodes\">\n")
	for i, n := range sc.Nodes {
		fmt.Fprintf(buf,
			`    <circle id="node-%d" class="node" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.2f">`,
			i, n.X, n.Y, n.Size, escapeXML(n.Color), n.Alpha)
		if n.Tooltip != "" {
			fmt.Fprintf(buf, `<title>%s</title>`, escapeXML(n.Tooltip))
		}
		buf.WriteString("</circle>\n")
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("  <g class=\"labels\">\n")
	for _, n := range sc.Nodes {
		if n.Label == "" {
			continue
		}
		fmt.Fprintf(buf,
			`    <text x="%.2f" y="%.2f" font-size="11" font-family="sans-serif" fill="#333333">%s</text>`+"\n",
			n.X+n.Size+2, n.Y+4, escapeXML(n.Label))
	}
	buf.WriteString("  </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
