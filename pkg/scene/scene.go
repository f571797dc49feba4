// Package scene converts a contact network plus its layout into a flat,
// render-ready scene: one positioned, styled node record per individual and
// one line record per edge.
//
// The encoding is total and stable: scene nodes are index-aligned with the
// network's people order, so renderers can emit parallel per-node arrays
// (identifiers, labels) whose indices agree with the drawn elements.
package scene

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/contactviz/contactviz/pkg/errors"
	"github.com/contactviz/contactviz/pkg/layout"
	"github.com/contactviz/contactviz/pkg/network"
)

// Visual defaults.
const (
	DefaultWidth  = 1500
	DefaultHeight = 700
	DefaultMargin = 40.0

	DefaultNodeSizeSelected   = 16.0
	DefaultNodeSizeUnselected = 9.0
	DefaultNodeAlphaSelected  = 1.0
	DefaultNodeAlphaUnselected = 0.4

	// DefaultBaseColor is the node fill for ungrouped individuals.
	DefaultBaseColor = "#65ADFF"

	edgeAlphaExplicit = 0.6
	edgeAlphaInferred = 0.25
	edgeWidthBase     = 1.0
	edgeWidthStep     = 0.5
	edgeWidthMax      = 4.0
)

// Style configures scene encoding.
type Style struct {
	Width  int // canvas width in pixels
	Height int // canvas height in pixels
	Margin float64

	NodeSizeSelected    float64
	NodeSizeUnselected  float64
	NodeAlphaSelected   float64
	NodeAlphaUnselected float64

	// BaseColor fills every node unless ColorColumn assigns one.
	BaseColor string

	// ColorColumn optionally names a membership column; nodes get a palette
	// color per distinct value, ungrouped nodes keep BaseColor.
	ColorColumn string

	// GroupColors optionally pins specific ColorColumn values to colors,
	// overriding the generated palette for those values.
	GroupColors map[string]string
}

// ValidateAndSetDefaults fills zero values and rejects nonsensical styling.
func (s *Style) ValidateAndSetDefaults() error {
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	if s.Width < 0 || s.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas dimensions must be positive, got %dx%d", s.Width, s.Height)
	}
	if s.Margin == 0 {
		s.Margin = DefaultMargin
	}
	if s.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "margin must not be negative, got %g", s.Margin)
	}
	// The projector needs positive drawing area inside the margins; anything
	// smaller would flip the layout around the canvas center.
	if float64(s.Width) <= 2*s.Margin || float64(s.Height) <= 2*s.Margin {
		return errors.New(errors.ErrCodeInvalidConfig,
			"canvas %dx%d leaves no drawing area inside a %g margin", s.Width, s.Height, s.Margin)
	}
	if s.NodeSizeSelected == 0 {
		s.NodeSizeSelected = DefaultNodeSizeSelected
	}
	if s.NodeSizeUnselected == 0 {
		s.NodeSizeUnselected = DefaultNodeSizeUnselected
	}
	if s.NodeSizeSelected < 0 || s.NodeSizeUnselected < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "node sizes must be positive")
	}
	if s.NodeAlphaSelected == 0 {
		s.NodeAlphaSelected = DefaultNodeAlphaSelected
	}
	if s.NodeAlphaUnselected == 0 {
		s.NodeAlphaUnselected = DefaultNodeAlphaUnselected
	}
	for _, a := range []float64{s.NodeAlphaSelected, s.NodeAlphaUnselected} {
		if a < 0 || a > 1 {
			return errors.New(errors.ErrCodeInvalidConfig, "node alpha %g outside [0, 1]", a)
		}
	}
	if s.BaseColor == "" {
		s.BaseColor = DefaultBaseColor
	}
	return nil
}

// Node is one positioned, styled individual. X/Y are pixel coordinates.
type Node struct {
	ID        string
	X, Y      float64
	Label     string
	SearchKey string // what the embedded search matches against
	Size      float64
	Alpha     float64
	Color     string
	Tooltip   string // hover text; empty disables the tooltip
}

// Edge is one line between two nodes, referencing them by node index.
type Edge struct {
	From, To       int
	X1, Y1, X2, Y2 float64
	Width          float64
	Alpha          float64
	Dashed         bool // inferred-only edges are dashed and faint

	// Explicit reports whether a contact record backs the edge; Columns
	// lists the membership columns that inferred it, sorted. The document's
	// edge views filter on these.
	Explicit bool
	Columns  []string
}

// Scene is the complete render-ready picture. Style holds the resolved
// styling so renderers can substitute the selected/unselected values into
// the interactive behavior. Columns lists the membership columns that
// formed at least one group, in group order; the document offers one edge
// view per entry.
type Scene struct {
	Width   int
	Height  int
	Title   string
	Style   Style
	Nodes   []Node
	Edges   []Edge
	Columns []string
}

// Encode produces the scene for a network and its layout.
// Every individual must have a position; a missing one is an internal error
// (the pipeline always lays out the same network it encodes).
func Encode(n *network.Network, pos layout.Layout, style Style) (*Scene, error) {
	if err := style.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	colors := assignColors(n, style)
	project := projector(pos, style)

	sc := &Scene{
		Width:  style.Width,
		Height: style.Height,
		Style:  style,
		Nodes:  make([]Node, 0, n.NodeCount()),
		Edges:  make([]Edge, 0, n.EdgeCount()),
	}

	for _, p := range n.People() {
		pt, ok := pos[p.ID]
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal, "no position for individual %q", p.ID)
		}
		x, y := project(pt)
		sc.Nodes = append(sc.Nodes, Node{
			ID:        p.ID,
			X:         x,
			Y:         y,
			Label:     p.Label,
			SearchKey: p.ID,
			Size:      style.NodeSizeUnselected,
			Alpha:     style.NodeAlphaUnselected,
			Color:     colors[p.ID],
			Tooltip:   tooltipFor(p),
		})
	}

	for _, e := range n.Edges() {
		from := n.Index(e.Pair.Lo)
		to := n.Index(e.Pair.Hi)
		inferred := e.Provenance.InferredOnly()

		alpha := edgeAlphaExplicit
		if inferred {
			alpha = edgeAlphaInferred
		}
		sc.Edges = append(sc.Edges, Edge{
			From:     from,
			To:       to,
			X1:       sc.Nodes[from].X,
			Y1:       sc.Nodes[from].Y,
			X2:       sc.Nodes[to].X,
			Y2:       sc.Nodes[to].Y,
			Width:    edgeWidth(e.Weight),
			Alpha:    alpha,
			Dashed:   inferred,
			Explicit: e.Provenance.HasExplicit(),
			Columns:  e.Provenance.Columns(),
		})
	}

	seen := make(map[string]bool)
	for _, g := range n.Groups() {
		if !seen[g.Column] {
			seen[g.Column] = true
			sc.Columns = append(sc.Columns, g.Column)
		}
	}

	return sc, nil
}

// edgeWidth maps contact weight onto stroke width, capped so heavy pairs
// stay readable.
func edgeWidth(weight int) float64 {
	w := edgeWidthBase + float64(weight-1)*edgeWidthStep
	return math.Min(w, edgeWidthMax)
}

// projector maps layout space onto the pixel canvas, preserving aspect ratio
// and keeping a margin on every side. Degenerate extents (single node, all
// coincident) land in the canvas center.
func projector(pos layout.Layout, style Style) func(layout.Point) (float64, float64) {
	minX, minY, maxX, maxY := layout.Bounds(pos)
	spanX := maxX - minX
	spanY := maxY - minY

	availW := float64(style.Width) - 2*style.Margin
	availH := float64(style.Height) - 2*style.Margin

	scale := 0.0
	if spanX > 0 || spanY > 0 {
		scale = math.Inf(1)
		if spanX > 0 {
			scale = availW / spanX
		}
		if spanY > 0 {
			scale = math.Min(scale, availH/spanY)
		}
	}

	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	centerW := float64(style.Width) / 2
	centerH := float64(style.Height) / 2

	return func(p layout.Point) (float64, float64) {
		// SVG y grows downward; layout y grows upward.
		return centerW + (p.X-cx)*scale, centerH - (p.Y-cy)*scale
	}
}

// tooltipFor renders the hover text: identifier, optional label, then the
// non-missing attributes sorted by name.
func tooltipFor(p *network.Person) string {
	var b strings.Builder
	b.WriteString(p.ID)
	if p.Label != "" && p.Label != p.ID {
		b.WriteString(" (" + p.Label + ")")
	}
	for _, name := range slices.Sorted(maps.Keys(p.Attrs)) {
		v := p.Attrs[name]
		if v == nil {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %v", name, v)
	}
	return b.String()
}
