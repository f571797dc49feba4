// Package layout computes deterministic 2D positions for contact networks
// using a seeded force-directed (Fruchterman-Reingold) simulation.
//
// The simulation is fully deterministic: the same network, options, and seed
// always produce the same positions. Node iteration follows the stable node
// index, the RNG is explicitly seeded, and no goroutines touch the state.
package layout

import (
	"math"
	"math/rand/v2"

	"github.com/contactviz/contactviz/pkg/errors"
	"github.com/contactviz/contactviz/pkg/network"
)

const (
	// DefaultSeed makes layouts reproducible out of the box.
	DefaultSeed uint64 = 1

	// DefaultIterations bounds the simulation when it does not converge.
	DefaultIterations = 150

	// DefaultSpringK is the optimal spring distance in unit-square space.
	DefaultSpringK = 0.13

	// DefaultGroupWeight is the spring weight of an inferred-only edge. It is
	// deliberately weak so co-membership nudges clusters together without
	// collapsing them the way explicit contacts do.
	DefaultGroupWeight = 0.05

	// DefaultThreshold stops the simulation early once mean displacement per
	// node drops below it.
	DefaultThreshold = 1e-4

	// minDistance guards the repulsion term against coincident nodes.
	minDistance = 1e-2
)

// Point is a node position in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout maps each identifier to its computed position. Positions span
// roughly [-1, 1] on the dominant axis, centered on the origin; the scene
// encoder maps them into pixel space.
type Layout map[string]Point

// Options configures the force simulation.
type Options struct {
	Seed        uint64  // RNG seed for initial placement
	Iterations  int     // maximum simulation steps
	SpringK     float64 // optimal distance between nodes; 0 means 1/sqrt(n)
	GroupWeight float64 // spring weight for inferred-only edges
	Threshold   float64 // convergence threshold on mean displacement
}

// ValidateAndSetDefaults fills zero values and rejects nonsensical options.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.Iterations < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "iterations must be positive, got %d", o.Iterations)
	}
	if o.SpringK < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "spring distance must be non-negative, got %g", o.SpringK)
	}
	if o.GroupWeight == 0 {
		o.GroupWeight = DefaultGroupWeight
	}
	if o.GroupWeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "group weight must be positive, got %g", o.GroupWeight)
	}
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	return nil
}

// springWeight is the attraction strength of an edge: explicit edges pull
// with their contact weight, inferred-only edges with the weak group weight.
func springWeight(e *network.Edge, groupWeight float64) float64 {
	if e.Provenance.InferredOnly() {
		return groupWeight
	}
	return float64(e.Weight)
}

// Compute runs the force simulation and returns the final positions.
// An empty network yields an empty layout; a single node sits at the origin.
func Compute(n *network.Network, opts Options) (Layout, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	people := n.People()
	count := len(people)
	switch count {
	case 0:
		return Layout{}, nil
	case 1:
		return Layout{people[0].ID: {}}, nil
	}

	k := opts.SpringK
	if k == 0 {
		k = 1 / math.Sqrt(float64(count))
	}

	// Initial placement: uniform in the unit square, in node index order so
	// the seed fully determines the starting state.
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef))
	pos := make([]Point, count)
	for i := range pos {
		pos[i] = Point{X: rng.Float64(), Y: rng.Float64()}
	}

	type spring struct {
		a, b   int
		weight float64
	}
	springs := make([]spring, 0, n.EdgeCount())
	for _, e := range n.Edges() {
		springs = append(springs, spring{
			a:      n.Index(e.Pair.Lo),
			b:      n.Index(e.Pair.Hi),
			weight: springWeight(e, opts.GroupWeight),
		})
	}

	// Temperature limits per-step movement and cools linearly to zero.
	temp := 0.1
	cool := temp / float64(opts.Iterations+1)

	disp := make([]Point, count)
	for iter := 0; iter < opts.Iterations; iter++ {
		for i := range disp {
			disp[i] = Point{}
		}

		// Pairwise repulsion: k^2/d away from every other node.
		for i := 0; i < count; i++ {
			for j := i + 1; j < count; j++ {
				dx := pos[i].X - pos[j].X
				dy := pos[i].Y - pos[j].Y
				d := math.Hypot(dx, dy)
				if d < minDistance {
					d = minDistance
				}
				f := k * k / (d * d)
				disp[i].X += dx * f
				disp[i].Y += dy * f
				disp[j].X -= dx * f
				disp[j].Y -= dy * f
			}
		}

		// Spring attraction along edges: w*d/k toward the neighbor.
		for _, s := range springs {
			dx := pos[s.a].X - pos[s.b].X
			dy := pos[s.a].Y - pos[s.b].Y
			d := math.Hypot(dx, dy)
			if d < minDistance {
				d = minDistance
			}
			f := s.weight * d / k
			disp[s.a].X -= dx / d * f
			disp[s.a].Y -= dy / d * f
			disp[s.b].X += dx / d * f
			disp[s.b].Y += dy / d * f
		}

		var moved float64
		for i := range pos {
			d := math.Hypot(disp[i].X, disp[i].Y)
			if d < minDistance {
				d = minDistance
			}
			step := math.Min(d, temp)
			pos[i].X += disp[i].X / d * step
			pos[i].Y += disp[i].Y / d * step
			moved += step
		}

		temp -= cool
		if moved/float64(count) < opts.Threshold {
			break
		}
	}

	rescale(pos)

	out := make(Layout, count)
	for i, p := range people {
		if !isFinite(pos[i]) {
			return nil, errors.New(errors.ErrCodeInternal,
				"layout produced non-finite position for %q", p.ID)
		}
		out[p.ID] = pos[i]
	}
	return out, nil
}

func isFinite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// rescale centers positions on the origin and scales the dominant axis
// to [-1, 1], preserving the aspect ratio.
func rescale(pos []Point) {
	var cx, cy float64
	for _, p := range pos {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pos))
	cy /= float64(len(pos))

	var extent float64
	for i := range pos {
		pos[i].X -= cx
		pos[i].Y -= cy
		extent = math.Max(extent, math.Max(math.Abs(pos[i].X), math.Abs(pos[i].Y)))
	}
	if extent == 0 {
		return
	}
	for i := range pos {
		pos[i].X /= extent
		pos[i].Y /= extent
	}
}

// Bounds returns the bounding box of a layout as (minX, minY, maxX, maxY).
// Returns zeros for an empty layout.
func Bounds(l Layout) (minX, minY, maxX, maxY float64) {
	first := true
	for _, p := range l {
		if first {
			minX, maxX = p.X, p.X
			minY, maxY = p.Y, p.Y
			first = false
			continue
		}
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return
}
