package layout

import (
	"bytes"
	"math"
	"testing"

	"github.com/contactviz/contactviz/pkg/network"
)

func chainNetwork(t *testing.T, ids ...string) *network.Network {
	t.Helper()
	n := network.NewNetwork()
	for _, id := range ids {
		if err := n.AddPerson(network.Person{ID: id}); err != nil {
			t.Fatalf("AddPerson(%q) failed: %v", id, err)
		}
	}
	for i := 0; i+1 < len(ids); i++ {
		if err := n.UpsertEdge(ids[i], ids[i+1], network.Explicit()); err != nil {
			t.Fatalf("UpsertEdge failed: %v", err)
		}
	}
	return n
}

func TestComputeBoundaries(t *testing.T) {
	t.Run("EmptyNetwork", func(t *testing.T) {
		l, err := Compute(network.NewNetwork(), Options{})
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		if len(l) != 0 {
			t.Errorf("layout has %d positions, want 0", len(l))
		}
	})

	t.Run("SingleNode", func(t *testing.T) {
		l, err := Compute(chainNetwork(t, "only"), Options{})
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		p, ok := l["only"]
		if !ok {
			t.Fatal("missing position for the only node")
		}
		if p.X != 0 || p.Y != 0 {
			t.Errorf("single node at (%g, %g), want origin", p.X, p.Y)
		}
	})
}

func TestComputeDeterminism(t *testing.T) {
	n := chainNetwork(t, "a", "b", "c", "d", "e")
	opts := Options{Seed: 7}

	first, err := Compute(n, opts)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	second, err := Compute(n, opts)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	for id, p := range first {
		q := second[id]
		if p != q {
			t.Errorf("node %s moved between runs: (%g,%g) vs (%g,%g)", id, p.X, p.Y, q.X, q.Y)
		}
	}
}

func TestComputeSeedChangesPlacement(t *testing.T) {
	n := chainNetwork(t, "a", "b", "c", "d", "e")

	one, err := Compute(n, Options{Seed: 1})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	two, err := Compute(n, Options{Seed: 2})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	same := true
	for id, p := range one {
		if p != two[id] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical layouts")
	}
}

func TestComputeCoversEveryNode(t *testing.T) {
	n := chainNetwork(t, "a", "b", "c", "d")
	l, err := Compute(n, Options{})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(l) != n.NodeCount() {
		t.Fatalf("layout has %d positions, want %d", len(l), n.NodeCount())
	}
	for _, p := range n.People() {
		pt, ok := l[p.ID]
		if !ok {
			t.Errorf("missing position for %s", p.ID)
			continue
		}
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
			t.Errorf("node %s has non-finite position (%g, %g)", p.ID, pt.X, pt.Y)
		}
	}
}

func TestComputeNormalizedExtent(t *testing.T) {
	n := chainNetwork(t, "a", "b", "c", "d", "e", "f")
	l, err := Compute(n, Options{})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	minX, minY, maxX, maxY := Bounds(l)
	for _, v := range []float64{minX, minY, maxX, maxY} {
		if v < -1.0001 || v > 1.0001 {
			t.Errorf("bound %g outside [-1, 1]", v)
		}
	}
	// The dominant axis is stretched to the full range.
	if math.Max(maxX-minX, maxY-minY) < 1 {
		t.Error("layout does not use the normalized extent")
	}
}

func TestComputeExplicitEdgesPullCloser(t *testing.T) {
	// Two pairs with identical structure except provenance: the explicit
	// pair uses full weight, the inferred one the weak group weight, so the
	// explicit pair ends up closer together.
	n := network.NewNetwork()
	for _, id := range []string{"a", "b", "c", "d"} {
		if err := n.AddPerson(network.Person{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := n.UpsertEdge("a", "b", network.Explicit()); err != nil {
		t.Fatal(err)
	}
	if err := n.UpsertEdge("c", "d", network.FromGroup("team")); err != nil {
		t.Fatal(err)
	}

	l, err := Compute(n, Options{Seed: 3})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	dist := func(a, b string) float64 {
		return math.Hypot(l[a].X-l[b].X, l[a].Y-l[b].Y)
	}
	if dist("a", "b") >= dist("c", "d") {
		t.Errorf("explicit pair (%g) not closer than inferred pair (%g)",
			dist("a", "b"), dist("c", "d"))
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "Defaults", opts: Options{}},
		{name: "NegativeIterations", opts: Options{Iterations: -1}, wantErr: true},
		{name: "NegativeSpringK", opts: Options{SpringK: -0.5}, wantErr: true},
		{name: "NegativeGroupWeight", opts: Options{GroupWeight: -0.05}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if tt.opts.Seed == 0 || tt.opts.Iterations == 0 || tt.opts.GroupWeight == 0 || tt.opts.Threshold == 0 {
					t.Error("defaults not applied")
				}
			}
		})
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	l, err := Compute(chainNetwork(t, "a", "b", "c"), Options{})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteLayout(l, &buf); err != nil {
		t.Fatalf("WriteLayout failed: %v", err)
	}
	back, err := ReadLayout(&buf)
	if err != nil {
		t.Fatalf("ReadLayout failed: %v", err)
	}

	if len(back) != len(l) {
		t.Fatalf("round trip lost positions: %d vs %d", len(back), len(l))
	}
	for id, p := range l {
		if back[id] != p {
			t.Errorf("node %s changed: %+v vs %+v", id, back[id], p)
		}
	}
}
