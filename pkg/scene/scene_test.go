package scene

import (
	"strings"
	"testing"

	"github.com/contactviz/contactviz/pkg/layout"
	"github.com/contactviz/contactviz/pkg/network"
	"github.com/contactviz/contactviz/pkg/table"
)

func buildNetwork(t *testing.T, peopleRows [][]string, contactRows [][]string, opts network.BuildOptions) *network.Network {
	t.Helper()
	people, err := table.New([]string{"id", "name", "team"}, peopleRows)
	if err != nil {
		t.Fatalf("people table: %v", err)
	}
	contacts, err := table.New([]string{"source", "target"}, contactRows)
	if err != nil {
		t.Fatalf("contacts table: %v", err)
	}
	n, err := network.Build(people, contacts, opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return n
}

func testNetwork(t *testing.T) *network.Network {
	return buildNetwork(t,
		[][]string{
			{"A", "Alice", "x"},
			{"B", "Bob", "x"},
			{"C", "Carol", "y"},
		},
		[][]string{{"A", "C"}},
		network.BuildOptions{LabelColumn: "name", MembershipColumns: []string{"team"}})
}

func positionsFor(t *testing.T, n *network.Network) layout.Layout {
	t.Helper()
	pos, err := layout.Compute(n, layout.Options{})
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	return pos
}

func TestEncode(t *testing.T) {
	n := testNetwork(t)
	sc, err := Encode(n, positionsFor(t, n), Style{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	t.Run("NodesIndexAligned", func(t *testing.T) {
		if len(sc.Nodes) != n.NodeCount() {
			t.Fatalf("scene has %d nodes, want %d", len(sc.Nodes), n.NodeCount())
		}
		for i, p := range n.People() {
			if sc.Nodes[i].ID != p.ID {
				t.Errorf("node %d = %q, want %q", i, sc.Nodes[i].ID, p.ID)
			}
			if sc.Nodes[i].SearchKey != p.ID {
				t.Errorf("node %d search key = %q, want %q", i, sc.Nodes[i].SearchKey, p.ID)
			}
		}
	})

	t.Run("DefaultStyling", func(t *testing.T) {
		if sc.Width != DefaultWidth || sc.Height != DefaultHeight {
			t.Errorf("canvas %dx%d, want %dx%d", sc.Width, sc.Height, DefaultWidth, DefaultHeight)
		}
		for _, node := range sc.Nodes {
			if node.Size != DefaultNodeSizeUnselected {
				t.Errorf("node %s size = %g, want %g", node.ID, node.Size, DefaultNodeSizeUnselected)
			}
			if node.Alpha != DefaultNodeAlphaUnselected {
				t.Errorf("node %s alpha = %g, want %g", node.ID, node.Alpha, DefaultNodeAlphaUnselected)
			}
			if node.Color != DefaultBaseColor {
				t.Errorf("node %s color = %s, want %s", node.ID, node.Color, DefaultBaseColor)
			}
		}
	})

	t.Run("EdgeEndpointsMatchNodes", func(t *testing.T) {
		if len(sc.Edges) != n.EdgeCount() {
			t.Fatalf("scene has %d edges, want %d", len(sc.Edges), n.EdgeCount())
		}
		for _, e := range sc.Edges {
			from, to := sc.Nodes[e.From], sc.Nodes[e.To]
			if e.X1 != from.X || e.Y1 != from.Y || e.X2 != to.X || e.Y2 != to.Y {
				t.Errorf("edge %d-%d coordinates disagree with its endpoints", e.From, e.To)
			}
		}
	})

	t.Run("InferredEdgesDashed", func(t *testing.T) {
		byPair := make(map[[2]string]Edge)
		for _, e := range sc.Edges {
			byPair[[2]string{sc.Nodes[e.From].ID, sc.Nodes[e.To].ID}] = e
		}
		explicit, ok := byPair[[2]string{"A", "C"}]
		if !ok {
			t.Fatal("missing explicit edge A-C")
		}
		if explicit.Dashed {
			t.Error("explicit edge should be solid")
		}
		inferred, ok := byPair[[2]string{"A", "B"}]
		if !ok {
			t.Fatal("missing inferred edge A-B")
		}
		if !inferred.Dashed {
			t.Error("inferred-only edge should be dashed")
		}
		if inferred.Alpha >= explicit.Alpha {
			t.Errorf("inferred alpha %g should be fainter than explicit %g", inferred.Alpha, explicit.Alpha)
		}
	})

	t.Run("EdgeViews", func(t *testing.T) {
		if len(sc.Columns) != 1 || sc.Columns[0] != "team" {
			t.Fatalf("scene columns = %v, want [team]", sc.Columns)
		}
		byPair := make(map[[2]string]Edge)
		for _, e := range sc.Edges {
			byPair[[2]string{sc.Nodes[e.From].ID, sc.Nodes[e.To].ID}] = e
		}
		explicit := byPair[[2]string{"A", "C"}]
		if !explicit.Explicit {
			t.Error("contact-backed edge should be marked explicit")
		}
		if len(explicit.Columns) != 0 {
			t.Errorf("contact-backed edge columns = %v, want none", explicit.Columns)
		}
		inferred := byPair[[2]string{"A", "B"}]
		if inferred.Explicit {
			t.Error("inferred-only edge should not be marked explicit")
		}
		if len(inferred.Columns) != 1 || inferred.Columns[0] != "team" {
			t.Errorf("inferred edge columns = %v, want [team]", inferred.Columns)
		}
	})

	t.Run("NodesInsideCanvas", func(t *testing.T) {
		for _, node := range sc.Nodes {
			if node.X < 0 || node.X > float64(sc.Width) || node.Y < 0 || node.Y > float64(sc.Height) {
				t.Errorf("node %s at (%g, %g) outside %dx%d canvas", node.ID, node.X, node.Y, sc.Width, sc.Height)
			}
		}
	})

	t.Run("Tooltip", func(t *testing.T) {
		tip := sc.Nodes[0].Tooltip
		if !strings.HasPrefix(tip, "A (Alice)") {
			t.Errorf("tooltip = %q, want it to open with the id and label", tip)
		}
		if !strings.Contains(tip, "team: x") {
			t.Errorf("tooltip = %q, want the team attribute listed", tip)
		}
	})
}

func TestEncodeSingleNode(t *testing.T) {
	n := buildNetwork(t,
		[][]string{{"solo", "", ""}}, nil,
		network.BuildOptions{})
	sc, err := Encode(n, positionsFor(t, n), Style{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(sc.Nodes) != 1 || len(sc.Edges) != 0 {
		t.Fatalf("scene = %d nodes / %d edges, want 1/0", len(sc.Nodes), len(sc.Edges))
	}
	node := sc.Nodes[0]
	if node.X != float64(sc.Width)/2 || node.Y != float64(sc.Height)/2 {
		t.Errorf("single node at (%g, %g), want canvas center", node.X, node.Y)
	}
}

func TestEncodeMissingPosition(t *testing.T) {
	n := testNetwork(t)
	if _, err := Encode(n, layout.Layout{}, Style{}); err == nil {
		t.Error("expected an error for a layout missing positions")
	}
}

func TestEncodeCustomStyle(t *testing.T) {
	n := testNetwork(t)
	style := Style{
		Width:               800,
		Height:              400,
		NodeSizeUnselected:  5,
		NodeAlphaUnselected: 0.7,
		BaseColor:           "#112233",
	}
	sc, err := Encode(n, positionsFor(t, n), style)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if sc.Width != 800 || sc.Height != 400 {
		t.Errorf("canvas %dx%d, want 800x400", sc.Width, sc.Height)
	}
	for _, node := range sc.Nodes {
		if node.Size != 5 || node.Alpha != 0.7 || node.Color != "#112233" {
			t.Errorf("node %s styling = %+v, want custom values", node.ID, node)
		}
	}
}

func TestStyleValidation(t *testing.T) {
	tests := []struct {
		name    string
		style   Style
		wantErr bool
	}{
		{name: "Defaults", style: Style{}},
		{name: "NegativeWidth", style: Style{Width: -1}, wantErr: true},
		{name: "AlphaAboveOne", style: Style{NodeAlphaSelected: 1.5}, wantErr: true},
		{name: "NegativeSize", style: Style{NodeSizeSelected: -3}, wantErr: true},
		{name: "WidthSwallowedByMargin", style: Style{Width: 60, Height: 300}, wantErr: true},
		{name: "HeightSwallowedByMargin", style: Style{Width: 300, Height: 80}, wantErr: true},
		{name: "NegativeMargin", style: Style{Margin: -5}, wantErr: true},
		{name: "CustomMarginFits", style: Style{Width: 300, Height: 200, Margin: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.style.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAssignColors(t *testing.T) {
	n := buildNetwork(t,
		[][]string{
			{"A", "", "x"},
			{"B", "", "x"},
			{"C", "", "y"},
			{"D", "", "y"},
			{"E", "", ""},
		},
		nil,
		network.BuildOptions{MembershipColumns: []string{"team"}})

	t.Run("NoColorColumn", func(t *testing.T) {
		colors := assignColors(n, Style{BaseColor: DefaultBaseColor})
		for id, c := range colors {
			if c != DefaultBaseColor {
				t.Errorf("node %s color = %s, want base", id, c)
			}
		}
	})

	t.Run("PerGroupColors", func(t *testing.T) {
		colors := assignColors(n, Style{BaseColor: DefaultBaseColor, ColorColumn: "team"})
		if colors["A"] != colors["B"] {
			t.Error("members of the same group should share a color")
		}
		if colors["A"] == colors["C"] {
			t.Error("distinct groups should get distinct colors")
		}
		if colors["E"] != DefaultBaseColor {
			t.Error("ungrouped individual should keep the base color")
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		style := Style{BaseColor: DefaultBaseColor, ColorColumn: "team"}
		a := assignColors(n, style)
		b := assignColors(n, style)
		for id := range a {
			if a[id] != b[id] {
				t.Errorf("node %s color changed between runs", id)
			}
		}
	})

	t.Run("PinnedGroupColor", func(t *testing.T) {
		colors := assignColors(n, Style{
			BaseColor:   DefaultBaseColor,
			ColorColumn: "team",
			GroupColors: map[string]string{"x": "#DC0000"},
		})
		if colors["A"] != "#DC0000" || colors["B"] != "#DC0000" {
			t.Errorf("pinned group should use the configured color, got %s/%s", colors["A"], colors["B"])
		}
		if colors["C"] == "#DC0000" {
			t.Error("unpinned group should not inherit the pinned color")
		}
		if colors["E"] != DefaultBaseColor {
			t.Error("ungrouped individual should keep the base color")
		}
	})
}
