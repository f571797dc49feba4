package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/contactviz/contactviz/pkg/layout"
	"github.com/contactviz/contactviz/pkg/network"
	"github.com/contactviz/contactviz/pkg/scene"
	"github.com/contactviz/contactviz/pkg/table"
)

func testScene(t *testing.T, style scene.Style) *scene.Scene {
	t.Helper()
	people, err := table.New(
		[]string{"id", "name", "team"},
		[][]string{
			{"A", "Alice", "x"},
			{"B", "Bob", "x"},
			{"C", "Carol", "y"},
		})
	if err != nil {
		t.Fatal(err)
	}
	contacts, err := table.New([]string{"source", "target"}, [][]string{{"A", "C"}})
	if err != nil {
		t.Fatal(err)
	}
	n, err := network.Build(people, contacts, network.BuildOptions{
		LabelColumn:       "name",
		MembershipColumns: []string{"team"},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	pos, err := layout.Compute(n, layout.Options{})
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	sc, err := scene.Encode(n, pos, style)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return sc
}

func TestSVG(t *testing.T) {
	sc := testScene(t, scene.Style{})
	out := string(SVG(sc))

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Error("output does not open with an svg element")
	}
	if strings.Contains(out, "<script") {
		t.Error("static SVG must not embed a script")
	}
	for i := range sc.Nodes {
		if !strings.Contains(out, fmt.Sprintf(`id="node-%d"`, i)) {
			t.Errorf("missing circle for node %d", i)
		}
	}
	if got := strings.Count(out, "<line"); got != len(sc.Edges) {
		t.Errorf("rendered %d lines, want %d", got, len(sc.Edges))
	}
	for i := range sc.Edges {
		if !strings.Contains(out, fmt.Sprintf(`id="edge-%d"`, i)) {
			t.Errorf("missing line for edge %d", i)
		}
	}
	if got := strings.Count(out, "stroke-dasharray"); got != 1 {
		t.Errorf("rendered %d dashed edges, want 1 (the inferred pair)", got)
	}
	for _, label := range []string{"Alice", "Bob", "Carol"} {
		if !strings.Contains(out, ">"+label+"</text>") {
			t.Errorf("missing label text %q", label)
		}
	}
	if !strings.Contains(out, "<title>") {
		t.Error("missing hover title elements")
	}
}

func TestSVGEscapesContent(t *testing.T) {
	people, err := table.New([]string{"id", "name"}, [][]string{{"a<b", `say "hi" & bye`}})
	if err != nil {
		t.Fatal(err)
	}
	contacts, err := table.New([]string{"source", "target"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	n, err := network.Build(people, contacts, network.BuildOptions{LabelColumn: "name"})
	if err != nil {
		t.Fatal(err)
	}
	pos, err := layout.Compute(n, layout.Options{})
	if err != nil {
		t.Fatal(err)
	}
	sc, err := scene.Encode(n, pos, scene.Style{})
	if err != nil {
		t.Fatal(err)
	}

	out := string(SVG(sc))
	if strings.Contains(out, `>say "hi" & bye<`) {
		t.Error("label not XML-escaped")
	}
	if !strings.Contains(out, "say &#34;hi&#34; &amp; bye") {
		t.Errorf("escaped label missing from output:\n%s", out)
	}
}

func TestHTML(t *testing.T) {
	sc := testScene(t, scene.Style{})
	out, err := HTML(sc, HTMLOptions{Title: "Ward 7 contacts"})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	doc := string(out)

	t.Run("SelfContained", func(t *testing.T) {
		for _, frag := range []string{"<!DOCTYPE html>", "<svg", "<script>", "id=\"search\"", "id=\"reset\""} {
			if !strings.Contains(doc, frag) {
				t.Errorf("document missing %q", frag)
			}
		}
		for _, external := range []string{"<link", "src=", `href="http`} {
			if strings.Contains(doc, external) {
				t.Errorf("document references external resource via %q", external)
			}
		}
	})

	t.Run("Title", func(t *testing.T) {
		if !strings.Contains(doc, "<title>Ward 7 contacts</title>") {
			t.Error("missing document title")
		}
	})

	t.Run("PlaceholdersSubstituted", func(t *testing.T) {
		for _, ph := range []string{
			"NODE_SIZE_SELECTED", "NODE_SIZE_UNSELECTED",
			"NODE_ALPHA_SELECTED", "NODE_ALPHA_UNSELECTED",
			"__NODE_IDS__", "__NODE_LABELS__",
			"__EDGE_EXPLICIT__", "__EDGE_COLUMNS__",
		} {
			if strings.Contains(doc, ph) {
				t.Errorf("placeholder %s left unsubstituted", ph)
			}
		}
	})

	t.Run("ParallelArrays", func(t *testing.T) {
		ids := extractArray(t, doc, "nodeIDs")
		labels := extractArray(t, doc, "nodeLabels")
		if len(ids) != len(sc.Nodes) || len(labels) != len(sc.Nodes) {
			t.Fatalf("arrays %d/%d entries, want %d", len(ids), len(labels), len(sc.Nodes))
		}
		for i, n := range sc.Nodes {
			if ids[i] != n.SearchKey {
				t.Errorf("ids[%d] = %q, want %q", i, ids[i], n.SearchKey)
			}
			if labels[i] != n.Label {
				t.Errorf("labels[%d] = %q, want %q", i, labels[i], n.Label)
			}
		}
	})

	t.Run("StyleValuesEmbedded", func(t *testing.T) {
		// Default styling: selected 16/1, unselected 9/0.4.
		for _, frag := range []string{
			"selected ? 16 : 9",
			"selected ? 1 : 0.4",
		} {
			if !strings.Contains(doc, frag) {
				t.Errorf("script missing substituted values %q", frag)
			}
		}
	})

	t.Run("Instructions", func(t *testing.T) {
		if !strings.Contains(doc, "Press Reset") {
			t.Error("missing instructions block")
		}
	})

	t.Run("EdgeViews", func(t *testing.T) {
		for _, frag := range []string{
			`data-view="all"`,
			`data-view="contacts"`,
			`data-view="groups"`,
			`data-view="column:team"`,
			">All<", ">Contact Traces<", ">Groups<", ">team<",
			"function applyView",
			`id="edge-0"`,
		} {
			if !strings.Contains(doc, frag) {
				t.Errorf("document missing %q", frag)
			}
		}
	})

	t.Run("EdgeArraysParallel", func(t *testing.T) {
		var explicit []bool
		extractJSON(t, doc, "edgeExplicit", &explicit)
		var columns [][]string
		extractJSON(t, doc, "edgeColumns", &columns)
		if len(explicit) != len(sc.Edges) || len(columns) != len(sc.Edges) {
			t.Fatalf("arrays %d/%d entries, want %d", len(explicit), len(columns), len(sc.Edges))
		}
		for i, e := range sc.Edges {
			if explicit[i] != e.Explicit {
				t.Errorf("explicit[%d] = %v, want %v", i, explicit[i], e.Explicit)
			}
			if len(columns[i]) != len(e.Columns) {
				t.Errorf("columns[%d] = %v, want %v", i, columns[i], e.Columns)
			}
		}
		// The test scene has one recorded contact and one inferred pair.
		if !slices.Contains(explicit, true) || !slices.Contains(explicit, false) {
			t.Errorf("explicit flags = %v, want both kinds present", explicit)
		}
	})
}

func TestHTMLCustomStyle(t *testing.T) {
	sc := testScene(t, scene.Style{
		NodeSizeSelected:    20,
		NodeSizeUnselected:  5,
		NodeAlphaSelected:   0.9,
		NodeAlphaUnselected: 0.2,
	})
	out, err := HTML(sc, HTMLOptions{})
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	doc := string(out)
	for _, frag := range []string{"selected ? 20 : 5", "selected ? 0.9 : 0.2"} {
		if !strings.Contains(doc, frag) {
			t.Errorf("script missing custom values %q", frag)
		}
	}
}

// extractArray pulls a JS array literal assigned to the named variable.
func extractArray(t *testing.T, doc, name string) []string {
	t.Helper()
	var out []string
	extractJSON(t, doc, name, &out)
	return out
}

// extractJSON decodes the JS literal assigned to the named variable.
func extractJSON(t *testing.T, doc, name string, out any) {
	t.Helper()
	re := regexp.MustCompile(`var ` + name + ` = (.*);`)
	m := re.FindStringSubmatch(doc)
	if m == nil {
		t.Fatalf("variable %s not found in document", name)
	}
	if err := json.Unmarshal([]byte(m[1]), out); err != nil {
		t.Fatalf("variable %s is not valid JSON: %v", name, err)
	}
}

func TestToDOT(t *testing.T) {
	people, err := table.New([]string{"id", "team"}, [][]string{{"A", "x"}, {"B", "x"}, {"C", ""}})
	if err != nil {
		t.Fatal(err)
	}
	contacts, err := table.New([]string{"source", "target"}, [][]string{{"A", "C"}, {"A", "C"}})
	if err != nil {
		t.Fatal(err)
	}
	n, err := network.Build(people, contacts, network.BuildOptions{MembershipColumns: []string{"team"}})
	if err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(n)
	if !strings.HasPrefix(dot, "graph contacts {") {
		t.Error("DOT output should be an undirected graph")
	}
	if !strings.Contains(dot, `"A" -- "C" [penwidth=2];`) {
		t.Errorf("missing weighted explicit edge:\n%s", dot)
	}
	if !strings.Contains(dot, `"A" -- "B" [style=dashed, color=grey];`) {
		t.Errorf("missing dashed inferred edge:\n%s", dot)
	}
	for _, id := range []string{`"A"`, `"B"`, `"C"`} {
		if !strings.Contains(dot, id) {
			t.Errorf("missing node %s", id)
		}
	}
}
