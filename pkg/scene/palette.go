package scene

import "github.com/contactviz/contactviz/pkg/network"

// palette is the categorical color cycle for membership-based coloring.
// Values map onto colors by first appearance in the group order, wrapping
// when there are more values than colors, so assignment is deterministic.
var palette = []string{
	"#65ADFF", // base blue
	"#FF7F0E",
	"#2CA02C",
	"#D62728",
	"#9467BD",
	"#8C564B",
	"#E377C2",
	"#7F7F7F",
	"#BCBD22",
	"#17BECF",
}

// assignColors maps every identifier to its fill color. Without a color
// column every node gets the base color. With one, each distinct value of
// that column gets the next palette color and its members inherit it;
// individuals with no value under the column keep the base color.
//
// An individual in several groups of the same column cannot occur (a cell
// has one value), so the assignment is unambiguous.
func assignColors(n *network.Network, style Style) map[string]string {
	colors := make(map[string]string, n.NodeCount())
	for _, p := range n.People() {
		colors[p.ID] = style.BaseColor
	}
	if style.ColorColumn == "" {
		return colors
	}

	next := 0
	for _, g := range n.Groups() {
		if g.Column != style.ColorColumn {
			continue
		}
		c, pinned := style.GroupColors[g.Value]
		if !pinned {
			c = palette[next%len(palette)]
			next++
		}
		for _, id := range g.Members {
			colors[id] = c
		}
	}
	return colors
}
