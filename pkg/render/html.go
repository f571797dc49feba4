package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/contactviz/contactviz/pkg/scene"
)

// HTMLOptions configures the interactive document.
type HTMLOptions struct {
	// Title heads the document; empty uses a generic default.
	Title string
}

// searchScript is the embedded search/highlight and edge-view behavior. It
// is a fixed template: the named placeholders are substituted with the
// scene's styling values at generation time, and the array placeholders
// with index-aligned lists (node identifiers and labels; per-edge explicit
// flag and membership columns).
//
// Search: a query exactly matching an identifier selects that node (grown
// and opaque) and unselects every other; a non-matching query changes
// nothing; Reset clears the input and unselects everything.
//
// Views: "all" shows every connection, "contacts" only recorded contacts,
// "groups" only membership-inferred ones, and "column:<name>" the inferred
// connections of that one membership column.
const searchScript = `
    var nodeIDs = __NODE_IDS__;
    var nodeLabels = __NODE_LABELS__;

    function applySelection(selectedIndex) {
      for (var i = 0; i < nodeIDs.length; i++) {
        var el = document.getElementById('node-' + i);
        if (!el) continue;
        var selected = (i === selectedIndex);
        el.setAttribute('r', selected ? NODE_SIZE_SELECTED : NODE_SIZE_UNSELECTED);
        el.setAttribute('fill-opacity', selected ? NODE_ALPHA_SELECTED : NODE_ALPHA_UNSELECTED);
      }
    }

    var searchBox = document.getElementById('search');
    searchBox.addEventListener('input', function () {
      var query = searchBox.value.trim();
      if (nodeIDs.includes(query)) {
        applySelection(nodeIDs.indexOf(query));
      }
    });

    document.getElementById('reset').addEventListener('click', function () {
      searchBox.value = '';
      applySelection(-1);
    });

    var edgeExplicit = __EDGE_EXPLICIT__;
    var edgeColumns = __EDGE_COLUMNS__;

    function edgeVisible(view, i) {
      if (view === 'all') return true;
      if (view === 'contacts') return edgeExplicit[i];
      if (view === 'groups') return !edgeExplicit[i];
      if (view.indexOf('column:') === 0) {
        return !edgeExplicit[i] && edgeColumns[i].indexOf(view.slice(7)) !== -1;
      }
      return true;
    }

    function applyView(view) {
      for (var i = 0; i < edgeExplicit.length; i++) {
        var el = document.getElementById('edge-' + i);
        if (!el) continue;
        el.style.display = edgeVisible(view, i) ? '' : 'none';
      }
      var buttons = document.querySelectorAll('.views button');
      for (var j = 0; j < buttons.length; j++) {
        buttons[j].classList.toggle('active', buttons[j].getAttribute('data-view') === view);
      }
    }

    var viewButtons = document.querySelectorAll('.views button');
    for (var k = 0; k < viewButtons.length; k++) {
      viewButtons[k].addEventListener('click', function () {
        applyView(this.getAttribute('data-view'));
      });
    }
`

const documentCSS = `
    body { font-family: sans-serif; margin: 20px; background: #fdfdfd; }
    .toolbar { margin-bottom: 12px; }
    .toolbar input { font-size: 14px; padding: 6px 8px; width: 260px; }
    .toolbar button { font-size: 14px; padding: 6px 14px; margin-left: 8px; }
    .views { display: inline-block; margin-left: 16px; }
    .views button { font-size: 13px; padding: 5px 10px; margin-left: 4px; }
    .views button.active { background: #65ADFF; color: #ffffff; }
    svg { border: 1px solid #dddddd; background: #ffffff; }
    .instructions { margin-top: 12px; color: #555555; font-size: 13px; max-width: 900px; }
    .node { transition: r 0.15s ease, fill-opacity 0.15s ease; }
`

const instructions = `Type an identifier into the search box to highlight that individual; ` +
	`everyone else fades out. Searches only react to exact identifier matches. ` +
	`Press Reset to return to the full network. Hover a circle for details. ` +
	`Solid lines are recorded contacts; dashed lines are inferred from shared group membership. ` +
	`The view buttons show all connections, recorded contacts only, inferred connections only, ` +
	`or those of a single membership column.`

// HTML renders the scene as one self-contained interactive document: inline
// SVG, a search input and reset button, and the embedded highlight script.
// No external resources are referenced.
func HTML(sc *scene.Scene, opts HTMLOptions) ([]byte, error) {
	title := opts.Title
	if title == "" {
		title = "Contact Network"
	}

	script, err := substituteScript(sc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	buf.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(&buf, "<style>%s</style>\n", documentCSS)
	buf.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&buf, "<h1>%s</h1>\n", html.EscapeString(title))

	buf.WriteString("<div class=\"toolbar\">\n")
	buf.WriteString("  <input id=\"search\" type=\"text\" placeholder=\"Search identifier\" autocomplete=\"off\">\n")
	buf.WriteString("  <button id=\"reset\" type=\"button\">Reset</button>\n")
	buf.WriteString("  <span class=\"views\">\n")
	buf.WriteString("    <button type=\"button\" data-view=\"all\" class=\"active\">All</button>\n")
	buf.WriteString("    <button type=\"button\" data-view=\"contacts\">Contact Traces</button>\n")
	buf.WriteString("    <button type=\"button\" data-view=\"groups\">Groups</button>\n")
	for _, col := range sc.Columns {
		fmt.Fprintf(&buf, "    <button type=\"button\" data-view=\"column:%s\">%s</button>\n",
			html.EscapeString(col), html.EscapeString(col))
	}
	buf.WriteString("  </span>\n")
	buf.WriteString("</div>\n")

	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		sc.Width, sc.Height, sc.Width, sc.Height)
	writeScene(&buf, sc)
	buf.WriteString("</svg>\n")

	fmt.Fprintf(&buf, "<p class=\"instructions\">%s</p>\n", html.EscapeString(instructions))

	fmt.Fprintf(&buf, "<script>%s</script>\n", script)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// substituteScript fills the script template's placeholders from the scene.
// Styling values come from the first node (the encoder styles all nodes
// uniformly); an empty scene falls back to the defaults.
func substituteScript(sc *scene.Scene) (string, error) {
	ids := make([]string, len(sc.Nodes))
	labels := make([]string, len(sc.Nodes))
	for i, n := range sc.Nodes {
		ids[i] = n.SearchKey
		labels[i] = n.Label
	}

	explicit := make([]bool, len(sc.Edges))
	columns := make([][]string, len(sc.Edges))
	for i, e := range sc.Edges {
		explicit[i] = e.Explicit
		columns[i] = e.Columns
		if columns[i] == nil {
			columns[i] = []string{}
		}
	}

	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode identifiers: %w", err)
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("encode labels: %w", err)
	}
	explicitJSON, err := json.Marshal(explicit)
	if err != nil {
		return "", fmt.Errorf("encode edge kinds: %w", err)
	}
	columnsJSON, err := json.Marshal(columns)
	if err != nil {
		return "", fmt.Errorf("encode edge columns: %w", err)
	}

	style := sc.Style
	if err := style.ValidateAndSetDefaults(); err != nil {
		return "", err
	}

	r := strings.NewReplacer(
		"__NODE_IDS__", string(idsJSON),
		"__NODE_LABELS__", string(labelsJSON),
		"__EDGE_EXPLICIT__", string(explicitJSON),
		"__EDGE_COLUMNS__", string(columnsJSON),
		"NODE_SIZE_SELECTED", formatNum(style.NodeSizeSelected),
		"NODE_SIZE_UNSELECTED", formatNum(style.NodeSizeUnselected),
		"NODE_ALPHA_SELECTED", formatNum(style.NodeAlphaSelected),
		"NODE_ALPHA_UNSELECTED", formatNum(style.NodeAlphaUnselected),
	)
	return r.Replace(searchScript), nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
