package pipeline

import (
	"context"
	"encoding/json"

	"github.com/contactviz/contactviz/pkg/cache"
	"github.com/contactviz/contactviz/pkg/errors"
	"github.com/contactviz/contactviz/pkg/layout"
	"github.com/contactviz/contactviz/pkg/network"
	"github.com/contactviz/contactviz/pkg/render"
	"github.com/contactviz/contactviz/pkg/scene"
	"github.com/contactviz/contactviz/pkg/table"
)

// loadTables returns the input tables, reading CSV files when no in-memory
// tables were supplied.
func loadTables(opts Options) (people, contacts *table.Table, err error) {
	people = opts.People
	if people == nil {
		people, err = table.LoadCSV(opts.PeoplePath)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load people table")
		}
	}
	contacts = opts.Contacts
	if contacts == nil {
		contacts, err = table.LoadCSV(opts.ContactsPath)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load contacts table")
		}
	}
	return people, contacts, nil
}

// tableHash is the content hash of a table for cache keying. The encoding
// covers column names and every cell, so any edit changes the hash.
func tableHash(t *table.Table) string {
	type doc struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}
	d := doc{Columns: t.Columns(), Rows: make([][]string, t.Len())}
	for row := 0; row < t.Len(); row++ {
		cells := make([]string, len(d.Columns))
		for i, col := range d.Columns {
			cells[i] = t.Cell(row, col)
		}
		d.Rows[row] = cells
	}
	data, _ := json.Marshal(d)
	return cache.Hash(data)
}

// buildNetwork runs the build stage without caching.
func buildNetwork(people, contacts *table.Table, opts Options) (*network.Network, error) {
	return network.Build(people, contacts, opts.BuildOptions())
}

// computeLayout runs the layout stage without caching.
func computeLayout(n *network.Network, opts Options) (layout.Layout, error) {
	return layout.Compute(n, opts.LayoutOptions())
}

// renderArtifacts renders every requested format from the network and its
// layout. The ctx is only consulted by the PNG backend, which shells into
// Graphviz's WASM runtime.
func renderArtifacts(ctx context.Context, n *network.Network, pos layout.Layout, opts Options) (map[string][]byte, error) {
	var sc *scene.Scene
	needScene := false
	for _, f := range opts.Formats {
		if f == FormatHTML || f == FormatSVG {
			needScene = true
		}
	}
	if needScene {
		var err error
		sc, err = scene.Encode(n, pos, opts.Style())
		if err != nil {
			return nil, err
		}
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatHTML:
			data, err := render.HTML(sc, render.HTMLOptions{Title: opts.Title})
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "render html")
			}
			artifacts[format] = data
		case FormatSVG:
			artifacts[format] = render.SVG(sc)
		case FormatDOT:
			artifacts[format] = []byte(render.ToDOT(n))
		case FormatPNG:
			data, err := render.PNG(ctx, render.ToDOT(n))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "render png")
			}
			artifacts[format] = data
		case FormatJSON:
			data, err := network.MarshalNetwork(n)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize network")
			}
			artifacts[format] = data
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
		}
	}
	return artifacts, nil
}
