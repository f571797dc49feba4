// Package table provides the in-memory tabular input contract for contactviz.
//
// A [Table] is an ordered set of named columns with rows of raw string cells,
// typically loaded from CSV. Cell values stay untyped strings at this layer;
// use [Coerce] to map a cell onto the attribute value domain (string, number,
// boolean, or missing) when building node attributes.
package table

import (
	"strconv"

	"github.com/contactviz/contactviz/pkg/errors"
)

// Table is an immutable tabular dataset with named columns.
// Row order is preserved from the source and is significant: downstream
// stages derive the stable node index from people-table row order.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New creates a table from a header and rows.
// Returns INVALID_SCHEMA if the header is empty, a column name repeats,
// or any row width differs from the header width.
func New(columns []string, rows [][]string) (*Table, error) {
	if len(columns) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "table has no columns")
	}
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, errors.New(errors.ErrCodeInvalidSchema, "duplicate column %q", c)
		}
		index[c] = i
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, errors.New(errors.ErrCodeInvalidSchema,
				"row %d has %d cells, expected %d", i+1, len(r), len(columns))
		}
	}
	return &Table{columns: columns, index: index, rows: rows}, nil
}

// Columns returns the column names in declaration order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the table defines the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Cell returns the raw cell value at (row, column).
// Panics if the column does not exist; callers validate columns up front
// with HasColumn or RequireColumns.
func (t *Table) Cell(row int, column string) string {
	return t.rows[row][t.index[column]]
}

// RequireColumns returns INVALID_SCHEMA naming the first missing column.
func (t *Table) RequireColumns(names ...string) error {
	for _, n := range names {
		if !t.HasColumn(n) {
			return errors.New(errors.ErrCodeInvalidSchema, "missing required column %q", n)
		}
	}
	return nil
}

// Coerce maps a raw cell onto the attribute value domain:
// empty string → nil (missing), parseable number → float64,
// "true"/"false" → bool, anything else → string.
func Coerce(cell string) any {
	if cell == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(cell); err == nil {
		return b
	}
	return cell
}
