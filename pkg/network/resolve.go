package network

import (
	"strings"

	"github.com/contactviz/contactviz/pkg/errors"
	"github.com/contactviz/contactviz/pkg/table"
)

// BuildOptions configures identity resolution and edge assembly.
type BuildOptions struct {
	// IDColumn names the people-table identifier column. Default "id".
	IDColumn string

	// SourceColumn and TargetColumn name the two contacts-table identifier
	// columns. Defaults "source" and "target".
	SourceColumn string
	TargetColumn string

	// LabelColumn optionally names a people-table column whose value becomes
	// the node display label (empty cells leave the label unset).
	LabelColumn string

	// MembershipColumns are the people-table columns whose shared values
	// induce inferred edges. Empty means no inference.
	MembershipColumns []string
}

// withDefaults fills unset column names.
func (o BuildOptions) withDefaults() BuildOptions {
	if o.IDColumn == "" {
		o.IDColumn = "id"
	}
	if o.SourceColumn == "" {
		o.SourceColumn = "source"
	}
	if o.TargetColumn == "" {
		o.TargetColumn = "target"
	}
	return o
}

// Resolve validates identifiers across both tables and produces the network
// seeded with one person per people-table row (no edges yet), plus the raw
// contact pairs in contacts-table row order.
//
// Resolution is pure validation and normalization. It fails with:
//   - INVALID_SCHEMA when a required column is missing
//   - EMPTY_INPUT when the people table has no rows
//   - DUPLICATE_IDENTIFIER when two people rows share an identifier
//   - UNKNOWN_INDIVIDUAL when a contact row references an identifier absent
//     from the people table (dropping the row would misrepresent the network)
func Resolve(people, contacts *table.Table, opts BuildOptions) (*Network, []Pair, error) {
	opts = opts.withDefaults()

	if err := people.RequireColumns(opts.IDColumn); err != nil {
		return nil, nil, err
	}
	if opts.LabelColumn != "" {
		if err := people.RequireColumns(opts.LabelColumn); err != nil {
			return nil, nil, err
		}
	}
	for _, col := range opts.MembershipColumns {
		if err := people.RequireColumns(col); err != nil {
			return nil, nil, err
		}
	}
	if err := contacts.RequireColumns(opts.SourceColumn, opts.TargetColumn); err != nil {
		return nil, nil, err
	}
	if people.Len() == 0 {
		return nil, nil, errors.New(errors.ErrCodeEmptyInput, "people table has no rows")
	}

	n := NewNetwork()
	for row := 0; row < people.Len(); row++ {
		id := strings.TrimSpace(people.Cell(row, opts.IDColumn))
		if id == "" {
			return nil, nil, errors.New(errors.ErrCodeInvalidSchema,
				"people row %d has an empty identifier", row+1)
		}

		attrs := make(map[string]any)
		for _, col := range people.Columns() {
			if col == opts.IDColumn {
				continue
			}
			attrs[col] = table.Coerce(people.Cell(row, col))
		}

		p := Person{ID: id, Attrs: attrs}
		if opts.LabelColumn != "" {
			p.Label = people.Cell(row, opts.LabelColumn)
		}
		if err := n.AddPerson(p); err != nil {
			return nil, nil, errors.New(errors.ErrCodeDuplicateIdentifier,
				"people table defines identifier %q more than once", id)
		}
	}

	pairs := make([]Pair, 0, contacts.Len())
	for row := 0; row < contacts.Len(); row++ {
		src := strings.TrimSpace(contacts.Cell(row, opts.SourceColumn))
		dst := strings.TrimSpace(contacts.Cell(row, opts.TargetColumn))
		for _, id := range []string{src, dst} {
			if _, ok := n.Person(id); !ok {
				return nil, nil, errors.New(errors.ErrCodeUnknownIndividual,
					"contacts row %d references identifier %q not present in the people table", row+1, id)
			}
		}
		pairs = append(pairs, PairOf(src, dst))
	}

	return n, pairs, nil
}
