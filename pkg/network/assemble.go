package network

import (
	"strings"

	"github.com/contactviz/contactviz/pkg/errors"
	"github.com/contactviz/contactviz/pkg/table"
)

// Assemble merges the resolved contact pairs and the membership partition
// into the network's edge set.
//
// Explicit pairs insert or increment the edge for their unordered pair and
// tag it "explicit"; repeated identical pairs collapse to one edge whose
// weight counts the occurrences. Then, for each membership column
// independently, every group of two or more individuals sharing a
// non-missing value contributes all pairwise combinations tagged
// "group:<column>" - without touching the weight, so an inferred-only edge
// stays at weight 1. A pair produced by several sources yields exactly one
// edge carrying every source in its provenance set.
//
// Self-contacts are a data error (UNKNOWN individual errors were already
// ruled out by Resolve).
func Assemble(n *Network, contacts []Pair, people *table.Table, opts BuildOptions) error {
	opts = opts.withDefaults()

	for _, pair := range contacts {
		if err := n.UpsertEdge(pair.Lo, pair.Hi, Explicit()); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err,
				"contact pair %s-%s", pair.Lo, pair.Hi)
		}
	}

	for _, column := range opts.MembershipColumns {
		for _, g := range groupsByValue(n, people, column, opts.IDColumn) {
			// Singleton values imply no co-membership; an empty cell is
			// "no membership", not a shared value.
			if len(g.Members) < 2 {
				continue
			}
			n.groups = append(n.groups, g)
			for i := 0; i < len(g.Members); i++ {
				for j := i + 1; j < len(g.Members); j++ {
					if err := n.UpsertEdge(g.Members[i], g.Members[j], FromGroup(column)); err != nil {
						return errors.Wrap(errors.ErrCodeInternal, err,
							"inferred pair %s-%s (%s=%s)", g.Members[i], g.Members[j], column, g.Value)
					}
				}
			}
		}
	}

	return nil
}

// groupsByValue partitions individuals by their value under column,
// skipping missing values. Groups come back ordered by first appearance
// so assembly is deterministic.
func groupsByValue(n *Network, people *table.Table, column, idColumn string) []Group {
	byValue := make(map[string]int)
	var groups []Group

	for row := 0; row < people.Len(); row++ {
		value := people.Cell(row, column)
		if value == "" {
			continue
		}
		id := strings.TrimSpace(people.Cell(row, idColumn))
		if _, ok := n.Person(id); !ok {
			continue
		}
		idx, ok := byValue[value]
		if !ok {
			idx = len(groups)
			byValue[value] = idx
			groups = append(groups, Group{Column: column, Value: value})
		}
		groups[idx].Members = append(groups[idx].Members, id)
	}

	return groups
}

// Build runs Resolve then Assemble and returns the finished network.
// This is the single entry point the pipeline uses; the phases stay
// exported for callers that need only validation.
func Build(people, contacts *table.Table, opts BuildOptions) (*Network, error) {
	n, pairs, err := Resolve(people, contacts, opts)
	if err != nil {
		return nil, err
	}
	if err := Assemble(n, pairs, people, opts); err != nil {
		return nil, err
	}
	return n, nil
}
