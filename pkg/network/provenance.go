package network

import (
	"fmt"
	"slices"
	"strings"
)

// SourceKind distinguishes the two ways an edge can enter the network.
type SourceKind int

const (
	// SourceContact marks an edge backed by a row of the contacts table.
	SourceContact SourceKind = iota
	// SourceGroup marks an edge inferred from shared membership-column values.
	// Group sources carry the column that produced them.
	SourceGroup
)

// Source identifies one reason an edge exists: an explicit contact record,
// or co-membership under a specific membership column. Modeling the reason
// as a struct rather than a free-form string keeps the variant set closed.
type Source struct {
	Kind   SourceKind
	Column string // membership column name; empty for SourceContact
}

// Explicit returns the contact-record source.
func Explicit() Source { return Source{Kind: SourceContact} }

// FromGroup returns the source for co-membership under column.
func FromGroup(column string) Source {
	return Source{Kind: SourceGroup, Column: column}
}

// Tag returns the canonical string form: "explicit" or "group:<column>".
func (s Source) Tag() string {
	if s.Kind == SourceContact {
		return "explicit"
	}
	return "group:" + s.Column
}

// ParseSource decodes a canonical tag back into a Source.
// Returns false for tags that are neither "explicit" nor "group:<column>".
func ParseSource(tag string) (Source, bool) {
	if tag == "explicit" {
		return Explicit(), true
	}
	if column, ok := strings.CutPrefix(tag, "group:"); ok && column != "" {
		return FromGroup(column), true
	}
	return Source{}, false
}

// Provenance is the set of sources justifying an edge's existence.
// An identifier pair appears in the network at most once regardless of how
// many sources produced it; the set records every contributing source.
type Provenance map[Source]struct{}

// NewProvenance creates a provenance set from the given sources.
func NewProvenance(sources ...Source) Provenance {
	p := make(Provenance, len(sources))
	for _, s := range sources {
		p[s] = struct{}{}
	}
	return p
}

// Add records a source. Adding a source twice has no effect.
func (p Provenance) Add(s Source) { p[s] = struct{}{} }

// Has reports whether the set contains the source.
func (p Provenance) Has(s Source) bool {
	_, ok := p[s]
	return ok
}

// HasExplicit reports whether any contact record backs the edge.
func (p Provenance) HasExplicit() bool { return p.Has(Explicit()) }

// InferredOnly reports whether the edge exists solely through co-membership.
func (p Provenance) InferredOnly() bool { return len(p) > 0 && !p.HasExplicit() }

// Columns returns the membership columns among the sources, sorted.
// Empty when the edge is backed by contact records alone.
func (p Provenance) Columns() []string {
	var cols []string
	for s := range p {
		if s.Kind == SourceGroup {
			cols = append(cols, s.Column)
		}
	}
	slices.Sort(cols)
	return cols
}

// Tags returns the canonical tags in sorted order for stable serialization.
func (p Provenance) Tags() []string {
	tags := make([]string, 0, len(p))
	for s := range p {
		tags = append(tags, s.Tag())
	}
	slices.Sort(tags)
	return tags
}

// String renders the provenance as a comma-joined tag list.
func (p Provenance) String() string {
	return fmt.Sprintf("{%s}", strings.Join(p.Tags(), ","))
}
