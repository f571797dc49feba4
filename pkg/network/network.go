// Package network defines the contact network model and the two build
// phases that produce it: identity resolution and edge assembly.
//
// # Model
//
// A [Network] holds one [Person] per people-table row, at most one [Edge]
// per unordered identifier pair, and the [Group] partition induced by the
// configured membership columns. People keep their table row order - the
// stable node index that downstream scene encoding and the embedded search
// behavior rely on.
//
// # Build phases
//
// [Resolve] validates identifiers across both tables and produces the
// canonical roster plus the deduplicated contact pairs. [Assemble] merges
// explicit contacts with membership-inferred pairs into the edge set,
// recording per-edge [Provenance]. [Build] composes the two.
//
// The Network is built once per export and is read-only afterwards; it is
// safe for concurrent reads but not concurrent writes.
package network

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidID is returned by [Network.AddPerson] when the identifier
	// is empty. All individuals must have non-empty identifiers.
	ErrInvalidID = errors.New("identifier must not be empty")

	// ErrDuplicateID is returned by [Network.AddPerson] when a person with
	// the same identifier already exists.
	ErrDuplicateID = errors.New("duplicate identifier")

	// ErrUnknownEndpoint is returned by [Network.UpsertEdge] when an
	// endpoint does not exist as a person. Edges referencing unknown
	// identifiers are a data error, never silently dropped.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")

	// ErrSelfEdge is returned by [Network.UpsertEdge] for a pair whose
	// endpoints are the same individual.
	ErrSelfEdge = errors.New("edge endpoints must differ")
)

// Person is one individual from the people table: a unique identifier plus
// the row's attribute values (string, float64, bool, or nil for missing).
// A Person is created once during resolution and never mutated.
type Person struct {
	ID    string
	Label string         // display label; empty when no label column is set
	Attrs map[string]any // attribute-name → coerced value
}

// Pair is an unordered identifier pair in canonical (lexicographic) order.
// Use [PairOf] to construct one; Lo < Hi always holds.
type Pair struct {
	Lo, Hi string
}

// PairOf returns the canonical pair for two identifiers.
func PairOf(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{Lo: a, Hi: b}
}

// Edge is the unique network edge for an unordered identifier pair.
// Weight counts explicit contact records (1 when the edge is inferred-only);
// Provenance records every source that produced the pair.
type Edge struct {
	Pair       Pair
	Weight     int
	Provenance Provenance
}

// Group is the set of individuals sharing one value under one membership
// column. Groups are keyed by (column, value): textually identical values
// under different columns are distinct groups.
type Group struct {
	Column  string
	Value   string
	Members []string // identifiers in people-table order
}

// Network is the assembled contact network.
// The zero value is not usable - use [NewNetwork].
type Network struct {
	people  []*Person
	byID    map[string]*Person
	indexOf map[string]int
	edges   map[Pair]*Edge
	order   []Pair // edge insertion order, for deterministic traversal
	groups  []Group
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{
		byID:    make(map[string]*Person),
		indexOf: make(map[string]int),
		edges:   make(map[Pair]*Edge),
	}
}

// AddPerson appends a person, preserving insertion order.
// Returns ErrInvalidID for an empty identifier or ErrDuplicateID when the
// identifier is already present.
func (n *Network) AddPerson(p Person) error {
	if p.ID == "" {
		return ErrInvalidID
	}
	if _, exists := n.byID[p.ID]; exists {
		return ErrDuplicateID
	}
	if p.Attrs == nil {
		p.Attrs = map[string]any{}
	}
	person := &p
	n.indexOf[person.ID] = len(n.people)
	n.people = append(n.people, person)
	n.byID[person.ID] = person
	return nil
}

// UpsertEdge merges a source into the edge for the pair (a, b), creating the
// edge if absent. Explicit sources increment the weight; group sources never
// do, so an inferred-only edge keeps weight 1.
// Returns ErrSelfEdge when a == b or ErrUnknownEndpoint when either
// identifier has no person.
func (n *Network) UpsertEdge(a, b string, src Source) error {
	if a == b {
		return ErrSelfEdge
	}
	if _, ok := n.byID[a]; !ok {
		return ErrUnknownEndpoint
	}
	if _, ok := n.byID[b]; !ok {
		return ErrUnknownEndpoint
	}

	pair := PairOf(a, b)
	e, exists := n.edges[pair]
	if !exists {
		n.edges[pair] = &Edge{Pair: pair, Weight: 1, Provenance: NewProvenance(src)}
		n.order = append(n.order, pair)
		return nil
	}

	// A repeated contact record increments the weight; the first contact
	// record on an inferred edge leaves it at 1 (one explicit occurrence).
	if src.Kind == SourceContact && e.Provenance.HasExplicit() {
		e.Weight++
	}
	e.Provenance.Add(src)
	return nil
}

// People returns all individuals in people-table row order.
// The returned slice is shared; treat it as read-only.
func (n *Network) People() []*Person { return n.people }

// Person returns the individual with the given identifier.
func (n *Network) Person(id string) (*Person, bool) {
	p, ok := n.byID[id]
	return p, ok
}

// Index returns the stable node index of an identifier (its people-table
// row position), or -1 when unknown.
func (n *Network) Index(id string) int {
	if i, ok := n.indexOf[id]; ok {
		return i
	}
	return -1
}

// Edges returns all edges in insertion order.
func (n *Network) Edges() []*Edge {
	out := make([]*Edge, len(n.order))
	for i, pair := range n.order {
		out[i] = n.edges[pair]
	}
	return out
}

// Edge returns the edge for the unordered pair (a, b).
func (n *Network) Edge(a, b string) (*Edge, bool) {
	e, ok := n.edges[PairOf(a, b)]
	return e, ok
}

// Groups returns the membership groups recorded during assembly.
func (n *Network) Groups() []Group { return n.groups }

// GroupsFor returns the groups containing the identifier, in assembly order.
func (n *Network) GroupsFor(id string) []Group {
	var out []Group
	for _, g := range n.groups {
		if slices.Contains(g.Members, id) {
			out = append(out, g)
		}
	}
	return out
}

// NodeCount returns the number of individuals.
func (n *Network) NodeCount() int { return len(n.people) }

// EdgeCount returns the number of distinct edges.
func (n *Network) EdgeCount() int { return len(n.edges) }

// Validate checks model invariants: every edge endpoint exists, no edge is
// a self-loop, and every edge carries at least one provenance source.
// A violation indicates internal corruption, not bad input.
func (n *Network) Validate() error {
	for _, e := range n.edges {
		if e.Pair.Lo == e.Pair.Hi {
			return ErrSelfEdge
		}
		if _, ok := n.byID[e.Pair.Lo]; !ok {
			return ErrUnknownEndpoint
		}
		if _, ok := n.byID[e.Pair.Hi]; !ok {
			return ErrUnknownEndpoint
		}
		if len(e.Provenance) == 0 {
			return errors.New("edge has empty provenance")
		}
	}
	return nil
}

// Clone returns a deep copy of the network.
func (n *Network) Clone() *Network {
	out := NewNetwork()
	for _, p := range n.people {
		cp := *p
		cp.Attrs = maps.Clone(p.Attrs)
		out.indexOf[cp.ID] = len(out.people)
		out.people = append(out.people, &cp)
		out.byID[cp.ID] = &cp
	}
	for _, pair := range n.order {
		e := n.edges[pair]
		ce := &Edge{Pair: e.Pair, Weight: e.Weight, Provenance: maps.Clone(e.Provenance)}
		out.edges[pair] = ce
		out.order = append(out.order, pair)
	}
	for _, g := range n.groups {
		cg := g
		cg.Members = slices.Clone(g.Members)
		out.groups = append(out.groups, cg)
	}
	return out
}
