package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Wire Format
// =============================================================================

// Document is the canonical serialization format for contact networks.
// The format is human-readable and designed for round-trip fidelity:
// build → export → re-import produces an identical network, so the
// build/layout/render commands compose through files.
type Document struct {
	Nodes  []NodeRecord  `json:"nodes"`
	Edges  []EdgeRecord  `json:"edges"`
	Groups []GroupRecord `json:"groups,omitempty"`
}

// NodeRecord is one serialized individual. Node order in the document is
// the stable node index and must be preserved by readers.
type NodeRecord struct {
	ID    string         `json:"id"`
	Label string         `json:"label,omitempty"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// EdgeRecord is one serialized edge with its provenance tags
// ("explicit", "group:<column>") in sorted order.
type EdgeRecord struct {
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Weight     int      `json:"weight"`
	Provenance []string `json:"provenance"`
}

// GroupRecord is one serialized membership group.
type GroupRecord struct {
	Column  string   `json:"column"`
	Value   string   `json:"value"`
	Members []string `json:"members"`
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalNetwork converts a network to pretty-printed JSON bytes.
func MarshalNetwork(n *Network) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteNetwork(n, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteNetwork encodes a network as JSON to w.
func WriteNetwork(n *Network, w io.Writer) error {
	doc := toDocument(n)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteNetworkFile writes a network to a JSON file at path.
func WriteNetworkFile(n *Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteNetwork(n, f)
}

// ReadNetwork decodes a JSON network from r.
// Returns an error if the structure violates model constraints (duplicate
// identifier, edge referencing an unknown node, malformed provenance tag).
func ReadNetwork(r io.Reader) (*Network, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return fromDocument(doc)
}

// ReadNetworkFile reads a JSON file at path and returns the decoded network.
func ReadNetworkFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	n, err := ReadNetwork(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// =============================================================================
// Internal Conversion
// =============================================================================

func toDocument(n *Network) Document {
	doc := Document{
		Nodes: make([]NodeRecord, 0, n.NodeCount()),
		Edges: make([]EdgeRecord, 0, n.EdgeCount()),
	}
	for _, p := range n.People() {
		attrs := p.Attrs
		if len(attrs) == 0 {
			attrs = nil
		}
		doc.Nodes = append(doc.Nodes, NodeRecord{ID: p.ID, Label: p.Label, Attrs: attrs})
	}
	for _, e := range n.Edges() {
		doc.Edges = append(doc.Edges, EdgeRecord{
			Source:     e.Pair.Lo,
			Target:     e.Pair.Hi,
			Weight:     e.Weight,
			Provenance: e.Provenance.Tags(),
		})
	}
	for _, g := range n.Groups() {
		doc.Groups = append(doc.Groups, GroupRecord{Column: g.Column, Value: g.Value, Members: g.Members})
	}
	return doc
}

func fromDocument(doc Document) (*Network, error) {
	n := NewNetwork()
	for _, nr := range doc.Nodes {
		if err := n.AddPerson(Person{ID: nr.ID, Label: nr.Label, Attrs: nr.Attrs}); err != nil {
			return nil, fmt.Errorf("node %s: %w", nr.ID, err)
		}
	}
	for _, er := range doc.Edges {
		if len(er.Provenance) == 0 {
			return nil, fmt.Errorf("edge %s-%s: missing provenance", er.Source, er.Target)
		}
		for _, tag := range er.Provenance {
			src, ok := ParseSource(tag)
			if !ok {
				return nil, fmt.Errorf("edge %s-%s: unknown provenance tag %q", er.Source, er.Target, tag)
			}
			if err := n.UpsertEdge(er.Source, er.Target, src); err != nil {
				return nil, fmt.Errorf("edge %s-%s: %w", er.Source, er.Target, err)
			}
		}
		// Restore the recorded weight; UpsertEdge only counts live inserts.
		if e, ok := n.Edge(er.Source, er.Target); ok && er.Weight > 0 {
			e.Weight = er.Weight
		}
	}
	for _, gr := range doc.Groups {
		n.groups = append(n.groups, Group{Column: gr.Column, Value: gr.Value, Members: gr.Members})
	}
	return n, nil
}
