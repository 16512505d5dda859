package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/kg/traverse"
)

// NodeDoc is the JSON form of a node in query output.
type NodeDoc struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Kind  string `json:"kind"`
	Level *int   `json:"level,omitempty"`
}

// PathDoc is one path in [PathsDoc].
type PathDoc struct {
	Nodes  []string   `json:"nodes"`
	Hops   int        `json:"hops"`
	Shared []string   `json:"shared_context"`
	Edges  []*kg.Edge `json:"edges"`
}

// PathsDoc is the JSON form of a path search.
type PathsDoc struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Requested int       `json:"requested"`
	Found     int       `json:"found"`
	Truncated bool      `json:"truncated,omitempty"`
	Paths     []PathDoc `json:"paths"`
	Nodes     []NodeDoc `json:"nodes"`
}

// SubgraphDoc is the JSON form of an expansion.
type SubgraphDoc struct {
	Center       string     `json:"center"`
	Level        int        `json:"level"`
	MaxFanout    int        `json:"max_fanout"`
	Closure      bool       `json:"closure"`
	Nodes        []NodeDoc  `json:"nodes"`
	Edges        []*kg.Edge `json:"edges"`
	ClosureEdges int        `json:"closure_edges,omitempty"`
	Dropped      int        `json:"dropped_associations,omitempty"`
}

func nodeDoc(g *kg.Graph, id string) NodeDoc {
	d := NodeDoc{ID: id, Kind: g.Kind(id).String()}
	if n, ok := g.Node(id); ok {
		d.Name = n.Name
	}
	return d
}

// NewPathsDoc converts a path search result. Nodes lists every id on any
// path once, in first-appearance order.
func NewPathsDoc(g *kg.Graph, res *traverse.PathResult, requested int) PathsDoc {
	doc := PathsDoc{
		From:      res.From,
		To:        res.To,
		Requested: requested,
		Found:     len(res.Paths),
		Truncated: res.Truncated,
		Paths:     make([]PathDoc, 0, len(res.Paths)),
		Nodes:     []NodeDoc{},
	}
	seen := make(map[string]bool)
	for _, p := range res.Paths {
		shared := p.Shared
		if shared == nil {
			shared = []string{}
		}
		edges := p.Links
		if edges == nil {
			edges = []*kg.Edge{}
		}
		doc.Paths = append(doc.Paths, PathDoc{Nodes: p.Nodes, Hops: p.Hops(), Shared: shared, Edges: edges})
		for _, id := range p.Nodes {
			if !seen[id] {
				seen[id] = true
				doc.Nodes = append(doc.Nodes, nodeDoc(g, id))
			}
		}
	}
	return doc
}

// NewSubgraphDoc converts an expansion result.
func NewSubgraphDoc(g *kg.Graph, sub *traverse.Subgraph, p traverse.ExpandParams) SubgraphDoc {
	doc := SubgraphDoc{
		Center:       sub.Center,
		Level:        p.Level,
		MaxFanout:    p.MaxFanout,
		Closure:      p.Closure,
		Nodes:        make([]NodeDoc, 0, len(sub.Nodes)),
		Edges:        sub.Edges,
		ClosureEdges: sub.ClosureEdges,
		Dropped:      sub.Dropped,
	}
	if doc.Edges == nil {
		doc.Edges = []*kg.Edge{}
	}
	for _, id := range sub.Nodes {
		d := nodeDoc(g, id)
		lvl := sub.Levels[id]
		d.Level = &lvl
		doc.Nodes = append(doc.Nodes, d)
	}
	return doc
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes v to a JSON file at path.
func ExportJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(f, v)
}

type catalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// WriteCatalog writes g into dir using the layout [LoadDir] reads: one node
// array per kind, sorted by id, and a JSONL edge file in stored order.
// Catalog entries of unknown kind have no file and are left out.
func WriteCatalog(dir string, g *kg.Graph) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	byKind := make(map[kg.Kind][]catalogEntry)
	for _, n := range g.Nodes() {
		byKind[n.Kind] = append(byKind[n.Kind], catalogEntry{ID: n.ID, Name: n.Name})
	}
	for _, nf := range NodeFiles {
		entries := byKind[nf.Kind]
		if entries == nil {
			entries = []catalogEntry{}
		}
		slices.SortFunc(entries, func(a, b catalogEntry) int {
			switch {
			case a.ID < b.ID:
				return -1
			case a.ID > b.ID:
				return 1
			}
			return 0
		})
		if err := ExportJSON(filepath.Join(dir, nf.Name), entries); err != nil {
			return err
		}
	}

	path := filepath.Join(dir, EdgeFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, e := range g.Edges() {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encode edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return nil
}
