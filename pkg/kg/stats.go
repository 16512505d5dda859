package kg

import (
	"maps"
	"slices"
)

// Stats summarizes a graph by node kind and edge type.
type Stats struct {
	Nodes        int              `json:"nodes"`
	Edges        int              `json:"edges"`
	Kinds        map[string]int   `json:"kinds"`
	Types        map[EdgeType]int `json:"types"`
	Isolated     int              `json:"isolated"`
	Uncatalogued int              `json:"uncatalogued"`
	NoContext    int              `json:"associations_without_context"`
}

// Summarize counts catalog nodes per kind, edges per type, catalog nodes
// with no edges, edge endpoints missing from the catalog, and
// ASSOCIATED_WITH edges that lack context.
func Summarize(g *Graph) Stats {
	s := Stats{
		Nodes: g.NodeCount(),
		Edges: g.EdgeCount(),
		Kinds: make(map[string]int),
		Types: make(map[EdgeType]int),
	}
	for _, n := range g.Nodes() {
		s.Kinds[n.Kind.String()]++
		if !g.HasEdges(n.ID) {
			s.Isolated++
		}
	}
	for id := range g.degree {
		if _, ok := g.nodes[id]; !ok {
			s.Uncatalogued++
		}
	}
	for _, e := range g.edges {
		s.Types[e.Type]++
		if e.Type == AssociatedWith && !e.HasContext() {
			s.NoContext++
		}
	}
	return s
}

// SortedTypes returns the edge types present in s, known types first in
// their canonical order, then unknown types alphabetically.
func (s Stats) SortedTypes() []EdgeType {
	var out []EdgeType
	for _, t := range EdgeTypes {
		if s.Types[t] > 0 {
			out = append(out, t)
		}
	}
	var unknown []EdgeType
	for _, t := range slices.Sorted(maps.Keys(s.Types)) {
		if !t.Known() {
			unknown = append(unknown, t)
		}
	}
	return append(out, unknown...)
}
