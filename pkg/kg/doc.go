// Package kg holds the symptom/mechanism/disease knowledge graph.
//
// # Overview
//
// A [Graph] is a node catalog plus a flat list of typed edges. Node kinds come
// from the id prefix ("S_", "M_", "D_"). Edges are stored once, in source
// direction, and carry an optional list of context [Anchor]s. Context only
// matters for [AssociatedWith] edges: an association without context is never
// traversable.
//
// Graphs are built once by a loader (see package io and package source), then
// frozen with [Graph.Freeze] and shared by concurrent queries.
//
// # Adjacency
//
// Two derived views serve the two query kinds:
//
//   - [Undirected]: symmetric neighbor lists plus a (from,to) lookup, used by
//     path search. Reverse lookups return the original record flagged as
//     reversed.
//   - [Directed]: per-node incidences with type and direction, used by
//     neighborhood expansion. [RulesOut] and [PertinentNegative] edges are
//     never listed.
//
// Both views are cheap to build and hold pointers into the graph's edge list.
//
//	g := kg.New()
//	g.AddNode(kg.Node{ID: "S_fever", Name: "Fever"})
//	g.AddEdge(kg.Edge{From: "D_flu", To: "S_fever", Type: kg.HasSymptom})
//	g.Freeze()
//
//	u := kg.BuildUndirected(g.Edges())
//	ref, _ := u.Lookup("S_fever", "D_flu") // ref.Reversed == true
package kg
