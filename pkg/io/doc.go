// Package io reads and writes the on-disk graph catalogs and serializes
// query results as JSON.
//
// # Directory Layout
//
// A data directory holds three node catalogs and one edge file:
//
//	S_nodes.json    ["S_fever", {"id": "S_cough", "name": "Cough"}, ...]
//	M_nodes.json
//	D_nodes.json
//	all_edges.json  one JSON object per line
//
// The catalog a node is listed in decides its kind. Edge lines look like:
//
//	{"from": "S_a", "to": "S_b", "type": "ASSOCIATED_WITH",
//	 "context": [{"id": "D_x", "name": "..."}], "properties": {"explanation": "..."}}
//
// Context may also be a single object or bare id strings. Raw extraction
// records using "source"/"target"/"edge_type", with context nested under
// "properties", are read as well.
//
// # Bad Records
//
// Loading never fails on individual records. Lines that do not decode,
// records without from/to/type, duplicate catalog ids and self-loops are
// logged through charmbracelet/log and listed in the [LoadReport].
//
// # Query Output
//
// [NewPathsDoc] and [NewSubgraphDoc] turn traversal results into stable JSON
// documents, shared by the CLI's json format and the HTTP API.
// [WriteCatalog] dumps a graph back into the directory layout, which is how a
// database-backed graph is exported to files.
package io
