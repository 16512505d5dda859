// Package pkg provides the core libraries for smdgraph, a query tool for
// symptom-mechanism-disease knowledge graphs.
//
// # Overview
//
// A knowledge graph holds three kinds of nodes (symptoms S_, mechanisms M_,
// diseases D_) joined by typed edges such as HAS_SYMPTOM, CAUSES or
// ASSOCIATED_WITH. smdgraph answers two questions about it: how are two nodes
// connected, and what surrounds a node. The pkg directory is organized as:
//
//  1. [kg] - The graph store, adjacency views and traversal (kg/traverse)
//  2. [io] - Reading node and edge catalogs, writing JSON results
//  3. [source] - Where graphs come from (source/local, source/mongo)
//  4. [render] - Styling (render/style) and Graphviz drawing (render/nodelink)
//  5. [pipeline] - Orchestration (load → query → render)
//  6. [cache], [config], [errors], [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow through smdgraph:
//
//	Data directory / MongoDB
//	         ↓
//	    [source] package (load records, skip bad ones)
//	         ↓
//	    [kg] package (frozen graph + adjacency views)
//	         ↓
//	    [kg/traverse] package (path search or neighborhood expansion)
//	         ↓
//	    [render/nodelink] package (DOT → SVG via Graphviz)
//	         ↓
//	    Text/HTML/SVG/PNG/PDF/DOT/JSON output
//
// # Quick Start
//
// Load a data directory and find paths between two nodes:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/smdgraph/pkg/kg/traverse"
//	    "github.com/matzehuels/smdgraph/pkg/pipeline"
//	    "github.com/matzehuels/smdgraph/pkg/source/local"
//	)
//
//	runner := pipeline.NewRunner(local.New("./kg"), nil, nil, nil)
//	if _, err := runner.Load(ctx); err != nil {
//	    return err
//	}
//	res, err := runner.Paths(ctx, "S_fever", "D_influenza", traverse.PathParams{MaxPaths: 3, MaxDepth: 6})
//	if err != nil {
//	    return err
//	}
//	for _, p := range res.Paths {
//	    fmt.Println(p.Nodes)
//	}
//
// # Traversal rules
//
// Negative evidence (RULES_OUT, PERTINENT_NEGATIVE) is stored but never
// walked. An ASSOCIATED_WITH edge is walked only when it carries context,
// and on a path consecutive symptom-symptom associations must share a
// context node. Traversal results are computed fresh for every query; only
// the Graphviz layout of a diagram is cached.
package pkg
