package pipeline

import (
	"fmt"

	"github.com/matzehuels/smdgraph/pkg/io"
	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/kg/traverse"
	"github.com/matzehuels/smdgraph/pkg/render/nodelink"
)

// View is a renderable slice of the graph: the nodes and edges to draw,
// which nodes to emphasize, and the JSON document describing the query.
type View struct {
	Kind  string
	Title string
	Nodes []string
	Edges []*kg.Edge
	Focus map[string]string
	Doc   any
}

// NewPathsView collects every node and edge on the found paths. Nodes keep
// first-appearance order and edges shared by several paths are drawn once.
func NewPathsView(g *kg.Graph, res *traverse.PathResult, requested int) *View {
	v := &View{
		Kind:  "paths",
		Title: fmt.Sprintf("%s to %s", g.Label(res.From), g.Label(res.To)),
		Focus: map[string]string{res.From: nodelink.RoleStart, res.To: nodelink.RoleEnd},
		Doc:   io.NewPathsDoc(g, res, requested),
	}
	seenNode := make(map[string]bool)
	seenEdge := make(map[*kg.Edge]bool)
	for _, p := range res.Paths {
		for _, id := range p.Nodes {
			if !seenNode[id] {
				seenNode[id] = true
				v.Nodes = append(v.Nodes, id)
			}
		}
		for _, e := range p.Links {
			if !seenEdge[e] {
				seenEdge[e] = true
				v.Edges = append(v.Edges, e)
			}
		}
	}
	return v
}

// NewSubgraphView draws an expansion around its center.
func NewSubgraphView(g *kg.Graph, sub *traverse.Subgraph, p traverse.ExpandParams) *View {
	return &View{
		Kind:  "expand",
		Title: fmt.Sprintf("%s (level %d)", g.Label(sub.Center), p.Level),
		Nodes: sub.Nodes,
		Edges: sub.Edges,
		Focus: map[string]string{sub.Center: nodelink.RoleCenter},
		Doc:   io.NewSubgraphDoc(g, sub, p),
	}
}
