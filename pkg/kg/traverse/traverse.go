package traverse

import "github.com/matzehuels/smdgraph/pkg/kg"

// Traverser answers path and neighborhood queries against one graph. It
// builds both adjacency views up front and holds no per-query state, so a
// single Traverser may serve concurrent callers.
type Traverser struct {
	g   *kg.Graph
	und *kg.Undirected
	dir *kg.Directed
}

// New indexes g. The graph should be frozen: edges added afterwards are not
// seen by the Traverser.
func New(g *kg.Graph) *Traverser {
	edges := g.Edges()
	return &Traverser{
		g:   g,
		und: kg.BuildUndirected(edges),
		dir: kg.BuildDirected(edges),
	}
}

// Graph returns the indexed graph.
func (t *Traverser) Graph() *kg.Graph { return t.g }
