package traverse

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/smdgraph/pkg/kg"
)

func ctx(ids ...string) []kg.Anchor {
	out := make([]kg.Anchor, len(ids))
	for i, id := range ids {
		out[i] = kg.Anchor{ID: id}
	}
	return out
}

func edge(from string, typ kg.EdgeType, to string, anchors ...string) kg.Edge {
	e := kg.Edge{From: from, To: to, Type: typ}
	if len(anchors) > 0 {
		e.Context = ctx(anchors...)
	}
	return e
}

func build(t *testing.T, edges ...kg.Edge) *Traverser {
	t.Helper()
	g := kg.New()
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%+v): %v", e, err)
		}
	}
	g.Freeze()
	return New(g)
}

// randomGraph builds a reproducible mixed graph with every edge type and a
// share of context-less associations.
func randomGraph(t *testing.T, seed uint64) *Traverser {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var ids []string
	for i := 0; i < 12; i++ {
		ids = append(ids, fmt.Sprintf("S_%d", i))
	}
	for i := 0; i < 5; i++ {
		ids = append(ids, fmt.Sprintf("M_%d", i), fmt.Sprintf("D_%d", i))
	}
	anchors := ids[12:]

	g := kg.New()
	for i := 0; i < 70; i++ {
		a, b := ids[r.IntN(len(ids))], ids[r.IntN(len(ids))]
		if a == b {
			continue
		}
		typ := kg.EdgeTypes[r.IntN(len(kg.EdgeTypes))]
		if kg.KindOf(a) == kg.KindSymptom && kg.KindOf(b) == kg.KindSymptom && r.IntN(2) == 0 {
			typ = kg.AssociatedWith
		}
		e := kg.Edge{From: a, To: b, Type: typ}
		if typ == kg.AssociatedWith {
			for n := r.IntN(3); n > 0; n-- {
				e.Context = append(e.Context, kg.Anchor{ID: anchors[r.IntN(len(anchors))]})
			}
		}
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	g.Freeze()
	return New(g)
}
