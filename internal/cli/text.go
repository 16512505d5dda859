package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/kg/traverse"
)

const rule = "============================================================"

// writePathsText prints a path search result: one block per path with the
// edge type on every hop, then a one-line summary per path.
func writePathsText(w io.Writer, g *kg.Graph, res *traverse.PathResult, requested int) {
	fmt.Fprintln(w, StyleDim.Render(rule))
	fmt.Fprintf(w, "%s %s %s %s\n", StyleTitle.Render("Paths from"), nodeRef(g, res.From), StyleTitle.Render("to"), nodeRef(g, res.To))
	fmt.Fprintln(w, StyleDim.Render(rule))

	if len(res.Paths) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleWarning.Render("No path found."))
		return
	}

	lo, hi := res.Paths[0].Hops(), res.Paths[len(res.Paths)-1].Hops()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Found %s path(s), %s hops", StyleNumber.Render(fmt.Sprint(len(res.Paths))), hopRange(lo, hi))
	if len(res.Paths) < requested {
		fmt.Fprint(w, StyleDim.Render(fmt.Sprintf(" (fewer than the %d requested)", requested)))
	}
	fmt.Fprintln(w)
	if res.Truncated {
		fmt.Fprintln(w, StyleWarning.Render("Search hit its size limit; some paths may be missing."))
	}

	for i, p := range res.Paths {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", StyleTitle.Render(fmt.Sprintf("Path %d", i+1)), StyleDim.Render(fmt.Sprintf("(%d hops)", p.Hops())))
		for j, id := range p.Nodes {
			fmt.Fprintf(w, "  %s\n", nodeRef(g, id))
			if j < len(p.Links) {
				fmt.Fprintf(w, "    %s\n", StyleDim.Render(hopArrow(p.Links[j], id)))
			}
		}
		if len(p.Shared) > 0 {
			names := make([]string, len(p.Shared))
			for k, id := range p.Shared {
				names[k] = g.Label(id)
			}
			fmt.Fprintf(w, "  %s %s\n", StyleDim.Render("shared context:"), strings.Join(names, ", "))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleDim.Render("--- Paths Summary ---"))
	for i, p := range res.Paths {
		fmt.Fprintf(w, "Path %d: %s\n", i+1, strings.Join(p.Nodes, " -> "))
	}
}

// writeExpandText prints an expansion: the nodes with their kind tag (the
// center marked with *) followed by the accepted edges.
func writeExpandText(w io.Writer, g *kg.Graph, sub *traverse.Subgraph) {
	fmt.Fprintln(w, StyleDim.Render(rule))
	fmt.Fprintf(w, "%s %s\n", StyleTitle.Render("Center:"), nodeRef(g, sub.Center))
	fmt.Fprintln(w, StyleDim.Render(rule))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Nodes (%d):\n", len(sub.Nodes))
	for _, id := range sub.Nodes {
		marker := ""
		if id == sub.Center {
			marker = " *"
		}
		fmt.Fprintf(w, "  [%s] %s%s\n", g.Kind(id).Tag(), id, marker)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Edges (%d):\n", len(sub.Edges))
	for i, e := range sub.Edges {
		line := fmt.Sprintf("  %s --[%s]--> %s", e.From, e.Type, e.To)
		if i >= len(sub.Edges)-sub.ClosureEdges {
			line += StyleDim.Render("  (closure)")
		}
		fmt.Fprintln(w, line)
	}
	if sub.Dropped > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d association(s) left out: their context never entered the subgraph", sub.Dropped)))
	}
}

// nodeRef renders "id (Name)", or the bare id when it has no display name.
func nodeRef(g *kg.Graph, id string) string {
	label := g.Label(id)
	if label == id {
		return StyleHighlight.Render(id)
	}
	return StyleHighlight.Render(id) + " " + StyleDim.Render("("+label+")")
}

// hopArrow shows the edge type on a hop, pointing the way the edge is stored
// relative to the walk direction.
func hopArrow(e *kg.Edge, from string) string {
	if e.From == from {
		return fmt.Sprintf("--[%s]-->", e.Type)
	}
	return fmt.Sprintf("<--[%s]--", e.Type)
}

func hopRange(lo, hi int) string {
	if lo == hi {
		return StyleNumber.Render(fmt.Sprint(lo))
	}
	return StyleNumber.Render(fmt.Sprintf("%d-%d", lo, hi))
}
