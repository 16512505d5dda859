package traverse

import (
	"slices"

	"github.com/matzehuels/smdgraph/pkg/kg"
)

// Search caps. maxExpansions bounds how many partial paths a single search
// may extend; maxQueued bounds how many it may hold. Dense graphs at depth 10
// can otherwise hold millions of simple paths.
const (
	maxExpansions = 200_000
	maxQueued     = 500_000
)

// Path is one accepted route between two nodes.
type Path struct {
	// Nodes runs from the start node to the end node.
	Nodes []string
	// Links[i] is the first traversable stored edge joining Nodes[i] and
	// Nodes[i+1]. Parallel edges between the pair are not listed.
	Links []*kg.Edge
	// Shared holds the context ids common to every symptom-symptom
	// association on the path, sorted. Empty when the path has none.
	Shared []string
}

// Hops returns the number of edges on the path.
func (p Path) Hops() int { return len(p.Nodes) - 1 }

// PathResult is the outcome of [Traverser.FindPaths].
type PathResult struct {
	From, To string
	Paths    []Path
	// Candidates counts valid paths collected before ranking.
	Candidates int
	// Expanded counts partial paths that were extended.
	Expanded int
	// Queued counts partial paths held by the search, the start included.
	Queued int
	// Truncated is set when the search hit the expansion or queue cap.
	Truncated bool
}

// hop is one queued partial path, stored as its last node plus the index of
// the entry it extends. The root has parent -1.
type hop struct {
	node   string
	link   *kg.Edge
	parent int32
	depth  int32
}

// FindPaths enumerates up to p.MaxPaths simple paths from start to end with at
// most p.MaxDepth hops.
//
// The search is breadth-first over the undirected view. Negative-evidence
// edges and associations without context are never stepped over. A path is
// accepted only if the context sets of its symptom-symptom ASSOCIATED_WITH
// links have a non-empty intersection; that intersection is reported as
// [Path.Shared]. The search collects up to three times the requested number of
// valid paths and then ranks them by hop count, then by how often their first
// hop was already used, then by discovery order.
//
// A step between two nodes is allowed when any stored edge between them is
// traversable, and [Path.Links] reports the first such edge. The context
// rule looks at every ASSOCIATED_WITH edge between two symptoms, so a
// symptom-symptom step reported as, say, SUGGESTS is still constrained by a
// parallel association between the same pair.
//
// The search stops early, with [PathResult.Truncated] set, after
// maxExpansions extensions; once maxQueued partial paths are held, further
// extensions are dropped and the result is marked truncated as well.
//
// An id with no incident edges yields an empty result. start == end yields
// the single one-node path.
func (t *Traverser) FindPaths(start, end string, p PathParams) (*PathResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	res := &PathResult{From: start, To: end}
	if !t.und.Has(start) || !t.und.Has(end) {
		return res, nil
	}
	if start == end {
		res.Paths = []Path{{Nodes: []string{start}}}
		res.Candidates = 1
		return res, nil
	}

	limit := p.MaxPaths * candidateFactor
	var found []Path

	queue := []hop{{node: start, parent: -1}}
	for head := 0; head < len(queue) && len(found) < limit; head++ {
		if res.Expanded >= maxExpansions {
			res.Truncated = true
			break
		}
		res.Expanded++

		cur := queue[head]
		for _, nb := range t.und.Neighbors(cur.node) {
			// Paths hold at most MaxDepth+1 nodes, so the path is its own
			// visited set.
			if onPath(queue, head, nb) {
				continue
			}
			link := t.step(cur.node, nb)
			if link == nil {
				continue
			}

			if nb == end {
				nodes, links := unwind(queue, head, nb, link)
				if shared, ok := t.sharedContext(nodes); ok {
					found = append(found, Path{Nodes: nodes, Links: links, Shared: shared})
					if len(found) >= limit {
						break
					}
				}
				continue
			}
			if int(cur.depth)+1 >= p.MaxDepth {
				continue
			}
			if len(queue) >= maxQueued {
				res.Truncated = true
				continue
			}
			queue = append(queue, hop{node: nb, link: link, parent: int32(head), depth: cur.depth + 1})
		}
	}
	res.Queued = len(queue)

	res.Candidates = len(found)
	res.Paths = rank(found)
	if len(res.Paths) > p.MaxPaths {
		res.Paths = res.Paths[:p.MaxPaths]
	}
	return res, nil
}

// onPath reports whether id lies on the partial path ending at queue[i].
func onPath(queue []hop, i int, id string) bool {
	for ; i >= 0; i = int(queue[i].parent) {
		if queue[i].node == id {
			return true
		}
	}
	return false
}

// unwind materializes the partial path ending at queue[i], extended by next
// over link.
func unwind(queue []hop, i int, next string, link *kg.Edge) ([]string, []*kg.Edge) {
	n := int(queue[i].depth) + 2
	nodes := make([]string, n)
	links := make([]*kg.Edge, n-1)
	nodes[n-1], links[n-2] = next, link
	for j := n - 2; i >= 0; i, j = int(queue[i].parent), j-1 {
		nodes[j] = queue[i].node
		if j > 0 {
			links[j-1] = queue[i].link
		}
	}
	return nodes, links
}

// step returns the first traversable stored edge between a and b, or nil.
func (t *Traverser) step(a, b string) *kg.Edge {
	for _, ref := range t.und.Between(a, b) {
		if ref.Edge.Traversable() {
			return ref.Edge
		}
	}
	return nil
}

// sharedContext intersects the context sets of every symptom-symptom
// association along nodes. It reports false when an association has no
// context or the running intersection becomes empty.
func (t *Traverser) sharedContext(nodes []string) ([]string, bool) {
	var shared map[string]struct{}
	for i := 0; i+1 < len(nodes); i++ {
		a, b := nodes[i], nodes[i+1]
		if t.g.Kind(a) != kg.KindSymptom || t.g.Kind(b) != kg.KindSymptom {
			continue
		}
		ctx, linked := t.associationContext(a, b)
		if !linked {
			continue
		}
		if len(ctx) == 0 {
			return nil, false
		}
		if shared == nil {
			shared = ctx
		} else {
			for id := range shared {
				if _, ok := ctx[id]; !ok {
					delete(shared, id)
				}
			}
		}
		if len(shared) == 0 {
			return nil, false
		}
	}

	out := make([]string, 0, len(shared))
	for id := range shared {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, true
}

// associationContext unions the anchor ids of every ASSOCIATED_WITH edge
// between a and b. linked is false when no such edge exists.
func (t *Traverser) associationContext(a, b string) (ctx map[string]struct{}, linked bool) {
	for _, ref := range t.und.Between(a, b) {
		if ref.Edge.Type != kg.AssociatedWith {
			continue
		}
		if ctx == nil {
			ctx = make(map[string]struct{})
		}
		linked = true
		for _, id := range ref.Edge.ContextIDs() {
			ctx[id] = struct{}{}
		}
	}
	return ctx, linked
}

// rank orders candidates by hop count, then by how often their first hop has
// already been placed, then by discovery order. Candidates arrive from BFS
// and are therefore already grouped by non-decreasing hop count.
func rank(candidates []Path) []Path {
	out := make([]Path, 0, len(candidates))
	used := make(map[string]int)
	placed := make([]bool, len(candidates))

	for len(out) < len(candidates) {
		best := -1
		for i, c := range candidates {
			if placed[i] {
				continue
			}
			if best < 0 {
				best = i
				continue
			}
			b := candidates[best]
			if c.Hops() != b.Hops() {
				if c.Hops() < b.Hops() {
					best = i
				}
				continue
			}
			if used[firstHop(c)] < used[firstHop(b)] {
				best = i
			}
		}
		placed[best] = true
		used[firstHop(candidates[best])]++
		out = append(out, candidates[best])
	}
	return out
}

func firstHop(p Path) string {
	if len(p.Nodes) < 2 {
		return ""
	}
	return p.Nodes[1]
}
