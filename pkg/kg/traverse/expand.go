package traverse

import "github.com/matzehuels/smdgraph/pkg/kg"

// Subgraph is the bounded neighborhood returned by [Traverser.Expand].
type Subgraph struct {
	Center string
	// Nodes lists discovered ids in discovery order, center first.
	Nodes []string
	// Levels maps each discovered id to the level it was reached at (center 0).
	Levels map[string]int
	// Edges lists accepted edges in acceptance order. Closure edges come last.
	Edges []*kg.Edge
	// ClosureEdges counts the trailing edges added by the closure pass.
	ClosureEdges int
	// Dropped counts associations still unresolved when expansion ended.
	Dropped int
}

// Contains reports whether id was discovered.
func (s *Subgraph) Contains(id string) bool {
	_, ok := s.Levels[id]
	return ok
}

// Empty reports whether the expansion found nothing, which happens when the
// center has no incident edges.
func (s *Subgraph) Empty() bool { return len(s.Nodes) == 0 }

type edgeKey struct {
	from, to string
	typ      kg.EdgeType
}

func keyOf(e *kg.Edge) edgeKey { return edgeKey{e.From, e.To, e.Type} }

// expansion carries the state of one Expand call.
type expansion struct {
	sub      *Subgraph
	recorded map[edgeKey]struct{}
	history  map[string]struct{}
	pending  []kg.Incidence
	isParked map[*kg.Edge]struct{}
}

// Expand grows a neighborhood around center for p.Level levels.
//
// Each level visits the current frontier in order. For every frontier node,
// incidences are drawn round-robin across relation types until p.MaxFanout
// new nodes have been introduced; edges to already-known nodes are recorded
// without spending budget. Negative-evidence edges are never followed.
//
// An ASSOCIATED_WITH edge is followed only when one of its context anchors is
// already in the neighborhood, or its context overlaps the context of an
// association accepted earlier in this call. Other associations are parked
// and retried after every level; any still parked at the end are dropped.
//
// With p.Closure set, a final pass adds every stored edge whose endpoints were
// both discovered, negative evidence included.
func (t *Traverser) Expand(center string, p ExpandParams) (*Subgraph, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	sub := &Subgraph{Center: center, Levels: make(map[string]int)}
	if !t.g.HasEdges(center) {
		return sub, nil
	}

	x := &expansion{
		sub:      sub,
		recorded: make(map[edgeKey]struct{}),
		history:  make(map[string]struct{}),
		isParked: make(map[*kg.Edge]struct{}),
	}
	x.addNode(center, 0)

	frontier := []string{center}
	for level := 1; level <= p.Level && len(frontier) > 0; level++ {
		var next []string
		for _, id := range frontier {
			next = append(next, x.visit(t.dir.Entries(id), level, p.MaxFanout)...)
		}
		next = append(next, x.retryParked(level)...)
		frontier = next
	}
	sub.Dropped = len(x.pending)

	if p.Closure {
		for _, e := range t.g.Edges() {
			if !sub.Contains(e.From) || !sub.Contains(e.To) {
				continue
			}
			if x.record(e) {
				sub.ClosureEdges++
			}
		}
	}
	return sub, nil
}

// visit draws incidences of one frontier node and returns the nodes it
// introduced.
func (x *expansion) visit(entries []kg.Incidence, level, fanout int) []string {
	var added []string
	rr := newRoundRobin(entries)
	for len(added) < fanout {
		inc, ok := rr.next()
		if !ok {
			break
		}
		if inc.Type == kg.AssociatedWith {
			if !inc.Edge.HasContext() {
				continue
			}
			if !x.associationHolds(inc.Edge) {
				x.park(inc)
				continue
			}
			x.remember(inc.Edge)
		}
		if x.admit(inc, level) {
			added = append(added, inc.Neighbor)
		}
	}
	return added
}

// retryParked re-tests parked associations until no more can be accepted
// and returns the nodes they introduced.
func (x *expansion) retryParked(level int) []string {
	var added []string
	for progress := true; progress; {
		progress = false
		var still []kg.Incidence
		for _, inc := range x.pending {
			if x.isRecorded(inc.Edge) {
				continue
			}
			if !x.associationHolds(inc.Edge) {
				still = append(still, inc)
				continue
			}
			x.remember(inc.Edge)
			if x.admit(inc, level) {
				added = append(added, inc.Neighbor)
			}
			progress = true
		}
		x.pending = still
	}
	return added
}

// associationHolds reports whether e's context touches the current node set
// or the contexts of associations already accepted.
func (x *expansion) associationHolds(e *kg.Edge) bool {
	for _, id := range e.ContextIDs() {
		if x.sub.Contains(id) {
			return true
		}
		if _, ok := x.history[id]; ok {
			return true
		}
	}
	return false
}

func (x *expansion) remember(e *kg.Edge) {
	for _, id := range e.ContextIDs() {
		x.history[id] = struct{}{}
	}
}

func (x *expansion) park(inc kg.Incidence) {
	if x.isRecorded(inc.Edge) {
		return
	}
	if _, ok := x.isParked[inc.Edge]; ok {
		return
	}
	x.isParked[inc.Edge] = struct{}{}
	x.pending = append(x.pending, inc)
}

// admit records inc's edge and reports whether its neighbor is new.
func (x *expansion) admit(inc kg.Incidence, level int) bool {
	if !x.record(inc.Edge) {
		return false
	}
	if x.sub.Contains(inc.Neighbor) {
		return false
	}
	x.addNode(inc.Neighbor, level)
	return true
}

func (x *expansion) isRecorded(e *kg.Edge) bool {
	_, ok := x.recorded[keyOf(e)]
	return ok
}

// record appends e unless an edge with the same (from,to,type) is already in.
func (x *expansion) record(e *kg.Edge) bool {
	k := keyOf(e)
	if _, ok := x.recorded[k]; ok {
		return false
	}
	x.recorded[k] = struct{}{}
	x.sub.Edges = append(x.sub.Edges, e)
	return true
}

func (x *expansion) addNode(id string, level int) {
	x.sub.Levels[id] = level
	x.sub.Nodes = append(x.sub.Nodes, id)
}
