package kg

// Direction tells whether a directed incidence leaves or enters the node it
// is listed under.
type Direction int

const (
	// Out marks an edge whose From is the listing node.
	Out Direction = iota
	// In marks an edge whose To is the listing node.
	In
)

func (d Direction) String() string {
	if d == In {
		return "in"
	}
	return "out"
}

// EdgeRef points at a canonical edge as seen from a lookup key. When the key
// runs against the stored direction, Reversed is set and From/To report the
// key's orientation while Edge keeps the original record.
type EdgeRef struct {
	Edge     *Edge
	Reversed bool
}

// From returns the endpoint the lookup started from.
func (r EdgeRef) From() string {
	if r.Reversed {
		return r.Edge.To
	}
	return r.Edge.From
}

// To returns the endpoint the lookup ended at.
func (r EdgeRef) To() string {
	if r.Reversed {
		return r.Edge.From
	}
	return r.Edge.To
}

type pair struct{ from, to string }

// Undirected is the symmetric view used by path search. Every edge, whatever
// its type, contributes both endpoints as each other's neighbor, and is
// registered under (from,to) and, reversed, under (to,from).
type Undirected struct {
	neighbors map[string][]string
	lookup    map[pair][]EdgeRef
}

// BuildUndirected indexes edges symmetrically. Neighbor lists keep first-seen
// order and hold each neighbor once even when several edges join the pair.
// Records missing an endpoint or a type are skipped.
func BuildUndirected(edges []*Edge) *Undirected {
	u := &Undirected{
		neighbors: make(map[string][]string),
		lookup:    make(map[pair][]EdgeRef),
	}
	for _, e := range edges {
		if e == nil || e.From == "" || e.To == "" || e.Type == "" {
			continue
		}
		fwd := pair{e.From, e.To}
		rev := pair{e.To, e.From}
		if len(u.lookup[fwd]) == 0 {
			u.neighbors[e.From] = append(u.neighbors[e.From], e.To)
			u.neighbors[e.To] = append(u.neighbors[e.To], e.From)
		}
		u.lookup[fwd] = append(u.lookup[fwd], EdgeRef{Edge: e})
		u.lookup[rev] = append(u.lookup[rev], EdgeRef{Edge: e, Reversed: true})
	}
	return u
}

// Neighbors returns the ids adjacent to id. The slice must not be modified.
func (u *Undirected) Neighbors(id string) []string {
	return u.neighbors[id]
}

// Has reports whether id touches any edge.
func (u *Undirected) Has(id string) bool {
	return len(u.neighbors[id]) > 0
}

// Lookup returns the first edge in source order between from and to,
// oriented as asked.
func (u *Undirected) Lookup(from, to string) (EdgeRef, bool) {
	refs := u.lookup[pair{from, to}]
	if len(refs) == 0 {
		return EdgeRef{}, false
	}
	return refs[0], true
}

// Between returns every edge joining from and to, in source order.
func (u *Undirected) Between(from, to string) []EdgeRef {
	return u.lookup[pair{from, to}]
}

// Incidence is one entry of a directed adjacency list.
type Incidence struct {
	Neighbor  string
	Type      EdgeType
	Direction Direction
	Edge      *Edge
}

// Directed is the typed view used by neighborhood expansion. Each node lists
// the edges leaving and entering it; negative-evidence types are left out.
type Directed struct {
	entries map[string][]Incidence
}

// BuildDirected indexes edges by endpoint. Each (from,to,type) triple is kept
// once; records missing a field and excluded types are skipped.
func BuildDirected(edges []*Edge) *Directed {
	type key struct {
		from, to string
		typ      EdgeType
	}
	d := &Directed{entries: make(map[string][]Incidence)}
	seen := make(map[key]struct{}, len(edges))
	for _, e := range edges {
		if e == nil || e.From == "" || e.To == "" || e.Type == "" {
			continue
		}
		if e.Type.Excluded() {
			continue
		}
		k := key{e.From, e.To, e.Type}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		d.entries[e.From] = append(d.entries[e.From], Incidence{Neighbor: e.To, Type: e.Type, Direction: Out, Edge: e})
		d.entries[e.To] = append(d.entries[e.To], Incidence{Neighbor: e.From, Type: e.Type, Direction: In, Edge: e})
	}
	return d
}

// Entries returns the incidences of id in source order. The slice must not be
// modified.
func (d *Directed) Entries(id string) []Incidence {
	return d.entries[id]
}
