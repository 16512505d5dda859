package kg

import (
	"errors"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID is already in the catalog.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrMissingField is returned by [Graph.AddEdge] when an edge record lacks
	// its from, to, or type field. Loaders skip such records.
	ErrMissingField = errors.New("edge record is missing a required field")

	// ErrSelfLoop is returned by [Graph.AddEdge] for an edge whose endpoints
	// are the same node.
	ErrSelfLoop = errors.New("edge connects a node to itself")

	// ErrFrozen is returned by every mutating method once [Graph.Freeze] has
	// been called. A frozen graph is safe for concurrent readers.
	ErrFrozen = errors.New("graph is frozen")
)

// Metadata stores the free-form properties attached to an edge.
type Metadata map[string]any

// Kind classifies a node as a symptom, a mechanism, or a disease.
type Kind int

const (
	// KindUnknown is used for ids without a recognized prefix.
	KindUnknown Kind = iota
	// KindSymptom nodes carry the "S_" prefix.
	KindSymptom
	// KindMechanism nodes carry the "M_" prefix.
	KindMechanism
	// KindDisease nodes carry the "D_" prefix.
	KindDisease
)

// KindOf derives a node kind from the identifier prefix before the first
// underscore. "S_fever" is a symptom; "fever" is [KindUnknown].
func KindOf(id string) Kind {
	prefix, _, ok := strings.Cut(id, "_")
	if !ok {
		return KindUnknown
	}
	return ParseKind(prefix)
}

// ParseKind maps a one-letter tag ("S", "M", "D") to a Kind.
func ParseKind(tag string) Kind {
	switch tag {
	case "S":
		return KindSymptom
	case "M":
		return KindMechanism
	case "D":
		return KindDisease
	default:
		return KindUnknown
	}
}

// Tag returns the one-letter prefix for the kind, or "?" when unknown.
func (k Kind) Tag() string {
	switch k {
	case KindSymptom:
		return "S"
	case KindMechanism:
		return "M"
	case KindDisease:
		return "D"
	default:
		return "?"
	}
}

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindSymptom:
		return "Symptom"
	case KindMechanism:
		return "Mechanism"
	case KindDisease:
		return "Disease"
	default:
		return "Unknown"
	}
}

// EdgeType is the relation carried by an edge.
type EdgeType string

// The closed vocabulary of relation types.
const (
	Suggests          EdgeType = "SUGGESTS"
	Indicates         EdgeType = "INDICATES"
	RulesOut          EdgeType = "RULES_OUT"
	Causes            EdgeType = "CAUSES"
	ContributesTo     EdgeType = "CONTRIBUTES_TO"
	LeadsTo           EdgeType = "LEADS_TO"
	HasSymptom        EdgeType = "HAS_SYMPTOM"
	HasMechanism      EdgeType = "HAS_MECHANISM"
	AssociatedWith    EdgeType = "ASSOCIATED_WITH"
	SubtypeOf         EdgeType = "SUBTYPE_OF"
	PertinentNegative EdgeType = "PERTINENT_NEGATIVE"
)

// EdgeTypes lists the vocabulary in a stable order.
var EdgeTypes = []EdgeType{
	Suggests, Indicates, RulesOut, Causes, ContributesTo, LeadsTo,
	HasSymptom, HasMechanism, AssociatedWith, SubtypeOf, PertinentNegative,
}

// Known reports whether t belongs to the vocabulary.
func (t EdgeType) Known() bool {
	return slices.Contains(EdgeTypes, t)
}

// Excluded reports whether t expresses negative evidence. Excluded edges never
// discover new nodes during path search or expansion.
func (t EdgeType) Excluded() bool {
	return t == RulesOut || t == PertinentNegative
}

// Anchor is a context entry on an ASSOCIATED_WITH edge: the node under whose
// scope the association holds.
type Anchor struct {
	ID   string `json:"id" bson:"id" yaml:"id"`
	Name string `json:"name,omitempty" bson:"name,omitempty" yaml:"name,omitempty"`
}

// Node is a catalog entry. Kind comes from the catalog file the node was
// listed in, falling back to the id prefix.
type Node struct {
	ID   string
	Name string
	Kind Kind
}

// Label returns the display name, or the id when no name is set.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Edge is a canonical relation record. Edges are stored once, in the direction
// given by the source data, and referenced (never copied) by adjacency views
// and traversal results.
type Edge struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	Type       EdgeType `json:"type"`
	Properties Metadata `json:"properties,omitempty"`
	Context    []Anchor `json:"context,omitempty"`
}

// ContextIDs returns the distinct anchor ids in source order.
func (e *Edge) ContextIDs() []string {
	if len(e.Context) == 0 {
		return nil
	}
	ids := make([]string, 0, len(e.Context))
	for _, a := range e.Context {
		if a.ID != "" && !slices.Contains(ids, a.ID) {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// HasContext reports whether the edge carries at least one anchor id.
func (e *Edge) HasContext() bool {
	for _, a := range e.Context {
		if a.ID != "" {
			return true
		}
	}
	return false
}

// Traversable reports whether the edge may be used to discover new nodes.
// Negative-evidence edges never are, and an ASSOCIATED_WITH edge needs a
// non-empty context.
func (e *Edge) Traversable() bool {
	if e.Type.Excluded() {
		return false
	}
	if e.Type == AssociatedWith {
		return e.HasContext()
	}
	return true
}

// Other returns the endpoint opposite id.
func (e *Edge) Other(id string) string {
	if e.From == id {
		return e.To
	}
	return e.From
}

// Graph is the in-memory store: a node catalog plus the canonical edge list.
// It is populated by loaders, frozen, and then shared read-only by queries.
type Graph struct {
	nodes  map[string]*Node
	order  []string
	edges  []*Edge
	degree map[string]int
	frozen bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:  make(map[string]*Node),
		degree: make(map[string]int),
	}
}

// AddNode registers a catalog entry. A node with KindUnknown takes the kind
// implied by its id prefix.
func (g *Graph) AddNode(n Node) error {
	if g.frozen {
		return ErrFrozen
	}
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, ok := g.nodes[n.ID]; ok {
		return ErrDuplicateNodeID
	}
	if n.Kind == KindUnknown {
		n.Kind = KindOf(n.ID)
	}
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge appends an edge record. Endpoints do not have to be in the catalog;
// edges may reference ids that were never listed.
func (g *Graph) AddEdge(e Edge) error {
	if g.frozen {
		return ErrFrozen
	}
	if e.From == "" || e.To == "" || e.Type == "" {
		return ErrMissingField
	}
	if e.From == e.To {
		return ErrSelfLoop
	}
	g.edges = append(g.edges, &e)
	g.degree[e.From]++
	g.degree[e.To]++
	return nil
}

// Freeze marks the graph read-only.
func (g *Graph) Freeze() { g.frozen = true }

// Frozen reports whether [Graph.Freeze] was called.
func (g *Graph) Frozen() bool { return g.frozen }

// Node returns the catalog entry for id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns catalog entries in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns the canonical edge list in source order. The slice is a copy;
// the records are shared.
func (g *Graph) Edges() []*Edge {
	return slices.Clone(g.edges)
}

// NodeCount returns the catalog size.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of stored edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Degree returns how many stored edges touch id, regardless of type.
func (g *Graph) Degree(id string) int { return g.degree[id] }

// HasEdges reports whether any stored edge touches id.
func (g *Graph) HasEdges(id string) bool { return g.degree[id] > 0 }

// Kind returns the catalog kind for id, or the prefix-derived kind for ids
// that only appear in edges.
func (g *Graph) Kind(id string) Kind {
	if n, ok := g.nodes[id]; ok {
		return n.Kind
	}
	return KindOf(id)
}

// Label returns the display name for id, falling back to the id itself.
func (g *Graph) Label(id string) string {
	if n, ok := g.nodes[id]; ok {
		return n.Label()
	}
	return id
}

// IDs returns every id known to the graph (catalog entries plus edge
// endpoints), sorted.
func (g *Graph) IDs() []string {
	seen := make(map[string]struct{}, len(g.nodes)+len(g.degree))
	for id := range g.nodes {
		seen[id] = struct{}{}
	}
	for id := range g.degree {
		seen[id] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
