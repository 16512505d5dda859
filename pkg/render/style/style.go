// Package style holds the colors and line styles used to draw knowledge
// graph views.
//
// Node fill colors are chosen by [kg.Kind]. Edge styles are looked up by a
// key of the form "<fromTag>_<toTag>_<TYPE>", for example "S_D_SUGGESTS",
// and fall back to the theme's default style. Edges leaving a disease or a
// mechanism toward a symptom are drawn with an arrowhead; all others are
// drawn without one.
//
// A [Theme] is injected into the renderer. [Default] returns the built-in
// palette; user configuration is layered on top with [Theme.Merge].
package style

import (
	"maps"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/kg"
)

// Edge describes how one class of edge is stroked.
type Edge struct {
	Color  string  `toml:"color" yaml:"color" json:"color" validate:"omitempty,hexcolor"`
	Width  float64 `toml:"width" yaml:"width" json:"width" validate:"gte=0,lte=10"`
	Dashes []int   `toml:"dashes" yaml:"dashes" json:"dashes,omitempty" validate:"dive,gt=0"`
}

// Dashed reports whether the edge uses a dash pattern.
func (e Edge) Dashed() bool { return len(e.Dashes) > 0 }

// Theme is a complete palette.
type Theme struct {
	// Nodes maps a kind tag ("S", "M", "D") to a fill color.
	Nodes map[string]string `toml:"nodes" yaml:"nodes" json:"nodes" validate:"dive,keys,oneof=S M D ?,endkeys,hexcolor"`
	// Unknown fills nodes whose kind has no entry in Nodes.
	Unknown string `toml:"unknown" yaml:"unknown" json:"unknown" validate:"omitempty,hexcolor"`
	// Edges maps "<fromTag>_<toTag>_<TYPE>" to a stroke.
	Edges map[string]Edge `toml:"edges" yaml:"edges" json:"edges" validate:"dive"`
	// Default strokes edges with no entry in Edges.
	Default Edge `toml:"default" yaml:"default" json:"default"`
	// Arrows lists "<fromTag>_<toTag>" pairs drawn with an arrowhead.
	Arrows []string `toml:"arrows" yaml:"arrows" json:"arrows"`
	// Highlight is the border color of focused nodes.
	Highlight string `toml:"highlight" yaml:"highlight" json:"highlight" validate:"omitempty,hexcolor"`
}

// Default returns the built-in palette.
func Default() *Theme {
	return &Theme{
		Nodes: map[string]string{
			"S": "#3B82F6",
			"M": "#F59E0B",
			"D": "#DC2626",
		},
		Unknown: "#9CA3AF",
		Edges: map[string]Edge{
			"S_D_SUGGESTS":        {Color: "#6B7280", Width: 2},
			"S_D_INDICATES":       {Color: "#374151", Width: 3},
			"S_D_RULES_OUT":       {Color: "#991B1B", Width: 2, Dashes: []int{5, 5}},
			"S_M_SUGGESTS":        {Color: "#60A5FA", Width: 2},
			"S_M_INDICATES":       {Color: "#3B82F6", Width: 3},
			"M_S_CAUSES":          {Color: "#D97706", Width: 3},
			"M_S_CONTRIBUTES_TO":  {Color: "#F59E0B", Width: 2, Dashes: []int{5, 5}},
			"M_M_CAUSES":          {Color: "#B45309", Width: 2},
			"M_M_LEADS_TO":        {Color: "#92400E", Width: 2, Dashes: []int{8, 4}},
			"M_M_CONTRIBUTES_TO":  {Color: "#D97706", Width: 2, Dashes: []int{5, 5}},
			"D_S_HAS_SYMPTOM":     {Color: "#DC2626", Width: 2},
			"D_M_HAS_MECHANISM":   {Color: "#B91C1C", Width: 2},
			"S_S_ASSOCIATED_WITH": {Color: "#9CA3AF", Width: 1.5, Dashes: []int{3, 3}},
			"D_D_SUBTYPE_OF":      {Color: "#A78BFA", Width: 2, Dashes: []int{4, 4}},
		},
		Default:   Edge{Color: "#D1D5DB", Width: 1.5},
		Arrows:    []string{"D_S", "M_S"},
		Highlight: "#1F2937",
	}
}

// Key builds the edge style key for an edge between kinds from and to.
func Key(from, to kg.Kind, t kg.EdgeType) string {
	return from.Tag() + "_" + to.Tag() + "_" + string(t)
}

// NodeColor returns the fill color for kind k.
func (t *Theme) NodeColor(k kg.Kind) string {
	if c, ok := t.Nodes[k.Tag()]; ok && c != "" {
		return c
	}
	return t.Unknown
}

// EdgeStyle returns the stroke for an edge of type typ between kinds from
// and to.
func (t *Theme) EdgeStyle(from, to kg.Kind, typ kg.EdgeType) Edge {
	if s, ok := t.Edges[Key(from, to, typ)]; ok {
		return s
	}
	return t.Default
}

// Arrow reports whether edges from kind from to kind to get an arrowhead.
func (t *Theme) Arrow(from, to kg.Kind) bool {
	pair := from.Tag() + "_" + to.Tag()
	for _, a := range t.Arrows {
		if a == pair {
			return true
		}
	}
	return false
}

// Merge returns a copy of t with every non-empty field of o applied on top.
// Map entries are merged key by key; Arrows is replaced when o sets it.
func (t *Theme) Merge(o *Theme) *Theme {
	out := t.clone()
	if o == nil {
		return out
	}
	maps.Copy(out.Nodes, o.Nodes)
	maps.Copy(out.Edges, o.Edges)
	if o.Unknown != "" {
		out.Unknown = o.Unknown
	}
	if o.Default.Color != "" {
		out.Default = o.Default
	}
	if o.Arrows != nil {
		out.Arrows = append([]string(nil), o.Arrows...)
	}
	if o.Highlight != "" {
		out.Highlight = o.Highlight
	}
	return out
}

func (t *Theme) clone() *Theme {
	out := *t
	out.Nodes = maps.Clone(t.Nodes)
	if out.Nodes == nil {
		out.Nodes = map[string]string{}
	}
	out.Edges = maps.Clone(t.Edges)
	if out.Edges == nil {
		out.Edges = map[string]Edge{}
	}
	out.Arrows = append([]string(nil), t.Arrows...)
	return &out
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks colors, widths and arrow pairs. Failures carry
// [errors.ErrCodeInvalidStyle].
func (t *Theme) Validate() error {
	if err := validate.Struct(t); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidStyle, err, "invalid style")
	}
	for _, a := range t.Arrows {
		from, to, ok := strings.Cut(a, "_")
		if !ok || len(from) != 1 || len(to) != 1 {
			return errors.New(errors.ErrCodeInvalidStyle, "invalid arrow pair %q, want <from>_<to> like %q", a, "D_S")
		}
	}
	for key := range t.Edges {
		if strings.Count(key, "_") < 2 {
			return errors.New(errors.ErrCodeInvalidStyle, "invalid edge style key %q", key)
		}
	}
	return nil
}
