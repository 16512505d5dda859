package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/render/style"
)

// Roles shown in node tooltips for focused nodes.
const (
	RoleStart  = "START"
	RoleEnd    = "END"
	RoleCenter = "CENTER"
)

// Options configures diagram generation.
type Options struct {
	// Theme supplies colors and strokes. Nil uses [style.Default].
	Theme *style.Theme
	// Focus maps node ids to a role. Focused nodes are drawn larger with a
	// heavier border and the role is appended to their tooltip.
	Focus map[string]string
	// Title labels the whole graph when non-empty.
	Title string
}

// ToDOT writes a Graphviz digraph for the given nodes and edges. Node ids
// are emitted in the order given; each edge keeps its stored direction and
// is drawn with an arrowhead only when the theme asks for one.
func ToDOT(g *kg.Graph, nodes []string, edges []*kg.Edge, opts Options) string {
	th := opts.Theme
	if th == nil {
		th = style.Default()
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"#ffffff\";\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontname=\"Arial\";\n", opts.Title)
	}
	buf.WriteString("  node [shape=circle, style=filled, fontname=\"Arial\", fontsize=12, fontcolor=\"#ffffff\", fixedsize=false];\n")
	buf.WriteString("  edge [fontname=\"Arial\", fontsize=10];\n")
	buf.WriteString("\n")

	for _, id := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(nodeAttrs(g, id, opts.Focus[id], th), ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(edgeAttrs(g, e, th), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(g *kg.Graph, id, role string, th *style.Theme) []string {
	color := th.NodeColor(g.Kind(id))
	attrs := []string{
		fmt.Sprintf("label=%q", g.Label(id)),
		fmt.Sprintf("tooltip=%q", nodeTooltip(g, id, role)),
		fmt.Sprintf("fillcolor=%q", color),
	}
	if role != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", th.Highlight), "penwidth=4", "width=1.2")
	} else {
		attrs = append(attrs, fmt.Sprintf("color=%q", color), "penwidth=2", "width=0.8")
	}
	return attrs
}

func nodeTooltip(g *kg.Graph, id, role string) string {
	lines := []string{id}
	if n, ok := g.Node(id); ok && n.Name != "" {
		lines = append(lines, n.Name)
	}
	lines = append(lines, "Type: "+g.Kind(id).String())
	if role != "" {
		lines = append(lines, "["+role+"]")
	}
	return strings.Join(lines, "\n")
}

func edgeAttrs(g *kg.Graph, e *kg.Edge, th *style.Theme) []string {
	from, to := g.Kind(e.From), g.Kind(e.To)
	s := th.EdgeStyle(from, to, e.Type)
	attrs := []string{
		fmt.Sprintf("color=%q", s.Color),
		"penwidth=" + strconv.FormatFloat(s.Width, 'f', -1, 64),
		fmt.Sprintf("tooltip=%q", edgeTooltip(g, e)),
	}
	if s.Dashed() {
		attrs = append(attrs, "style=dashed")
	}
	if !th.Arrow(from, to) {
		attrs = append(attrs, "dir=none")
	}
	return attrs
}

func edgeTooltip(g *kg.Graph, e *kg.Edge) string {
	lines := []string{
		string(e.Type),
		g.Label(e.From) + " → " + g.Label(e.To),
	}
	if e.Type != kg.AssociatedWith {
		return strings.Join(lines, "\n")
	}
	lines = append(lines, "")
	if !e.HasContext() {
		return strings.Join(append(lines, "⚠ no context"), "\n")
	}
	lines = append(lines, "Related:")
	for _, a := range e.Context {
		name := a.Name
		if name == "" {
			name = g.Label(a.ID)
		}
		lines = append(lines, "  • "+name)
	}
	return strings.Join(lines, "\n")
}

// RenderSVG lays out a DOT graph and returns the SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
