// Package nodelink draws knowledge graph views as node-link diagrams.
//
// # Usage
//
// Generate DOT for a path result or an expansion, lay it out, and
// optionally wrap it in an HTML page:
//
//	dot := nodelink.ToDOT(g, ids, edges, nodelink.Options{
//	    Theme: theme,
//	    Focus: map[string]string{"S_fever": nodelink.RoleStart, "D_flu": nodelink.RoleEnd},
//	})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	page, err := nodelink.WrapHTML(svg, "S_fever to D_flu", theme)
//
// Nodes are labelled with their display name and filled by kind. Edges keep
// their stored direction; the theme decides which pairs get an arrowhead.
// Tooltips carry the edge type, both endpoint names, and for
// ASSOCIATED_WITH edges the context anchors or a warning when there are
// none.
//
// # Dependencies
//
// Layout runs in-process through [github.com/goccy/go-graphviz] with the
// neato engine.
package nodelink
