// Package render turns knowledge graph views into pictures.
//
// # Overview
//
// The [nodelink] subpackage writes Graphviz DOT for a set of nodes and
// edges and lays it out in-process. The [style] subpackage holds the
// palette it draws with.
//
//	dot := nodelink.ToDOT(g, ids, edges, nodelink.Options{Theme: style.Default()})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	page, err := nodelink.WrapHTML(svg, "S_fever to D_flu")
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg). A missing tool is reported as an UNSUPPORTED error.
//
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/smdgraph/pkg/render/nodelink
// [style]: github.com/matzehuels/smdgraph/pkg/render/style
package render
