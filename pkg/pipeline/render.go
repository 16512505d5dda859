package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/smdgraph/pkg/cache"
	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/io"
	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/observability"
	"github.com/matzehuels/smdgraph/pkg/render"
	"github.com/matzehuels/smdgraph/pkg/render/nodelink"
)

// renderSVG is swapped out in tests so they do not need a Graphviz run.
var renderSVG = nodelink.RenderSVG

// Render produces the requested artifacts for v.
func (r *Runner) Render(ctx context.Context, v *View, opts RenderOptions) (*Result, error) {
	opts.SetDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	g := r.Graph()
	if g == nil {
		return nil, errors.New(errors.ErrCodeInternal, "graph not loaded")
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	res, err := r.render(ctx, g, v, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	res.Duration = time.Since(start)

	r.Logger.Debug("rendered outputs",
		"view", v.Kind,
		"formats", opts.Formats,
		"cache_hit", res.CacheHit,
		"duration", res.Duration)
	return res, nil
}

func (r *Runner) render(ctx context.Context, g *kg.Graph, v *View, opts RenderOptions) (*Result, error) {
	dot := nodelink.ToDOT(g, v.Nodes, v.Edges, nodelink.Options{
		Theme: r.Theme,
		Focus: v.Focus,
		Title: v.Title,
	})
	res := &Result{DOT: dot, Artifacts: make(map[string][]byte, len(opts.Formats))}

	var svg []byte
	for _, format := range opts.Formats {
		if needsSVG(format) && svg == nil {
			var err error
			svg, res.CacheHit, err = r.layout(ctx, dot, opts.Refresh)
			if err != nil {
				return nil, err
			}
		}

		var data []byte
		var err error
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data = svg
		case FormatHTML:
			data, err = nodelink.WrapHTML(svg, v.Title, r.Theme)
		case FormatJSON:
			var buf bytes.Buffer
			err = io.WriteJSON(&buf, v.Doc)
			data = buf.Bytes()
		case FormatPNG:
			data, err = render.ToPNG(ctx, svg, opts.PNGScale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svg)
		}
		if err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return nil, errors.Wrap(code, err, "render %s", format)
		}
		res.Artifacts[format] = data
	}
	return res, nil
}

func needsSVG(format string) bool {
	switch format {
	case FormatSVG, FormatHTML, FormatPNG, FormatPDF:
		return true
	}
	return false
}

// layout returns the SVG for dot, from the cache when possible. Cache
// failures are logged and never fail the render.
func (r *Runner) layout(ctx context.Context, dot string, refresh bool) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{Format: FormatSVG, Engine: Engine})
	hooks := observability.Cache()

	if !refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Warn("cache read failed", "error", err)
		case hit:
			hooks.OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
	}
	hooks.OnCacheMiss(ctx, "artifact")

	svg, err := renderSVG(ctx, dot)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, svg, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
	} else {
		hooks.OnCacheSet(ctx, "artifact", len(svg))
	}
	return svg, false, nil
}
