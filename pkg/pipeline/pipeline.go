// Package pipeline runs knowledge graph queries end to end for smdgraph.
//
// The CLI and the HTTP server share one [Runner]: it loads the graph once
// from a [source.Source], answers path and expansion queries against the
// loaded graph, and renders the results. By centralizing this logic both
// entry points log, measure and cache the same way.
//
// # Architecture
//
//  1. Load: read nodes and edges from files or MongoDB and build the
//     traversal views (once per process, or again on [Runner.Reload]).
//  2. Query: path search or neighborhood expansion. Queries always run
//     against the live graph; their results are never cached.
//  3. Render: turn a [View] into DOT, SVG, HTML, JSON, PNG or PDF.
//     Only the Graphviz layout output is cached, keyed by a hash of the
//     DOT source.
//
// # Usage
//
//	runner := pipeline.NewRunner(local.New("./kg"), cache, nil, logger)
//	if _, err := runner.Load(ctx); err != nil {
//	    return err
//	}
//	res, err := runner.Paths(ctx, "S_fever", "D_flu", traverse.PathParams{}.WithDefaults())
//	if err != nil {
//	    return err
//	}
//	view := pipeline.NewPathsView(runner.Graph(), res, 3)
//	out, err := runner.Render(ctx, view, pipeline.RenderOptions{Formats: []string{"html"}})
//	page := out.Artifacts["html"]
package pipeline

import (
	"time"

	"github.com/matzehuels/smdgraph/pkg/errors"
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of formats [Runner.Render] produces. Text output
// is written by the CLI itself.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatHTML: true,
	FormatJSON: true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// DefaultArtifactTTL is how long rendered SVG stays in the cache when the
// runner has no TTL of its own.
const DefaultArtifactTTL = 7 * 24 * time.Hour

// Engine is the Graphviz layout engine used for all diagrams.
const Engine = "neato"

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, html, json, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// RenderOptions selects the artifacts produced by [Runner.Render].
type RenderOptions struct {
	// Formats lists the artifacts to produce. Empty means svg only.
	Formats []string `json:"formats,omitempty"`
	// Refresh skips the cache lookup; the fresh render is still stored.
	Refresh bool `json:"refresh,omitempty"`
	// PNGScale is the PNG resolution multiplier. Zero means 2.
	PNGScale float64 `json:"png_scale,omitempty"`
}

// SetDefaults fills unset fields.
func (o *RenderOptions) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.PNGScale == 0 {
		o.PNGScale = 2
	}
}

// Result contains the outputs of a render.
type Result struct {
	// DOT is the Graphviz source the diagrams were laid out from.
	DOT string
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte
	// CacheHit reports whether the SVG layout came from the cache.
	CacheHit bool
	// Duration is the wall time of the render.
	Duration time.Duration
}
