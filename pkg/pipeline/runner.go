package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smdgraph/pkg/cache"
	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/io"
	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/kg/traverse"
	"github.com/matzehuels/smdgraph/pkg/observability"
	"github.com/matzehuels/smdgraph/pkg/render/style"
	"github.com/matzehuels/smdgraph/pkg/source"
)

// Runner owns the loaded graph and executes queries and renders against it.
//
// Load and Reload swap the graph under a lock; queries take a snapshot of
// the current traverser, so concurrent requests never see a half-loaded
// graph. Multiple goroutines can safely share one Runner.
type Runner struct {
	Source source.Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	Theme  *style.Theme
	TTL    time.Duration
	Logger *log.Logger

	mu     sync.RWMutex
	trav   *traverse.Traverser
	report *io.LoadReport
}

// NewRunner creates a runner reading from src.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(src source.Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Cache:  c,
		Keyer:  keyer,
		Theme:  style.Default(),
		TTL:    DefaultArtifactTTL,
		Logger: logger,
	}
}

// Load reads the graph from the source and builds the traversal views.
// Calling Load again replaces the graph.
func (r *Runner) Load(ctx context.Context) (*io.LoadReport, error) {
	if r.Source == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no graph source configured")
	}
	name := r.Source.Name()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, name)
	start := time.Now()

	g, report, err := r.Source.Load(ctx, r.Logger)
	if err != nil {
		hooks.OnLoadComplete(ctx, name, 0, 0, 0, time.Since(start), err)
		return nil, err
	}
	trav := traverse.New(g)

	r.mu.Lock()
	r.trav, r.report = trav, report
	r.mu.Unlock()

	dur := time.Since(start)
	hooks.OnLoadComplete(ctx, name, report.Nodes, report.Edges, len(report.Skipped), dur, nil)
	r.Logger.Info("loaded graph",
		"source", name,
		"nodes", report.Nodes,
		"edges", report.Edges,
		"skipped", len(report.Skipped),
		"duration", dur)
	if report.UnknownTypes > 0 {
		r.Logger.Warn("edges with unknown types", "count", report.UnknownTypes)
	}
	return report, nil
}

// Reload is Load under another name, for callers refreshing a running
// server.
func (r *Runner) Reload(ctx context.Context) (*io.LoadReport, error) {
	return r.Load(ctx)
}

// Loaded reports whether a graph is available.
func (r *Runner) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trav != nil
}

// Graph returns the loaded graph, or nil before Load.
func (r *Runner) Graph() *kg.Graph {
	t, err := r.traverser()
	if err != nil {
		return nil
	}
	return t.Graph()
}

// Report returns the last load report, or nil before Load.
func (r *Runner) Report() *io.LoadReport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.report
}

func (r *Runner) traverser() (*traverse.Traverser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.trav == nil {
		return nil, errors.New(errors.ErrCodeInternal, "graph not loaded")
	}
	return r.trav, nil
}

// Paths finds up to p.MaxPaths shortest paths between two nodes. Parameters
// are validated as given; callers wanting defaults use
// [traverse.PathParams.WithDefaults].
func (r *Runner) Paths(ctx context.Context, from, to string, p traverse.PathParams) (*traverse.PathResult, error) {
	for _, id := range []string{from, to} {
		if err := errors.ValidateNodeID(id); err != nil {
			return nil, err
		}
	}
	t, err := r.traverser()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnQueryStart(ctx, "paths")
	start := time.Now()
	res, err := t.FindPaths(from, to, p)
	size := 0
	if res != nil {
		size = len(res.Paths)
	}
	hooks.OnQueryComplete(ctx, "paths", size, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("path search",
		"from", from,
		"to", to,
		"paths", len(res.Paths),
		"candidates", res.Candidates,
		"expanded", res.Expanded,
		"duration", time.Since(start))
	if res.Truncated {
		r.Logger.Warn("path search hit its size cap", "from", from, "to", to, "expanded", res.Expanded, "queued", res.Queued)
	}
	return res, nil
}

// Expand grows the neighborhood of center. Parameters are validated as
// given.
func (r *Runner) Expand(ctx context.Context, center string, p traverse.ExpandParams) (*traverse.Subgraph, error) {
	if err := errors.ValidateNodeID(center); err != nil {
		return nil, err
	}
	t, err := r.traverser()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnQueryStart(ctx, "expand")
	start := time.Now()
	sub, err := t.Expand(center, p)
	size := 0
	if sub != nil {
		size = len(sub.Nodes)
	}
	hooks.OnQueryComplete(ctx, "expand", size, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("expansion",
		"center", center,
		"nodes", len(sub.Nodes),
		"edges", len(sub.Edges),
		"closure_edges", sub.ClosureEdges,
		"dropped", sub.Dropped,
		"duration", time.Since(start))
	return sub, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
