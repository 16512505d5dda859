// Package server exposes the query pipeline over HTTP.
//
// Routes:
//
//	GET  /api/v1/paths?from=&to=&paths=&depth=&format=
//	GET  /api/v1/expand?center=&level=&fanout=&closure=&format=
//	GET  /api/v1/nodes/{id}
//	GET  /api/v1/stats
//	POST /api/v1/reload
//	GET  /healthz
//	GET  /metrics
//
// Query responses are JSON by default; format=svg, html or dot returns the
// rendered diagram instead. Errors are JSON objects carrying the error code.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/smdgraph/pkg/kg/traverse"
	"github.com/matzehuels/smdgraph/pkg/pipeline"
)

// Options configures a [Server].
type Options struct {
	// Paths and Expand hold the defaults for parameters a request omits.
	Paths  traverse.PathParams
	Expand traverse.ExpandParams
	// Metrics, when set, is served on /metrics and receives hook events.
	Metrics *Metrics
	Logger  *log.Logger
}

// Server answers HTTP queries against a loaded [pipeline.Runner].
type Server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
}

// New creates a server. The runner must already be loaded.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	opts.Paths = opts.Paths.WithDefaults()
	opts.Expand = opts.Expand.WithDefaults()
	return &Server{runner: runner, opts: opts, logger: opts.Logger}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.healthz)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/paths", s.paths)
		r.Get("/expand", s.expand)
		r.Get("/nodes/{id}", s.node)
		r.Get("/stats", s.stats)
		r.Post("/reload", s.reload)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
