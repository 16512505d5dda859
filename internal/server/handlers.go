package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/io"
	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatHTML: "text/html; charset=utf-8",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

type errorBody struct {
	Error struct {
		Code      errors.Code `json:"code"`
		Message   string      `json:"message"`
		RequestID string      `json:"request_id,omitempty"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	var body errorBody
	body.Error.Code = errors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = errors.ErrCodeInternal
	}
	body.Error.Message = errors.UserMessage(err)
	body.Error.RequestID = middleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatJSON])
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// intParam reads an optional integer query parameter; absent means def.
// An explicit value, zero included, is returned as given for validation.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func boolParam(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidParameter, "%s must be a boolean, got %q", name, raw)
	}
	return v, nil
}

func formatParam(r *http.Request) (string, error) {
	f := r.URL.Query().Get("format")
	if f == "" {
		return pipeline.FormatJSON, nil
	}
	if _, ok := contentTypes[f]; !ok {
		return "", errors.New(errors.ErrCodeInvalidFormat, "format must be one of json, svg, html, dot; got %q", f)
	}
	return f, nil
}

// graph returns the loaded graph or answers 503.
func (s *Server) graph(w http.ResponseWriter) (*kg.Graph, bool) {
	g := s.runner.Graph()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return nil, false
	}
	return g, true
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	g, ok := s.graph(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"nodes":  g.NodeCount(),
		"edges":  g.EdgeCount(),
	})
}

func (s *Server) paths(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := s.opts.Paths
	var err error
	if p.MaxPaths, err = intParam(r, "paths", p.MaxPaths); err != nil {
		s.writeError(w, r, err)
		return
	}
	if p.MaxDepth, err = intParam(r, "depth", p.MaxDepth); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := p.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	format, err := formatParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Paths(r.Context(), q.Get("from"), q.Get("to"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, pipeline.NewPathsView(s.runner.Graph(), res, p.MaxPaths), format)
}

func (s *Server) expand(w http.ResponseWriter, r *http.Request) {
	p := s.opts.Expand
	var err error
	if p.Level, err = intParam(r, "level", p.Level); err != nil {
		s.writeError(w, r, err)
		return
	}
	if p.MaxFanout, err = intParam(r, "fanout", p.MaxFanout); err != nil {
		s.writeError(w, r, err)
		return
	}
	if p.Closure, err = boolParam(r, "closure", p.Closure); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := p.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	format, err := formatParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sub, err := s.runner.Expand(r.Context(), r.URL.Query().Get("center"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, pipeline.NewSubgraphView(s.runner.Graph(), sub, p), format)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, v *pipeline.View, format string) {
	if format == pipeline.FormatJSON {
		writeJSON(w, http.StatusOK, v.Doc)
		return
	}
	res, err := s.runner.Render(r.Context(), v, pipeline.RenderOptions{Formats: []string{format}})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	if res.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	_, _ = w.Write(res.Artifacts[format])
}

type nodeResponse struct {
	io.NodeDoc
	InCatalog bool                `json:"in_catalog"`
	Degree    int                 `json:"degree"`
	Types     map[kg.EdgeType]int `json:"edge_types,omitempty"`
}

func (s *Server) node(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateNodeID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, ok := s.graph(w)
	if !ok {
		return
	}
	n, inCatalog := g.Node(id)
	if !inCatalog && !g.HasEdges(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "unknown node %q", id))
		return
	}

	resp := nodeResponse{
		NodeDoc:   io.NodeDoc{ID: id, Kind: g.Kind(id).String()},
		InCatalog: inCatalog,
		Degree:    g.Degree(id),
		Types:     make(map[kg.EdgeType]int),
	}
	if inCatalog {
		resp.Name = n.Name
	}
	for _, e := range g.Edges() {
		if e.From == id || e.To == id {
			resp.Types[e.Type]++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	if g, ok := s.graph(w); ok {
		writeJSON(w, http.StatusOK, kg.Summarize(g))
	}
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	report, err := s.runner.Reload(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":        report.Source,
		"nodes":         report.Nodes,
		"edges":         report.Edges,
		"unknown_types": report.UnknownTypes,
		"skipped":       len(report.Skipped),
	})
}
