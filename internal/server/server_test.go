package server

import (
	"context"
	"encoding/json"
	stdio "io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smdgraph/pkg/io"
	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/observability"
	"github.com/matzehuels/smdgraph/pkg/pipeline"
)

type memSource struct{}

func (memSource) Name() string { return "mem" }

func (memSource) Load(ctx context.Context, logger *log.Logger) (*kg.Graph, *io.LoadReport, error) {
	b := io.NewBuilder("mem", logger)
	b.Node(kg.Node{ID: "S_fever", Name: "Fever"}, "nodes", 1)
	b.Node(kg.Node{ID: "D_flu", Name: "Influenza"}, "nodes", 2)
	b.Node(kg.Node{ID: "S_lonely"}, "nodes", 3)
	for i, e := range []kg.Edge{
		{From: "D_flu", To: "S_fever", Type: kg.HasSymptom},
		{From: "S_fever", To: "M_heat", Type: kg.Suggests},
		{From: "M_heat", To: "S_chills", Type: kg.Causes},
	} {
		b.Edge(e, "edges", i+1)
	}
	g, report := b.Finish()
	return g, report, nil
}

func newTestServer(t *testing.T, load bool) (*httptest.Server, *Metrics) {
	t.Helper()
	logger := log.New(stdio.Discard)
	runner := pipeline.NewRunner(memSource{}, nil, nil, logger)
	m := NewMetrics()
	m.Install()
	t.Cleanup(observability.Reset)
	if load {
		if _, err := runner.Load(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	srv := httptest.NewServer(New(runner, Options{Metrics: m, Logger: logger}).Handler())
	t.Cleanup(srv.Close)
	return srv, m
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := stdio.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, true)
	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("body = %s", body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestHealthzNotLoaded(t *testing.T) {
	srv, _ := newTestServer(t, false)
	resp, _ := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	srv, _ := newTestServer(t, true)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/nodes/bad%20id", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "req-123" {
		t.Errorf("request id = %q", got)
	}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error.RequestID != "req-123" || body.Error.Code != "INVALID_NODE_ID" {
		t.Errorf("error body = %+v", body.Error)
	}
}

func TestPaths(t *testing.T) {
	srv, m := newTestServer(t, true)
	resp, body := get(t, srv.URL+"/api/v1/paths?from=D_flu&to=S_chills&paths=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var doc io.PathsDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Requested != 2 || doc.Found != 1 {
		t.Errorf("requested = %d, found = %d", doc.Requested, doc.Found)
	}
	if got := strings.Join(doc.Paths[0].Nodes, ","); got != "D_flu,S_fever,M_heat,S_chills" {
		t.Errorf("path = %s", got)
	}

	if got := counterValue(t, m, "smdgraph_http_requests_total", "route", "/api/v1/paths"); got != 1 {
		t.Errorf("request counter = %v", got)
	}
	if got := counterValue(t, m, "smdgraph_queries_total", "kind", "paths"); got != 1 {
		t.Errorf("query counter = %v", got)
	}
}

func TestPathsErrors(t *testing.T) {
	srv, _ := newTestServer(t, true)
	tests := []struct {
		name   string
		query  string
		status int
		code   string
	}{
		{"missing from", "to=S_fever", http.StatusBadRequest, "INVALID_NODE_ID"},
		{"depth not int", "from=S_fever&to=D_flu&depth=x", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"depth range", "from=S_fever&to=D_flu&depth=11", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"zero paths", "from=S_fever&to=D_flu&paths=0", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"negative paths", "from=S_fever&to=D_flu&paths=-1", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"paths range", "from=S_fever&to=D_flu&paths=21", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"zero depth", "from=S_fever&to=D_flu&depth=0", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"negative depth", "from=S_fever&to=D_flu&depth=-2", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"bad format", "from=S_fever&to=D_flu&format=gif", http.StatusBadRequest, "INVALID_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv.URL+"/api/v1/paths?"+tt.query)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if !strings.Contains(string(body), tt.code) {
				t.Errorf("body = %s, want code %s", body, tt.code)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	srv, _ := newTestServer(t, true)
	resp, body := get(t, srv.URL+"/api/v1/expand?center=S_fever&level=2&fanout=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var doc io.SubgraphDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Center != "S_fever" || doc.Level != 2 || doc.MaxFanout != 5 {
		t.Errorf("doc = %+v", doc)
	}
	if len(doc.Nodes) != 4 {
		t.Errorf("nodes = %+v", doc.Nodes)
	}

	resp, _ = get(t, srv.URL+"/api/v1/expand?center=S_fever&closure=maybe")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad closure status = %d", resp.StatusCode)
	}
}

func TestExpandErrors(t *testing.T) {
	srv, _ := newTestServer(t, true)
	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"missing center", "level=1", "INVALID_NODE_ID"},
		{"zero level", "center=D_flu&level=0", "INVALID_PARAMETER"},
		{"negative level", "center=D_flu&level=-1", "INVALID_PARAMETER"},
		{"level range", "center=D_flu&level=4", "INVALID_PARAMETER"},
		{"zero fanout", "center=D_flu&fanout=0", "INVALID_PARAMETER"},
		{"negative fanout", "center=D_flu&fanout=-3", "INVALID_PARAMETER"},
		{"fanout range", "center=D_flu&fanout=11", "INVALID_PARAMETER"},
		{"bad closure", "center=D_flu&closure=maybe", "INVALID_PARAMETER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv.URL+"/api/v1/expand?"+tt.query)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if !strings.Contains(string(body), tt.code) {
				t.Errorf("body = %s, want code %s", body, tt.code)
			}
		})
	}
}

func TestExpandDOT(t *testing.T) {
	srv, _ := newTestServer(t, true)
	resp, body := get(t, srv.URL+"/api/v1/expand?center=S_fever&format=dot")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/vnd.graphviz") {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.HasPrefix(string(body), "digraph G") {
		t.Errorf("body = %s", body)
	}
}

func TestNode(t *testing.T) {
	srv, _ := newTestServer(t, true)

	resp, body := get(t, srv.URL+"/api/v1/nodes/S_fever")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var n nodeResponse
	if err := json.Unmarshal(body, &n); err != nil {
		t.Fatal(err)
	}
	if n.Name != "Fever" || !n.InCatalog || n.Degree != 2 || n.Types[kg.HasSymptom] != 1 {
		t.Errorf("node = %+v", n)
	}

	resp, body = get(t, srv.URL+"/api/v1/nodes/M_heat")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"in_catalog":false`) {
		t.Errorf("edge-only node: %d %s", resp.StatusCode, body)
	}

	resp, _ = get(t, srv.URL+"/api/v1/nodes/S_missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown node status = %d", resp.StatusCode)
	}
}

func TestStatsAndReload(t *testing.T) {
	srv, _ := newTestServer(t, true)

	resp, body := get(t, srv.URL+"/api/v1/stats")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"isolated":1`) {
		t.Errorf("stats: %d %s", resp.StatusCode, body)
	}

	resp, err := http.Post(srv.URL+"/api/v1/reload", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("reload status = %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, true)
	get(t, srv.URL+"/healthz")
	resp, body := get(t, srv.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, name := range []string{"smdgraph_http_requests_total", "smdgraph_graph_nodes", "go_goroutines"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

// counterValue sums every series of a counter family whose label matches.
func counterValue(t *testing.T, m *Metrics, family, label, value string) float64 {
	t.Helper()
	mfs, err := m.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != family {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					total += metric.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}
