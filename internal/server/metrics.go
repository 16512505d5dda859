package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/smdgraph/pkg/observability"
)

// Metrics implements the observability hooks with Prometheus collectors.
// Each instance owns its registry so tests and embedded servers do not
// collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	loadsTotal    *prometheus.CounterVec
	loadDuration  prometheus.Histogram
	graphNodes    prometheus.Gauge
	graphEdges    prometheus.Gauge
	skippedRecord prometheus.Gauge

	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	querySize     *prometheus.HistogramVec

	rendersTotal   *prometheus.CounterVec
	renderDuration prometheus.Histogram

	cacheEvents *prometheus.CounterVec
	cacheBytes  prometheus.Counter
}

// NewMetrics creates and registers the collectors, plus the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smdgraph_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smdgraph_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		loadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smdgraph_graph_loads_total",
			Help: "Graph loads by outcome",
		}, []string{"outcome"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "smdgraph_graph_load_duration_seconds",
			Help:    "Graph load duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "smdgraph_graph_nodes",
			Help: "Catalog nodes in the loaded graph",
		}),
		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "smdgraph_graph_edges",
			Help: "Edges in the loaded graph",
		}),
		skippedRecord: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "smdgraph_graph_skipped_records",
			Help: "Records skipped during the last load",
		}),
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smdgraph_queries_total",
			Help: "Queries by kind and outcome",
		}, []string{"kind", "outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smdgraph_query_duration_seconds",
			Help:    "Query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"kind"}),
		querySize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smdgraph_query_result_size",
			Help:    "Paths found or nodes discovered per query",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50, 100, 200},
		}, []string{"kind"}),
		rendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smdgraph_renders_total",
			Help: "Renders by outcome",
		}, []string{"outcome"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "smdgraph_render_duration_seconds",
			Help:    "Render duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smdgraph_cache_events_total",
			Help: "Cache hits, misses and writes by key type",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smdgraph_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal, m.requestDuration,
		m.loadsTotal, m.loadDuration, m.graphNodes, m.graphEdges, m.skippedRecord,
		m.queriesTotal, m.queryDuration, m.querySize,
		m.rendersTotal, m.renderDuration,
		m.cacheEvents, m.cacheBytes,
	)
	return m
}

// Install registers m as the process-wide pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, nodes, edges, skipped int, d time.Duration, err error) {
	m.loadsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	m.loadDuration.Observe(d.Seconds())
	m.graphNodes.Set(float64(nodes))
	m.graphEdges.Set(float64(edges))
	m.skippedRecord.Set(float64(skipped))
}

func (m *Metrics) OnQueryStart(context.Context, string) {}

func (m *Metrics) OnQueryComplete(_ context.Context, kind string, size int, d time.Duration, err error) {
	m.queriesTotal.WithLabelValues(kind, outcome(err)).Inc()
	m.queryDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err == nil {
		m.querySize.WithLabelValues(kind).Observe(float64(size))
	}
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.rendersTotal.WithLabelValues(outcome(err)).Inc()
	m.renderDuration.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
