// Package metrics provides Prometheus collectors for the portal server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics (BFF surface)
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorportal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentorportal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Calls to the storage and analysis backends
	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorportal_upstream_requests_total",
			Help: "Total number of requests to external backends",
		},
		[]string{"backend", "operation", "status"},
	)

	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentorportal_upstream_request_duration_seconds",
			Help:    "External backend request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"backend", "operation"},
	)

	// Session state
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mentorportal_active_sessions",
			Help: "Number of workspaces held in memory",
		},
	)

	treeFolders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mentorportal_last_tree_folders",
			Help: "Folder count of the most recently fetched tree",
		},
	)

	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorportal_analyses_total",
			Help: "Analysis actions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

// ObserveHTTP records one served request. route is the ServeMux pattern.
func ObserveHTTP(method, route, status string, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveUpstream records one backend call. status is the HTTP status or "error".
func ObserveUpstream(backend, operation, status string, d time.Duration) {
	upstreamRequestsTotal.WithLabelValues(backend, operation, status).Inc()
	upstreamRequestDuration.WithLabelValues(backend, operation).Observe(d.Seconds())
}

// SetActiveSessions updates the workspace gauge.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

// SetTreeFolders records the size of the last fetched tree.
func SetTreeFolders(n int) {
	treeFolders.Set(float64(n))
}

// RecordAnalysis counts an analysis action ("analyze", "view", "upload").
func RecordAnalysis(kind, outcome string) {
	analysesTotal.WithLabelValues(kind, outcome).Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
