// Package metrics defines the Prometheus collectors shared by the resolver
// and the embedded index engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

var (
	// Resolutions counts module resolutions by backend and outcome.
	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conductor_module_resolutions_total",
			Help: "Total number of module resolutions.",
		},
		[]string{"backend", "outcome"},
	)

	// Bootstraps counts embedded index engine start attempts.
	Bootstraps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conductor_embedded_bootstrap_total",
			Help: "Total number of embedded index engine bootstrap attempts.",
		},
		[]string{"version", "outcome"},
	)

	// IndexRequests counts HTTP requests served by the embedded index engine.
	IndexRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conductor_index_http_requests_total",
			Help: "Total number of embedded index engine HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// IndexRequestDuration records embedded index engine request latency.
	IndexRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "conductor_index_http_request_duration_seconds",
			Help:    "Embedded index engine HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// DocumentsIndexed counts documents written to the embedded engine.
	DocumentsIndexed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "conductor_index_documents_indexed_total",
			Help: "Total number of documents indexed by the embedded engine.",
		},
	)
)

func init() {
	prometheus.MustRegister(Resolutions)
	prometheus.MustRegister(Bootstraps)
	prometheus.MustRegister(IndexRequests)
	prometheus.MustRegister(IndexRequestDuration)
	prometheus.MustRegister(DocumentsIndexed)
}

// Handler returns the Prometheus metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
