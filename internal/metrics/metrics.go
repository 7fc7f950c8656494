// Package metrics defines Prometheus metrics for ripple.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TraversalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ripple_traversals_total",
			Help: "Traversal lifecycle transitions by outcome",
		},
		[]string{"outcome"},
	)

	NodesVisitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ripple_nodes_visited_total",
			Help: "Nodes dequeued and marked visited across all traversals",
		},
	)

	NodesEnqueuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ripple_nodes_enqueued_total",
			Help: "Nodes appended to a frontier across all traversals",
		},
	)

	TraversalSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ripple_traversal_visited_nodes",
			Help:    "Visited set size of completed traversals",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ripple_sessions_active",
			Help: "Open workspace sessions",
		},
	)

	StreamSubscribers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ripple_stream_subscribers",
			Help: "Connected frame stream clients by transport",
		},
		[]string{"transport"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ripple_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ripple_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// Traversal outcomes.
const (
	OutcomeStarted   = "started"
	OutcomeCompleted = "completed"
	OutcomeReset     = "reset"
)

func init() {
	prometheus.MustRegister(
		TraversalsTotal, NodesVisitedTotal, NodesEnqueuedTotal, TraversalSize,
		ActiveSessions, StreamSubscribers,
		RequestDuration, RequestsTotal,
	)
}
