package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Auth
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Register and login attempts by outcome",
		},
		[]string{"op", "result"}, // register|login, ok|rejected|error
	)

	// Posts
	PostMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_mutations_total",
			Help: "Successful post mutations",
		},
		[]string{"op"}, // create|update|delete|comment
	)
	PolicyDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_policy_denials_total",
			Help: "Mutations rejected by the ownership policy",
		},
		[]string{"op"},
	)
	PostViews = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "post_views_total",
			Help: "Post detail fetches counted",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
	WorkerDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worker_jobs_dropped_total",
			Help: "Jobs dropped because the worker queue was full or stopped",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			AuthAttempts,
			PostMutations,
			PolicyDenials,
			PostViews,
			WorkerQueueDepth,
			WorkerDropped,
		)
	})
}
