package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are registered on the default registry and exposed through the
// /metrics endpoint.
var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stocktake",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, path pattern, and status code",
	}, []string{"method", "path", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stocktake",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	EventsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "stocktake",
		Name:      "events_loaded",
		Help:      "Number of check events in the current snapshot",
	})

	RecomputeDuration = promauto.NewSummary(prometheus.SummaryOpts{
		Namespace: "stocktake",
		Name:      "recompute_duration_seconds",
		Help:      "Time spent recomputing aggregates from the event snapshot",
	})
)
