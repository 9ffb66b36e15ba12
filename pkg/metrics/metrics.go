package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

var (
	// QueryDuration observes DuckDB query latency by table and operation.
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint: gochecknoglobals
		Namespace: "nerisdash",
		Subsystem: "relation",
		Name:      "query_duration_seconds",
		Help:      "Latency of parquet queries.",
		Buckets:   DefaultBuckets,
	}, []string{"table", "op"})

	// CacheRequests counts memoized computations by name and result (hit, miss, error).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint: gochecknoglobals
		Namespace: "nerisdash",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Memoized computations by result.",
	}, []string{"name", "result"})

	// UpstreamDuration observes calls to external HTTP APIs (NERIS, ArcGIS).
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint: gochecknoglobals
		Namespace: "nerisdash",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of upstream API calls.",
		Buckets:   DefaultBuckets,
	}, []string{"upstream", "status"})
)
