package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query outcomes.
const (
	OutcomeMatch = "match"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Search and index metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_phase_total",
			Help:      "Query phases run, by phase and outcome",
		},
		[]string{"phase", "outcome"}, // phase: prefix/fuzzy
	)

	QueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query engine duration in seconds, cache hits included",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
	)

	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_total",
			Help:      "Query cache hits and misses",
		},
		[]string{"result"}, // hit/miss
	)

	IndexOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_operations_total",
			Help:      "Index writes, by operation and status",
		},
		[]string{"op", "status"}, // op: upsert/remove/rebuild; status: ok/skipped/error
	)

	IndexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_documents",
			Help:      "Documents in the index after the last rebuild",
		},
	)

	SearchDenied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_hits_denied_total",
			Help:      "Hits dropped by the authoriser",
		},
	)
)

func init() {
	prometheus.MustRegister(
		QueriesTotal,
		QueryDuration,
		QueryCacheTotal,
		IndexOpsTotal,
		IndexDocuments,
		SearchDenied,
	)
}
