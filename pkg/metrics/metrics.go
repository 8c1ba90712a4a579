package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cache metrics (pkg/cache, §4.1)
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tinychain_cache_hits_total",
			Help: "Total number of block cache reads served from memory",
		},
	)

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tinychain_cache_misses_total",
			Help: "Total number of block cache reads that fell through to disk",
		},
	)

	CacheEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tinychain_cache_evictions_total",
			Help: "Total number of cache entries evicted under byte pressure",
		},
	)

	CacheSizeBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tinychain_cache_size_bytes",
			Help: "Current size of the block cache in bytes",
		},
	)

	// Transaction metrics (pkg/txn, §4.8)
	TxnBeginTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tinychain_txn_begin_total",
			Help: "Total number of transactions begun",
		},
	)

	TxnCommitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tinychain_txn_commit_total",
			Help: "Total number of transaction commit attempts by outcome",
		},
		[]string{"outcome"},
	)

	TxnCommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tinychain_txn_commit_duration_seconds",
			Help:    "Time taken to commit and finalize a transaction's resources",
			Buckets: prometheus.DefBuckets,
		},
	)

	TxnRecoveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tinychain_txn_recovered_total",
			Help: "Total number of committed-but-unfinalized transactions found on journal recovery",
		},
	)

	// Index/tensor metrics (pkg/btree, pkg/tensor, §4.5-4.7)
	BTreeOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tinychain_btree_op_duration_seconds",
			Help:    "Time taken by a B-tree operation by kind (insert, delete, slice, len)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	TensorOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tinychain_tensor_op_duration_seconds",
			Help:    "Time taken by a tensor block operation by kind (read, write, reduce)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(
		CacheHitsTotal,
		CacheMissesTotal,
		CacheEvictionsTotal,
		CacheSizeBytes,
		TxnBeginTotal,
		TxnCommitTotal,
		TxnCommitDuration,
		TxnRecoveredTotal,
		BTreeOpDuration,
		TensorOpDuration,
	)
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations and recording the elapsed
// duration to a histogram.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer, starting now.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
