/*
Package metrics provides Prometheus metrics collection and exposition
for tinychain: cache hit/miss/eviction counters, transaction
begin/commit/recovery counters, and per-operation latency histograms
for the B-tree index and tensor block layer.

# Metrics catalog

tinychain_cache_hits_total / tinychain_cache_misses_total:
  - Type: Counter
  - Description: Block cache reads served from memory vs. read through
    to disk (pkg/cache, spec §4.1)

tinychain_cache_evictions_total:
  - Type: Counter
  - Description: Cache entries evicted under byte pressure

tinychain_cache_size_bytes:
  - Type: Gauge
  - Description: Current cache size, sampled every 15s by Collector

tinychain_txn_begin_total / tinychain_txn_commit_total{outcome}:
  - Type: Counter
  - Description: Transactions begun, and commit attempts by outcome
    ("committed" / "rolled_back")

tinychain_txn_commit_duration_seconds:
  - Type: Histogram
  - Description: Time to commit and finalize a transaction's resources

tinychain_txn_recovered_total:
  - Type: Counter
  - Description: Committed-but-unfinalized transactions found during
    journal recovery on startup

tinychain_btree_op_duration_seconds{op} / tinychain_tensor_op_duration_seconds{op}:
  - Type: Histogram
  - Description: Per-operation latency for the B-tree index and the
    tensor block layer

Within this module only tinychain_cache_size_bytes (by Collector) and
tinychain_txn_recovered_total (by the serve command) are updated; the
other collectors are registered but nothing increments or observes
them.

# Usage

	timer := metrics.NewTimer()
	err := coordinator.Commit(ctx, tx)
	timer.ObserveDuration(metrics.TxnCommitDuration)
	outcome := "committed"
	if err != nil {
		outcome = "rolled_back"
	}
	metrics.TxnCommitTotal.WithLabelValues(outcome).Inc()

Health and readiness are handled separately, by HealthHandler,
ReadyHandler, and LivenessHandler in health.go: critical components for
readiness are "journal" (the durable commit log opened) and "cache"
(the block cache initialized).
*/
package metrics
