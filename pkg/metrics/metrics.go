package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingest Metrics
	IngestEventsConsumedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerboard_ingest_events_consumed_total",
		Help: "The total number of upload events consumed from Kafka",
	})
	IngestParseFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerboard_ingest_parse_failures_total",
		Help: "The total number of upload events skipped because the envelope could not be parsed",
	})
	IngestValidationRejectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerboard_ingest_validation_rejects_total",
		Help: "The total number of uploads rejected as structurally invalid",
	})
	ExtractFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerboard_extract_failures_total",
		Help: "The total number of failed or timed-out extraction calls",
	})
	ExtractLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "towerboard_extract_latency_seconds",
		Help:    "Latency of the external extraction call",
		Buckets: prometheus.DefBuckets,
	})

	// Merge Metrics
	MergeAcceptedSlotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerboard_merge_accepted_slots_total",
		Help: "The total number of tier slots accepted as improvements",
	})
	MergeSkippedSlotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerboard_merge_skipped_slots_total",
		Help: "The total number of tier slots skipped as non-improvements",
	})
	MergeHistoryAppendsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerboard_merge_history_appends_total",
		Help: "The total number of history snapshots appended",
	})
	MergeHistoryDedupTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerboard_merge_history_dedup_total",
		Help: "The total number of history snapshots suppressed as duplicates of the preceding entry",
	})
	MergeStorageErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerboard_merge_storage_errors_total",
		Help: "The total number of merges aborted by storage failures",
	})
	MergeLockTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerboard_merge_lock_timeouts_total",
		Help: "The total number of merges that could not acquire the per-player lock in time",
	})
	MergeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "towerboard_merge_latency_seconds",
		Help:    "Latency of the merge transaction, lock hold included",
		Buckets: prometheus.DefBuckets,
	})
	StatsSnapshotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerboard_stats_snapshots_total",
		Help: "The total number of stats snapshots stored",
	})
)
