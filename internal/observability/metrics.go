// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	SnapshotsAccepted   prometheus.Counter
	SnapshotsRejected   *prometheus.CounterVec
	SnapshotsDuplicated prometheus.Counter
	FlushLatency        prometheus.Histogram
	FeedReconnects      prometheus.Counter

	// Backtest metrics
	PoolsScanned    prometheus.Counter
	TradesSimulated prometheus.Counter
	BacktestErrors  prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_pool_lab"
	}

	return &Metrics{
		// Ingestion metrics
		SnapshotsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "snapshots_accepted_total",
			Help:      "Total number of snapshots stored",
		}),
		SnapshotsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "snapshots_rejected_total",
			Help:      "Total number of snapshots rejected by reason",
		}, []string{"reason"}),
		SnapshotsDuplicated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "snapshots_duplicated_total",
			Help:      "Total number of snapshots dropped as duplicates",
		}),
		FlushLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "flush_latency_seconds",
			Help:      "Snapshot batch flush latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "feed_reconnects_total",
			Help:      "Total number of collector feed reconnects",
		}),

		// Backtest metrics
		PoolsScanned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "pools_scanned_total",
			Help:      "Total number of pools scanned for entry patterns",
		}),
		TradesSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "trades_simulated_total",
			Help:      "Total number of trades simulated",
		}),
		BacktestErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "errors_total",
			Help:      "Total number of failed pool backtests",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSnapshotAccepted adds stored snapshots to the accepted counter.
func RecordSnapshotAccepted(n int) {
	DefaultMetrics.SnapshotsAccepted.Add(float64(n))
}

// RecordSnapshotRejected increments the rejected counter for a reason.
func RecordSnapshotRejected(reason string) {
	DefaultMetrics.SnapshotsRejected.WithLabelValues(reason).Inc()
}

// RecordSnapshotDuplicated adds dropped snapshots to the duplicate counter.
func RecordSnapshotDuplicated(n int) {
	DefaultMetrics.SnapshotsDuplicated.Add(float64(n))
}

// RecordFeedReconnect increments the feed reconnect counter.
func RecordFeedReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}

// RecordPoolScanned increments the pools scanned counter.
func RecordPoolScanned() {
	DefaultMetrics.PoolsScanned.Inc()
}

// RecordTradeSimulated increments the trades simulated counter.
func RecordTradeSimulated() {
	DefaultMetrics.TradesSimulated.Inc()
}

// RecordBacktestError increments the backtest error counter.
func RecordBacktestError() {
	DefaultMetrics.BacktestErrors.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
