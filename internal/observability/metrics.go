package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tangerine_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FavoriteToggles counts favorite toggle operations by outcome.
	FavoriteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tangerine_favorite_toggles_total",
		Help: "Total favorite toggle operations by outcome (added|removed)",
	}, []string{"outcome"})

	// TrendingRecomputes counts trending score recomputations by trigger.
	TrendingRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tangerine_trending_recomputes_total",
		Help: "Total trending score recomputations by trigger (worker|read_through)",
	}, []string{"trigger"})

	// TrendingRecomputeLatency records the duration of a single score recompute.
	TrendingRecomputeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tangerine_trending_recompute_latency_seconds",
		Help:    "Trending score recompute latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// TrendingQueueDrops counts recompute requests dropped because the queue was full.
	TrendingQueueDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tangerine_trending_queue_drops_total",
		Help: "Total trending recompute requests dropped due to a full queue",
	})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tangerine_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tangerine_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tangerine_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
