package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geocore",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geocore",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geocore",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Clustering metrics
	ClusteringDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geocore",
		Subsystem: "clustering",
		Name:      "duration_seconds",
		Help:      "Time spent grouping items into markers",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"target"})

	ClusteringInputSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geocore",
		Subsystem: "clustering",
		Name:      "input_items",
		Help:      "Number of items fed to a clustering pass",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	ClusteringReduction = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geocore",
		Subsystem: "clustering",
		Name:      "reduction_ratio_percent",
		Help:      "Share of markers saved by clustering",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})

	// Navigation metrics
	FixesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geocore",
		Subsystem: "navigation",
		Name:      "fixes_ingested_total",
		Help:      "Total GPS fixes accepted",
	}, []string{"source"})

	FixesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geocore",
		Subsystem: "navigation",
		Name:      "fixes_rejected_total",
		Help:      "Total GPS fixes rejected as invalid or unparseable",
	}, []string{"source"})

	SessionResets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geocore",
		Subsystem: "navigation",
		Name:      "session_resets_total",
		Help:      "Total navigation sessions reset by a gap or explicit request",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geocore",
		Subsystem: "navigation",
		Name:      "active_sessions",
		Help:      "Vessels with an open navigation session",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geocore",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geocore",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geocore",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geocore",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geocore",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geocore",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// Route pattern, not raw path, keeps vessel ids out of label values.
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics copies pool stats into the pool gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
}

// ObserveClustering records one clustering pass.
func ObserveClustering(target string, items, reductionPercent int, took time.Duration) {
	ClusteringDuration.WithLabelValues(target).Observe(took.Seconds())
	ClusteringInputSize.Observe(float64(items))
	ClusteringReduction.Observe(float64(reductionPercent))
}
