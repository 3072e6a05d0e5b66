package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalogd"

// Dispatch outcomes
const (
	OutcomeSuccess       = "success"
	OutcomeRemoteError   = "remote_error"
	OutcomeNotFound      = "not_found"
	OutcomeValidation    = "validation"
	OutcomeQuotaExceeded = "quota_exceeded"
	OutcomeDocumentation = "documentation"
	OutcomeCached        = "cached"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Meta-operation metrics
	OperationCalls    *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Dispatch metrics
	Dispatches     *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheSize   prometheus.Gauge

	// Rate limiter metrics
	QueuedRequests    prometheus.Gauge
	RateLimitRejected prometheus.Counter

	// Quota and breaker metrics
	QuotaChecks  *prometheus.CounterVec
	BreakerState *prometheus.GaugeVec

	// Index metrics
	IndexBuilds    prometheus.Counter
	IndexedEntries prometheus.Gauge

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for the stats endpoint
type MetricsSnapshot struct {
	TotalRequests   int64   `json:"totalRequests"`
	TotalErrors     int64   `json:"totalErrors"`
	TotalDispatches int64   `json:"totalDispatches"`
	FailedDispatch  int64   `json:"failedDispatches"`
	CacheHits       int64   `json:"cacheHits"`
	TotalDuration   float64 `json:"totalDurationSeconds"`
	RequestCount    int64   `json:"requestCount"`
	UptimeSeconds   float64 `json:"uptimeSeconds"`
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{startTime: time.Now()}

	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
	m.RequestSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)
	m.ResponseSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	m.OperationCalls = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_calls_total",
			Help:      "Meta-operation calls by outcome",
		},
		[]string{"operation", "status"},
	)
	m.OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Meta-operation duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"operation"},
	)

	m.Dispatches = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Execute calls by HTTP method and outcome",
		},
		[]string{"method", "outcome"},
	)
	m.RemoteDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Remote API call duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "status_class"},
	)

	m.CacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Response cache hits",
	})
	m.CacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Response cache misses",
	})
	m.CacheSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_entries",
		Help:      "Entries currently held in the response cache",
	})

	m.QueuedRequests = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ratelimit_queued_requests",
		Help:      "Callers waiting for a rate limiter token",
	})
	m.RateLimitRejected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratelimit_rejected_total",
		Help:      "Dispatches rejected by the rate limiter",
	})

	m.QuotaChecks = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_checks_total",
			Help:      "Quota checks by threshold",
		},
		[]string{"threshold"},
	)
	m.BreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	m.IndexBuilds = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_index_builds_total",
		Help:      "Search index builds",
	})
	m.IndexedEntries = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "search_indexed_entries",
		Help:      "Entries in the current search index",
	})

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Process uptime in seconds",
	}, func() float64 { return time.Since(m.startTime).Seconds() })

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOperation records one meta-operation call
func (m *Metrics) RecordOperation(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.OperationCalls.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDispatch records the outcome of one execute call
func (m *Metrics) RecordDispatch(method, outcome string) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(method, outcome).Inc()

	m.mu.Lock()
	m.snapshot.TotalDispatches++
	switch outcome {
	case OutcomeSuccess, OutcomeCached, OutcomeDocumentation:
	default:
		m.snapshot.FailedDispatch++
	}
	m.mu.Unlock()
}

// RecordRemoteCall records remote latency by status class ("2xx", "error")
func (m *Metrics) RecordRemoteCall(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RemoteDuration.WithLabelValues(method, StatusClass(status)).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if !hit {
		m.CacheMisses.Inc()
		return
	}
	m.CacheHits.Inc()
	m.mu.Lock()
	m.snapshot.CacheHits++
	m.mu.Unlock()
}

// SetCacheSize sets the cache entry gauge
func (m *Metrics) SetCacheSize(n int) {
	if m == nil {
		return
	}
	m.CacheSize.Set(float64(n))
}

// SetQueued sets the rate limiter queue gauge
func (m *Metrics) SetQueued(n int64) {
	if m == nil {
		return
	}
	m.QueuedRequests.Set(float64(n))
}

// IncRateLimited counts a rejected dispatch
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitRejected.Inc()
}

// RecordQuotaCheck counts a quota classification
func (m *Metrics) RecordQuotaCheck(threshold string) {
	if m == nil {
		return
	}
	m.QuotaChecks.WithLabelValues(threshold).Inc()
}

// SetBreakerState publishes a breaker state as a number
func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(state)
}

// RecordIndexBuild records a search index build
func (m *Metrics) RecordIndexBuild(entries int) {
	if m == nil {
		return
	}
	m.IndexBuilds.Inc()
	m.IndexedEntries.Set(float64(entries))
}

// Snapshot returns the JSON-friendly counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := m.snapshot
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
