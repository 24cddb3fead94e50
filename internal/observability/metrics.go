package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes Prometheus instrumentation for the service.
type Metrics struct {
	requests        *prometheus.CounterVec
	errors          *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reportDuration  prometheus.Histogram
	tenantsSkipped  prometheus.Counter
}

// NewMetrics registers collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "HTTP request errors by path, method and error code.",
		}, []string{"path", "method", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by path and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		reportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "analytics_report_duration_seconds",
			Help:    "Wall time spent building one analytics report.",
			Buckets: prometheus.DefBuckets,
		}),
		tenantsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "analytics_tenants_skipped_total",
			Help: "Tenants dropped from reports after a failed fetch.",
		}),
	}
}

// RecordRequest increments the request counter and observes its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// ObserveReport records the duration of one report build.
func (m *Metrics) ObserveReport(duration time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.Observe(duration.Seconds())
}

// RecordSkippedTenant counts a tenant dropped after a fetch failure.
func (m *Metrics) RecordSkippedTenant() {
	if m == nil {
		return
	}
	m.tenantsSkipped.Inc()
}
