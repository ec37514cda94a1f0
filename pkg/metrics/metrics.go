// Package metrics provides Prometheus metrics for the tally
// leaderboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// customRegistry keeps service metrics separate from the default
// registry so /healthz serves exactly what we register.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

var defaultManager *Manager //nolint:gochecknoglobals // intentional global for package-level helpers

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	defaultManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Manager manages all Prometheus metrics for the tally service.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Claim pipeline
	claimsTotal     prometheus.Counter
	awardPoints     prometheus.Histogram
	partialFailures prometheus.Counter

	// Registry state
	registrationsTotal prometheus.Counter
	participantsTotal  prometheus.Gauge

	// Fan-out
	subscribersTotal  prometheus.Gauge
	broadcastsTotal   prometheus.Counter
	droppedDeliveries prometheus.Counter

	// Transport
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimitedTotal    prometheus.Counter
}

// NewManager creates a metrics manager with configuration options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tally",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.claimsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "claims_total",
		Help:      "Total number of successful point claims.",
	})
	m.awardPoints = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "award_points",
		Help:      "Distribution of points awarded per claim.",
		Buckets:   prometheus.LinearBuckets(1, 1, 10),
	})
	m.partialFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "claim_partial_failures_total",
		Help:      "Claims whose score committed but whose audit append failed.",
	})

	m.registrationsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "registrations_total",
		Help:      "Total number of participant registrations.",
	})
	m.participantsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "participants",
		Help:      "Current number of registered participants.",
	})

	m.subscribersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "subscribers",
		Help:      "Current number of live-update subscribers.",
	})
	m.broadcastsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "broadcasts_total",
		Help:      "Total number of leaderboard snapshots published.",
	})
	m.droppedDeliveries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "dropped_deliveries_total",
		Help:      "Snapshots dropped because a subscriber buffer was full.",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})
	m.rateLimitedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	})
}

// Package-level helpers against the default manager.

// RecordClaim counts one successful claim and observes its award.
func RecordClaim(points int) {
	defaultManager.claimsTotal.Inc()
	defaultManager.awardPoints.Observe(float64(points))
}

// RecordPartialFailure counts a committed increment with a failed
// audit append.
func RecordPartialFailure() {
	defaultManager.partialFailures.Inc()
}

// RecordRegistration counts one participant registration.
func RecordRegistration() {
	defaultManager.registrationsTotal.Inc()
}

// UpdateParticipantCount updates the participant gauge.
func UpdateParticipantCount(count int) {
	defaultManager.participantsTotal.Set(float64(count))
}

// UpdateSubscriberCount updates the live-subscriber gauge.
func UpdateSubscriberCount(count int) {
	defaultManager.subscribersTotal.Set(float64(count))
}

// RecordBroadcast counts one snapshot publish.
func RecordBroadcast() {
	defaultManager.broadcastsTotal.Inc()
}

// RecordDroppedDelivery counts one per-subscriber dropped snapshot.
func RecordDroppedDelivery() {
	defaultManager.droppedDeliveries.Inc()
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration in
// milliseconds.
func RecordHTTPRequestDuration(endpoint, method string, durationMs float64) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(durationMs)
}

// RecordRateLimited counts one rate-limited request.
func RecordRateLimited() {
	defaultManager.rateLimitedTotal.Inc()
}

// GetRegistry returns the registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
