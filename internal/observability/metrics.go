package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "helpdesk"

// Metrics holds the service's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	classifications *prometheus.CounterVec
	remoteDuration  prometheus.Histogram
	ticketEvents    *prometheus.CounterVec
}

// NewMetrics initializes the collectors without registering them.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests handled, partitioned by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_errors_total",
				Help:      "HTTP error responses, partitioned by error code.",
			},
			[]string{"method", "route", "code"},
		),
		classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifications_total",
				Help:      "Ticket classifications, partitioned by result source and fallback reason.",
			},
			[]string{"source", "reason"},
		),
		remoteDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "classifier_remote_seconds",
				Help:      "Latency of remote classification calls in seconds.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
			},
		),
		ticketEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tickets_total",
				Help:      "Ticket lifecycle events, partitioned by event type.",
			},
			[]string{"event"},
		),
	}
}

// Register attaches the collectors to reg, tolerating collectors that are already registered.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if m == nil {
		return nil
	}
	collectors := []prometheus.Collector{
		m.requests,
		m.requestDuration,
		m.errors,
		m.classifications,
		m.remoteDuration,
		m.ticketEvents,
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// RecordRequest counts a request and observes its latency.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(nonNegative(duration).Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, route, code).Inc()
}

// RecordClassification counts a classification result. reason is empty unless the fallback ran.
func (m *Metrics) RecordClassification(source, reason string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(source, reason).Inc()
}

// ObserveRemoteClassification records the latency of one remote classification call.
func (m *Metrics) ObserveRemoteClassification(duration time.Duration) {
	if m == nil {
		return
	}
	m.remoteDuration.Observe(nonNegative(duration).Seconds())
}

// RecordTicketEvent counts a lifecycle event such as ticket_submitted.
func (m *Metrics) RecordTicketEvent(event string) {
	if m == nil {
		return
	}
	m.ticketEvents.WithLabelValues(event).Inc()
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
