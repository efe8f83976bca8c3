// Package metrics provides Prometheus metrics for the reading tracker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal        *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	ClassificationsTotal *prometheus.CounterVec
	SyncRunsTotal        *prometheus.CounterVec
	SyncItemsTotal       *prometheus.CounterVec
	SessionsLogged       prometheus.Counter
	MinutesLogged        prometheus.Counter
	ErrorsTotal          *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infodiet_requests_total",
				Help: "Total HTTP requests by route and status.",
			},
			[]string{"route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "infodiet_request_duration_seconds",
				Help:    "Request processing duration by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		ClassificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infodiet_classifications_total",
				Help: "Content classifications by resulting type and signal path.",
			},
			[]string{"content_type", "path"},
		),
		SyncRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infodiet_sync_runs_total",
				Help: "Provider sync runs by source and outcome.",
			},
			[]string{"source", "outcome"},
		),
		SyncItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infodiet_sync_items_total",
				Help: "Items touched by provider sync, by source and action.",
			},
			[]string{"source", "action"},
		),
		SessionsLogged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "infodiet_sessions_logged_total",
				Help: "Reading sessions recorded through the ledger.",
			},
		),
		MinutesLogged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "infodiet_minutes_logged_total",
				Help: "Reading minutes recorded through the ledger.",
			},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "infodiet_errors_total",
				Help: "Total errors by module and type.",
			},
			[]string{"module", "type"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.ClassificationsTotal)
	reg.MustRegister(m.SyncRunsTotal)
	reg.MustRegister(m.SyncItemsTotal)
	reg.MustRegister(m.SessionsLogged)
	reg.MustRegister(m.MinutesLogged)
	reg.MustRegister(m.ErrorsTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments the request counter.
func (m *Metrics) RecordRequest(route, status string) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
}

// ObserveDuration records request duration.
func (m *Metrics) ObserveDuration(route string, seconds float64) {
	m.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordClassification increments the classification counter.
func (m *Metrics) RecordClassification(contentType, path string) {
	m.ClassificationsTotal.WithLabelValues(contentType, path).Inc()
}

// RecordSyncRun increments the sync run counter.
func (m *Metrics) RecordSyncRun(source, outcome string) {
	m.SyncRunsTotal.WithLabelValues(source, outcome).Inc()
}

// RecordSyncItem increments the per-item sync counter.
func (m *Metrics) RecordSyncItem(source, action string) {
	m.SyncItemsTotal.WithLabelValues(source, action).Inc()
}

// RecordSession counts one logged reading session and its minutes.
func (m *Metrics) RecordSession(minutes int) {
	m.SessionsLogged.Inc()
	if minutes > 0 {
		m.MinutesLogged.Add(float64(minutes))
	}
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(module, errType string) {
	m.ErrorsTotal.WithLabelValues(module, errType).Inc()
}
