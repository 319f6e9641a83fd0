// Package metrics exposes the simulator's prometheus collectors.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chargesim/backend/services/charging-sim/internal/models"
)

const namespace = "chargesim"

// NewRegistry creates a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics holds the business collectors.
type AppMetrics struct {
	SessionsCreated    prometheus.Counter
	CreateRejections   *prometheus.CounterVec // labels: reason
	SessionTransitions *prometheus.CounterVec // labels: type, reason
	ConnectorSamples   *prometheus.CounterVec // labels: status
	HTTPRequests       *prometheus.CounterVec // labels: method, code
}

// NewAppMetrics registers and returns the business collectors.
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	m := &AppMetrics{
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Sessions successfully reserved.",
		}),
		CreateRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_create_rejections_total",
			Help:      "Reservation attempts refused, by reason.",
		}, []string{"reason"}),
		SessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Lifecycle transitions by event type and completion reason.",
		}, []string{"type", "reason"}),
		ConnectorSamples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_samples_total",
			Help:      "Simulated connector statuses handed out.",
		}, []string{"status"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "code"}),
	}
	reg.MustRegister(m.SessionsCreated, m.CreateRejections, m.SessionTransitions, m.ConnectorSamples, m.HTTPRequests)
	return m
}

// ObserveSample implements availability.Recorder.
func (m *AppMetrics) ObserveSample(status models.ConnectorStatus) {
	m.ConnectorSamples.WithLabelValues(string(status)).Inc()
}

// ObserveRejection implements service.RejectionRecorder.
func (m *AppMetrics) ObserveRejection(reason string) {
	m.CreateRejections.WithLabelValues(reason).Inc()
}

// ObserveRequest counts a served HTTP request.
func (m *AppMetrics) ObserveRequest(method string, code int) {
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// Name implements events.Sink.
func (m *AppMetrics) Name() string { return "metrics" }

// Handle implements events.Sink.
func (m *AppMetrics) Handle(_ context.Context, event models.SessionEvent) error {
	if event.Type == models.EventSessionReserved {
		m.SessionsCreated.Inc()
	}
	m.SessionTransitions.WithLabelValues(string(event.Type), event.Reason).Inc()
	return nil
}
