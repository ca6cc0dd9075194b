// Package metrics exposes Prometheus instrumentation for the portal.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portal"

// Collector holds the portal's Prometheus instruments. A nil *Collector is
// valid and records nothing, so components can run without metrics.
type Collector struct {
	routeDecisions      *prometheus.CounterVec
	bookingOutcomes     *prometheus.CounterVec
	gatewayEvents       *prometheus.CounterVec
	verificationLatency *prometheus.HistogramVec
	sessionRestores     *prometheus.CounterVec
	liveSessions        prometheus.Gauge
	notifications       *prometheus.CounterVec
}

// NewCollector creates the instruments and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		routeDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_decisions_total",
			Help:      "Access decisions taken by the route guard.",
		}, []string{"class", "decision"}),
		bookingOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_outcomes_total",
			Help:      "Booking attempts reaching a terminal state.",
		}, []string{"state", "method", "error_class"}),
		gatewayEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_events_total",
			Help:      "Checkout callbacks received, by kind and whether they were accepted.",
		}, []string{"kind", "accepted"}),
		verificationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_verification_seconds",
			Help:      "Latency of backend payment verification calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		sessionRestores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_restores_total",
			Help:      "Session restorations by result.",
		}, []string{"result"}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "client_sessions",
			Help:      "Client sessions currently held in memory.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_notifications_total",
			Help:      "Reconciliation alerts sent to ops sinks.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.routeDecisions,
		c.bookingOutcomes,
		c.gatewayEvents,
		c.verificationLatency,
		c.sessionRestores,
		c.liveSessions,
		c.notifications,
	)
	return c
}

// RecordRouteDecision counts one guard decision.
func (c *Collector) RecordRouteDecision(class, decision string) {
	if c == nil {
		return
	}
	c.routeDecisions.WithLabelValues(class, decision).Inc()
}

// RecordBookingOutcome counts an attempt reaching a terminal state.
func (c *Collector) RecordBookingOutcome(state, method, errorClass string) {
	if c == nil {
		return
	}
	c.bookingOutcomes.WithLabelValues(state, method, errorClass).Inc()
}

// RecordGatewayEvent counts a checkout callback.
func (c *Collector) RecordGatewayEvent(kind string, accepted bool) {
	if c == nil {
		return
	}
	label := "false"
	if accepted {
		label = "true"
	}
	c.gatewayEvents.WithLabelValues(kind, label).Inc()
}

// ObserveVerification records how long a verification call took.
func (c *Collector) ObserveVerification(d time.Duration, ok bool) {
	if c == nil {
		return
	}
	result := ResultSuccess
	if !ok {
		result = ResultError
	}
	c.verificationLatency.WithLabelValues(result).Observe(d.Seconds())
}

// RecordSessionRestore counts a restoration by result (restored, anonymous, error).
func (c *Collector) RecordSessionRestore(result string) {
	if c == nil {
		return
	}
	c.sessionRestores.WithLabelValues(result).Inc()
}

// SetLiveSessions reports the number of in-memory client sessions.
func (c *Collector) SetLiveSessions(n int) {
	if c == nil {
		return
	}
	c.liveSessions.Set(float64(n))
}

// RecordNotification counts an ops alert delivery.
func (c *Collector) RecordNotification(ok bool) {
	if c == nil {
		return
	}
	result := ResultSuccess
	if !ok {
		result = ResultError
	}
	c.notifications.WithLabelValues(result).Inc()
}

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
