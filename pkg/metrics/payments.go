package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// PaymentMetrics tracks processor round trips and webhook traffic.
type PaymentMetrics struct {
	calls         *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	notifications *prometheus.CounterVec
	charges       prometheus.Counter
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "processor_calls_total",
		Help: "Calls to the payment processor, by operation and outcome.",
	}, []string{"operation", "outcome"})
	callDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "processor_call_duration_seconds",
		Help:    "Payment processor call latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_notifications_total",
		Help: "Verified webhook notifications, by kind.",
	}, []string{"kind"})
	charges := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "subscription_charges_total",
		Help: "Successful recurring subscription charges reported by the processor.",
	})
	reg.MustRegister(calls, callDuration, notifications, charges)
	return &PaymentMetrics{
		calls:         calls,
		callDuration:  callDuration,
		notifications: notifications,
		charges:       charges,
	}
}

// ObserveCall records the outcome and latency of one processor operation.
func (m *PaymentMetrics) ObserveCall(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.calls == nil {
		return
	}
	operation = normalizeLabel(operation)
	m.calls.WithLabelValues(operation, normalizeLabel(outcome)).Inc()
	m.callDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// IncNotification counts a parsed webhook notification.
func (m *PaymentMetrics) IncNotification(kind string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncSubscriptionCharged counts a successful recurring charge.
func (m *PaymentMetrics) IncSubscriptionCharged() {
	if m == nil || m.charges == nil {
		return
	}
	m.charges.Inc()
}
