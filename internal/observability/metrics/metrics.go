package metrics

import "github.com/prometheus/client_golang/prometheus"

// PaymentMetrics exposes counters/histograms for the booking payment flow.
type PaymentMetrics struct {
	attemptsTotal  *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	stageTotal     *prometheus.CounterVec
}

func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	m := &PaymentMetrics{
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "astrobooking",
			Subsystem: "payment",
			Name:      "attempts_total",
			Help:      "Payment attempts by terminal outcome",
		}, []string{"outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "astrobooking",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of backend calls made during checkout",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		stageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "astrobooking",
			Subsystem: "wizard",
			Name:      "stage_entered_total",
			Help:      "Wizard stage transitions by destination stage",
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.attemptsTotal, m.backendLatency, m.stageTotal)
	return m
}

func (m *PaymentMetrics) ObserveAttempt(outcome string) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *PaymentMetrics) ObserveBackendCall(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.backendLatency.WithLabelValues(operation, status).Observe(seconds)
}

func (m *PaymentMetrics) ObserveStage(stage string) {
	if m == nil {
		return
	}
	m.stageTotal.WithLabelValues(stage).Inc()
}
