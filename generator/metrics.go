package generator

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts model calls. A nil *Metrics is valid and records nothing.
type Metrics struct {
	attempts *prometheus.CounterVec
	backoffs *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "articlegen",
			Name:      "llm_attempts_total",
			Help:      "Model call attempts by phase and outcome.",
		}, []string{"phase", "outcome"}),
		backoffs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "articlegen",
			Name:      "llm_backoffs_total",
			Help:      "Backoff sleeps taken before retrying a model call.",
		}, []string{"phase"}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.backoffs)
	}
	return m
}

func (m *Metrics) attempt(phase, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(phase, outcome).Inc()
}

func (m *Metrics) backoff(phase string) {
	if m == nil {
		return
	}
	m.backoffs.WithLabelValues(phase).Inc()
}
