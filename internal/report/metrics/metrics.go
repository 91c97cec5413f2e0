package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the moderation engine's Prometheus metrics.
type Metrics struct {
	Filed    *prometheus.CounterVec
	Reviewed *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Filed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "galang_reports_filed_total",
			Help: "Abuse reports filed, by reason",
		}, []string{"reason"}),
		Reviewed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "galang_reports_reviewed_total",
			Help: "Report reviews, by action taken",
		}, []string{"action"}),
	}
}

func (m *Metrics) RecordFiled(reason string) {
	if m != nil {
		m.Filed.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) RecordReviewed(action string) {
	if m != nil {
		m.Reviewed.WithLabelValues(action).Inc()
	}
}
