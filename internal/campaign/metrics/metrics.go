package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the campaign registry's Prometheus metrics.
type Metrics struct {
	Created       prometheus.Counter
	StatusChanges *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "galang_campaigns_created_total",
			Help: "Total number of campaigns created",
		}),
		StatusChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "galang_campaign_status_changes_total",
			Help: "Campaign status transitions by target status",
		}, []string{"to"}),
	}
}

func (m *Metrics) RecordCreated() {
	if m != nil {
		m.Created.Inc()
	}
}

func (m *Metrics) RecordStatusChange(to string) {
	if m != nil {
		m.StatusChanges.WithLabelValues(to).Inc()
	}
}
