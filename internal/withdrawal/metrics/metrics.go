package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the withdrawal ledger's Prometheus metrics.
type Metrics struct {
	Requested       prometheus.Counter
	Resolved        *prometheus.CounterVec
	CompletedAmount prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Requested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "galang_withdrawals_requested_total",
			Help: "Total number of withdrawal requests accepted",
		}),
		Resolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "galang_withdrawals_resolved_total",
			Help: "Withdrawal resolutions by outcome",
		}, []string{"outcome"}),
		CompletedAmount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "galang_withdrawals_completed_amount_total",
			Help: "Total amount disbursed via completed withdrawals, in minor units",
		}),
	}
}

func (m *Metrics) RecordRequested() {
	if m != nil {
		m.Requested.Inc()
	}
}

func (m *Metrics) RecordResolved(outcome string, amount int64) {
	if m != nil {
		m.Resolved.WithLabelValues(outcome).Inc()
		if outcome == "COMPLETED" {
			m.CompletedAmount.Add(float64(amount))
		}
	}
}
