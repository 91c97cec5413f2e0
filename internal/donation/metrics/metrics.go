package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the donation ledger's Prometheus metrics.
type Metrics struct {
	IntentsCreated  prometheus.Counter
	Confirmed       prometheus.Counter
	ConfirmedAmount prometheus.Counter
	DuplicateNotify prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		IntentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "galang_donation_intents_total",
			Help: "Donation intents created",
		}),
		Confirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "galang_donations_confirmed_total",
			Help: "Donations confirmed by the payment gateway",
		}),
		ConfirmedAmount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "galang_donations_confirmed_amount_total",
			Help: "Confirmed donation amounts in minor units",
		}),
		DuplicateNotify: promauto.NewCounter(prometheus.CounterOpts{
			Name: "galang_donation_duplicate_notifications_total",
			Help: "Gateway notifications for already-confirmed donations",
		}),
	}
}

func (m *Metrics) RecordIntent() {
	if m != nil {
		m.IntentsCreated.Inc()
	}
}

func (m *Metrics) RecordConfirmed(amount int64) {
	if m != nil {
		m.Confirmed.Inc()
		m.ConfirmedAmount.Add(float64(amount))
	}
}

func (m *Metrics) RecordDuplicate() {
	if m != nil {
		m.DuplicateNotify.Inc()
	}
}
