package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the stamp lifecycle.
type Metrics struct {
	// Lifecycle transition totals
	TokensMinted prometheus.Counter
	TokensSold   prometheus.Counter
	TokensBound  prometheus.Counter

	// Current pool sizes, kept in lockstep with the status counters
	TokensByStatus *prometheus.GaugeVec

	// Primary-sale proceeds credited to the authority, in base units
	SaleProceeds prometheus.Counter
}

// New creates a Metrics instance with all stamp metrics registered.
func New() *Metrics {
	return &Metrics{
		TokensMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meterai_tokens_minted_total",
			Help: "Total number of stamp tokens minted",
		}),
		TokensSold: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meterai_tokens_sold_total",
			Help: "Total number of stamp tokens sold",
		}),
		TokensBound: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meterai_tokens_bound_total",
			Help: "Total number of stamp tokens bound to documents",
		}),
		TokensByStatus: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "meterai_tokens_by_status",
			Help: "Current number of stamp tokens per lifecycle status",
		}, []string{"status"}), // status: "available", "paid", "bound"
		SaleProceeds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meterai_sale_proceeds_total",
			Help: "Primary-sale proceeds credited to the minting authority, in base units",
		}),
	}
}

// RecordMint records a mint batch entering the available pool.
func (m *Metrics) RecordMint(count int) {
	if m != nil {
		m.TokensMinted.Add(float64(count))
		m.TokensByStatus.WithLabelValues("available").Add(float64(count))
	}
}

// RecordSale records one token moving from available to paid.
func (m *Metrics) RecordSale(price float64) {
	if m != nil {
		m.TokensSold.Inc()
		m.SaleProceeds.Add(price)
		m.TokensByStatus.WithLabelValues("available").Dec()
		m.TokensByStatus.WithLabelValues("paid").Inc()
	}
}

// RecordBind records one token moving from paid to bound.
func (m *Metrics) RecordBind() {
	if m != nil {
		m.TokensBound.Inc()
		m.TokensByStatus.WithLabelValues("paid").Dec()
		m.TokensByStatus.WithLabelValues("bound").Inc()
	}
}
