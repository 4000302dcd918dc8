package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the marketplace domain.
type Metrics struct {
	ListingsCreated prometheus.Counter
	Purchases       prometheus.Counter
	UnitsSold       prometheus.Counter
	PaymentVolume   prometheus.Counter
}

// New creates and registers all marketplace metrics.
func New() *Metrics {
	return &Metrics{
		ListingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veilcredit_listings_created_total",
			Help: "Total number of market listings created",
		}),
		Purchases: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veilcredit_purchases_total",
			Help: "Total number of successful purchases",
		}),
		UnitsSold: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veilcredit_units_sold_total",
			Help: "Total units sold across all listings",
		}),
		PaymentVolume: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veilcredit_payment_volume_total",
			Help: "Total payment volume settled to sellers, in smallest units",
		}),
	}
}
