package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Checkout outcomes used as the "result" label.
const (
	CheckoutSuccess   = "success"
	CheckoutEmptyCart = "empty_cart"
	CheckoutNoCart    = "no_cart"
	CheckoutInvalid   = "invalid"
	CheckoutError     = "error"
)

// StoreMetrics records cart and checkout activity.
type StoreMetrics struct {
	cartAdds         prometheus.Counter
	checkouts        *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
	orderValue       prometheus.Histogram
}

func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	m := &StoreMetrics{
		cartAdds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cart_item_adds_total",
			Help: "Add-to-cart operations, merged or new.",
		}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_checkouts_total",
			Help: "Checkout attempts by result.",
		}, []string{"result"}),
		checkoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_checkout_duration_seconds",
			Help:    "Duration of checkout attempts in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_total_price",
			Help:    "Total price of created orders.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		}),
	}
	reg.MustRegister(m.cartAdds, m.checkouts, m.checkoutDuration, m.orderValue)
	return m
}

func (m *StoreMetrics) IncCartAdd() {
	if m == nil || m.cartAdds == nil {
		return
	}
	m.cartAdds.Inc()
}

// ObserveCheckout records one checkout attempt. total is only observed on
// success.
func (m *StoreMetrics) ObserveCheckout(result string, started time.Time, total decimal.Decimal) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
	m.checkoutDuration.Observe(time.Since(started).Seconds())
	if result == CheckoutSuccess {
		m.orderValue.Observe(total.InexactFloat64())
	}
}
