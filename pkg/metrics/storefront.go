package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records cart, coupon and checkout activity for a session.
type StorefrontMetrics struct {
	cartOps   *prometheus.CounterVec
	coupons   *prometheus.CounterVec
	orders    prometheus.Counter
	rejected  prometheus.Counter
	checkouts prometheus.Histogram
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart engine operations by outcome.",
	}, []string{"op", "outcome"})
	coupons := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_applications_total",
		Help: "Coupon application attempts by outcome.",
	}, []string{"outcome"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_recorded_total",
		Help: "Orders appended to the history.",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_rejections_total",
		Help: "Checkouts stopped by validation.",
	})
	checkouts := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of completed checkouts in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(cartOps, coupons, orders, rejected, checkouts)
	return &StorefrontMetrics{
		cartOps:   cartOps,
		coupons:   coupons,
		orders:    orders,
		rejected:  rejected,
		checkouts: checkouts,
	}
}

// IncCartOp counts a cart operation and whether it changed state.
func (m *StorefrontMetrics) IncCartOp(op, outcome string) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

// IncCoupon counts a coupon application attempt.
func (m *StorefrontMetrics) IncCoupon(outcome string) {
	if m == nil || m.coupons == nil {
		return
	}
	m.coupons.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncOrders counts a recorded order.
func (m *StorefrontMetrics) IncOrders() {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.Inc()
}

// IncCheckoutRejected counts a checkout that failed validation.
func (m *StorefrontMetrics) IncCheckoutRejected() {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.Inc()
}

// ObserveCheckout records the duration of a completed checkout.
func (m *StorefrontMetrics) ObserveCheckout(duration time.Duration) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
