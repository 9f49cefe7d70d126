package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// POSMetrics records terminal activity: completed sales, refunds and
// rejected workbench operations.
type POSMetrics struct {
	checkouts      *prometheus.CounterVec
	checkoutAmount prometheus.Histogram
	refunds        prometheus.Counter
	refundAmount   prometheus.Histogram
	rejections     *prometheus.CounterVec
}

var amountBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000}

// NewPOSMetrics registers the terminal metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewPOSMetrics(reg prometheus.Registerer) *POSMetrics {
	if reg == nil {
		return &POSMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_checkouts_total",
		Help: "Completed checkouts by payment method.",
	}, []string{"payment_method"})
	checkoutAmount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_checkout_amount",
		Help:    "Checkout totals in currency units.",
		Buckets: amountBuckets,
	})
	refunds := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_refunds_total",
		Help: "Processed returns.",
	})
	refundAmount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_refund_amount",
		Help:    "Refund totals in currency units.",
		Buckets: amountBuckets,
	})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_rejections_total",
		Help: "Workbench operations rejected without a state change.",
	}, []string{"operation"})
	reg.MustRegister(checkouts, checkoutAmount, refunds, refundAmount, rejections)
	return &POSMetrics{
		checkouts:      checkouts,
		checkoutAmount: checkoutAmount,
		refunds:        refunds,
		refundAmount:   refundAmount,
		rejections:     rejections,
	}
}

// ObserveCheckout counts a completed sale and records its total.
func (m *POSMetrics) ObserveCheckout(paymentMethod string, total float64) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
	m.checkoutAmount.Observe(total)
}

// ObserveRefund counts a processed return and records its refund total.
func (m *POSMetrics) ObserveRefund(total float64) {
	if m == nil || m.refunds == nil {
		return
	}
	m.refunds.Inc()
	m.refundAmount.Observe(total)
}

// IncRejection counts a rejected operation.
func (m *POSMetrics) IncRejection(operation string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
