package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Checkout metrics
	checkoutsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynow_checkouts_created_total",
		Help: "Total number of checkout forms generated",
	}, []string{
		"type", // once_off, subscription, adhoc
	})

	// Gateway callback metrics
	callbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynow_callbacks_total",
		Help: "Total number of gateway callbacks received",
	}, []string{
		"status", // success, declined, cancelled, pending, none
		"method", // credit_card, eft, retail, ozow, masterpass, visa_checkout, unknown
	})

	callbackAmountCents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynow_callback_amount_cents_total",
		Help: "Total callback amount in cents, by outcome",
	}, []string{
		"status",
	})

	// Reconciliation metrics
	reconciliationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynow_reconciliation_failures_total",
		Help: "Callbacks rejected by reconciliation checks",
	}, []string{
		"reason", // unknown_reference, amount_mismatch, empty_payload
	})

	// Subscription maintenance metrics
	subscriptionUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynow_subscription_updates_total",
		Help: "Total subscription update calls to the gateway",
	}, []string{
		"operation", // update, deactivate
		"status",    // success, failed
	})

	// Gateway SOAP call metrics
	gatewayCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paynow_gateway_call_duration_seconds",
		Help:    "Duration of SOAP calls to the gateway web services",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{
		"operation", // validate_service_key, update_subscriptions
	})
)

// RecordCheckoutCreated records a generated checkout form
func RecordCheckoutCreated(checkoutType string) {
	checkoutsCreatedTotal.WithLabelValues(checkoutType).Inc()
}

// RecordCallback records a processed gateway callback
func RecordCallback(status, method string, amountCents int64) {
	callbacksTotal.WithLabelValues(status, method).Inc()
	callbackAmountCents.WithLabelValues(status).Add(float64(amountCents))
}

// RecordReconciliationFailure records a callback that failed reconciliation
func RecordReconciliationFailure(reason string) {
	reconciliationFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordSubscriptionUpdate records a subscription maintenance call
func RecordSubscriptionUpdate(operation, status string) {
	subscriptionUpdatesTotal.WithLabelValues(operation, status).Inc()
}

// ObserveGatewayCall records the duration of a gateway SOAP call
func ObserveGatewayCall(operation string, seconds float64) {
	gatewayCallDuration.WithLabelValues(operation).Observe(seconds)
}
