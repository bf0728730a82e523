package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"subscriptionAPI/internal/types/payment"
)

var (
	Reconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_reconciliations_total",
			Help: "Payment reconciliation attempts by entry point and outcome",
		},
		[]string{"path", "outcome"},
	)
	AmountMismatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_amount_mismatch_total",
			Help: "Verified transactions whose charged amount did not match the requested plan",
		},
	)
	WebhookSignatureFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_webhook_signature_failures_total",
			Help: "Webhook requests rejected for an invalid or missing signature",
		},
	)
)

// Register adds the payment collectors to reg. Call once from main.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(Reconciliations, AmountMismatches, WebhookSignatureFailures)
}

func ObserveOutcome(path payment.Path, outcome payment.Outcome) {
	Reconciliations.WithLabelValues(string(path), string(outcome)).Inc()
}
