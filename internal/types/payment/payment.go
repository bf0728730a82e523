package payment

const ActivatedMessage = "Subscription activated successfully!"

type VerifyRequest struct {
	Reference string `json:"reference"`
	Plan      string `json:"plan,omitempty"`
}

type VerifyResult struct {
	Success bool   `json:"success"`
	Plan    string `json:"plan"`
	Message string `json:"message"`
}

// Path identifies which entry point reconciled a payment.
type Path string

const (
	PathCallable Path = "callable"
	PathWebhook  Path = "webhook"
)

// Outcome is the terminal state of one reconciliation attempt.
type Outcome string

const (
	OutcomeActivated          Outcome = "activated"
	OutcomeRejected           Outcome = "rejected"
	OutcomeStatusMismatch     Outcome = "status_mismatch"
	OutcomeAmountMismatch     Outcome = "amount_mismatch"
	OutcomeProviderError      Outcome = "provider_error"
	OutcomePersistenceFailure Outcome = "persistence_failure"
	OutcomeIgnored            Outcome = "ignored"
	OutcomeNoMatchingUser     Outcome = "no_matching_user"
)
