package paystack

const (
	EventChargeSuccess = "charge.success"

	SignatureHeader = "x-paystack-signature"
)

// TransactionStatus is the status string Paystack reports for a transaction.
type TransactionStatus string

const (
	StatusSuccess   TransactionStatus = "success"
	StatusFailed    TransactionStatus = "failed"
	StatusAbandoned TransactionStatus = "abandoned"
)

type Customer struct {
	Email string `json:"email"`
}

// TransactionData is the transaction object shared by the verify response
// and webhook payloads.
type TransactionData struct {
	Status    TransactionStatus `json:"status"`
	Amount    int64             `json:"amount"`
	Reference string            `json:"reference"`
	Customer  Customer          `json:"customer"`
}

// Event is the webhook envelope Paystack posts to us.
type Event struct {
	Event string          `json:"event"`
	Data  TransactionData `json:"data"`
}

// VerificationResult is the normalized outcome of a verify call. Status and
// Amount come straight from Paystack and still need checking against the catalog.
type VerificationResult struct {
	Status        TransactionStatus
	Amount        int64
	Reference     string
	CustomerEmail string
}

func (r *VerificationResult) Succeeded() bool {
	return r.Status == StatusSuccess
}
