package user

// Activation is the set of fields written when a payment is reconciled.
// The activation timestamp is assigned by the store, not by the caller.
type Activation struct {
	Status    SubscriptionStatus
	Plan      string
	Reference string
}
