package user

import "time"

// Firestore field names on a users/{uid} document touched by payment reconciliation.
const (
	Collection = "users"

	FieldEmail              = "email"
	FieldSubscriptionStatus = "subscriptionStatus"
	FieldSubscriptionPlan   = "subscriptionPlan"
	FieldSubscribedAt       = "subscribedAt"
	FieldPaystackReference  = "paystackReference"

	// FieldFCMTokens holds the device registration tokens the app stores for push.
	FieldFCMTokens = "fcmTokens"
)

type SubscriptionStatus string

const (
	StatusNone   SubscriptionStatus = "none"
	StatusActive SubscriptionStatus = "active"
)

// Subscription is the subscription slice of a user profile document.
type Subscription struct {
	UserID            string             `firestore:"-" json:"userId"`
	Status            SubscriptionStatus `firestore:"subscriptionStatus" json:"subscriptionStatus"`
	Plan              string             `firestore:"subscriptionPlan" json:"subscriptionPlan,omitempty"`
	SubscribedAt      *time.Time         `firestore:"subscribedAt" json:"subscribedAt,omitempty"`
	PaystackReference string             `firestore:"paystackReference" json:"paystackReference,omitempty"`
}

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}
