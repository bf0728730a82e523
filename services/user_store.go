package services

import (
	"context"
	"errors"

	"subscriptionAPI/internal/user"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore is the slice of the user-profile document store that payment
// reconciliation reads and writes.
type UserStore interface {
	// ApplyActivation merges the activation fields into users/{userID},
	// stamping the activation time on the server and leaving every other
	// field untouched. The document is created if it does not exist.
	ApplyActivation(ctx context.Context, userID string, a user.Activation) error
	// FindUserIDByEmail returns the id of at most one user whose email field
	// equals email exactly, or ErrUserNotFound.
	FindUserIDByEmail(ctx context.Context, email string) (string, error)
	GetSubscription(ctx context.Context, userID string) (*user.Subscription, error)
}
