package services

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"subscriptionAPI/internal/user"
)

type FirestoreUserStore struct {
	client *firestore.Client
}

func NewFirestoreUserStore(client *firestore.Client) *FirestoreUserStore {
	return &FirestoreUserStore{client: client}
}

func (s *FirestoreUserStore) ApplyActivation(ctx context.Context, userID string, a user.Activation) error {
	doc := s.client.Collection(user.Collection).Doc(userID)

	_, err := doc.Set(ctx, map[string]interface{}{
		user.FieldSubscriptionStatus: string(a.Status),
		user.FieldSubscriptionPlan:   a.Plan,
		user.FieldSubscribedAt:       firestore.ServerTimestamp,
		user.FieldPaystackReference:  a.Reference,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to write subscription for user %s: %w", userID, err)
	}

	return nil
}

func (s *FirestoreUserStore) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	iter := s.client.Collection(user.Collection).
		Where(user.FieldEmail, "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query users by email: %w", err)
	}

	return snap.Ref.ID, nil
}

func (s *FirestoreUserStore) GetSubscription(ctx context.Context, userID string) (*user.Subscription, error) {
	snap, err := s.client.Collection(user.Collection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	sub := &user.Subscription{}
	if err := snap.DataTo(sub); err != nil {
		return nil, fmt.Errorf("failed to decode subscription for user %s: %w", userID, err)
	}
	sub.UserID = userID
	if sub.Status == "" {
		sub.Status = user.StatusNone
	}

	return sub, nil
}

// DeviceTokens returns the push registration tokens saved on the user's profile.
func (s *FirestoreUserStore) DeviceTokens(ctx context.Context, userID string) ([]string, error) {
	snap, err := s.client.Collection(user.Collection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return deviceTokensFrom(userID, snap.Data())
}

// deviceTokensFrom reads fcmTokens from a user document. A missing field is
// no tokens; a field of the wrong shape is an error.
func deviceTokensFrom(userID string, data map[string]interface{}) ([]string, error) {
	raw, ok := data[user.FieldFCMTokens]
	if !ok || raw == nil {
		return nil, nil
	}

	values, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("user %s: %s has type %T, want array", userID, user.FieldFCMTokens, raw)
	}

	tokens := make([]string, 0, len(values))
	for _, v := range values {
		t, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("user %s: %s holds a %T, want string", userID, user.FieldFCMTokens, v)
		}
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}
