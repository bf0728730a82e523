package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"subscriptionAPI/internal/apperr"
	"subscriptionAPI/internal/user"
)

// SubscriptionService is the only writer of a user's subscription fields.
type SubscriptionService struct {
	store  UserStore
	logger *zap.Logger
}

func NewSubscriptionService(store UserStore, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{store: store, logger: logger}
}

// Activate marks userID as subscribed to planID through the payment with the
// given reference. Reapplying the same arguments leaves the record unchanged
// apart from the server-assigned activation time.
func (s *SubscriptionService) Activate(ctx context.Context, userID, planID, reference string) error {
	if strings.TrimSpace(userID) == "" || planID == "" || reference == "" {
		return apperr.New(apperr.KindInvalidArgument, "user, plan and reference are required to activate a subscription")
	}

	err := s.store.ApplyActivation(ctx, userID, user.Activation{
		Status:    user.StatusActive,
		Plan:      planID,
		Reference: reference,
	})
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "failed to save subscription", err)
	}

	s.logger.Info("subscription activated",
		zap.String("uid", userID),
		zap.String("plan", planID),
		zap.String("reference", reference),
	)
	return nil
}

func (s *SubscriptionService) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	return s.store.FindUserIDByEmail(ctx, email)
}

func (s *SubscriptionService) GetSubscription(ctx context.Context, userID string) (*user.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return &user.Subscription{UserID: userID, Status: user.StatusNone}, nil
	}
	return sub, err
}
