package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Sender is the part of *messaging.Client FCMService needs.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMService struct {
	client Sender
	logger *zap.Logger
}

func NewFCMService(client Sender, logger *zap.Logger) *FCMService {
	return &FCMService{client: client, logger: logger}
}

// SendPush sends one message per token. The batch endpoint is not used; it
// 404s for some projects. Only an all-failed send is an error.
func (s *FCMService) SendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	successCount := 0
	failureCount := 0

	for _, token := range tokens {
		message := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					Sound: "default",
				},
			},
			APNS: &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{Sound: "default"},
				},
			},
		}

		if _, err := s.client.Send(ctx, message); err != nil {
			s.logger.Warn("fcm send failed", zap.Error(err))
			failureCount++
			continue
		}
		successCount++
	}

	s.logger.Debug("fcm push sent", zap.Int("sent", successCount), zap.Int("failed", failureCount))

	if successCount == 0 && failureCount > 0 {
		return fmt.Errorf("all %d push notifications failed", failureCount)
	}
	return nil
}
