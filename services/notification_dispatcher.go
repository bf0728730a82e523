package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

type DeviceTokenStore interface {
	DeviceTokens(ctx context.Context, userID string) ([]string, error)
}

// ActivationNotifier is told about subscriptions activated out of band, so
// the user hears about it even if the app was closed during checkout.
type ActivationNotifier interface {
	NotifyActivated(userID, planID, planName string)
}

// NotificationDispatcher pushes activation notices from a small worker pool.
// Delivery is best effort: a full queue drops the notice.
type NotificationDispatcher struct {
	provider PushNotificationProvider
	tokens   DeviceTokenStore
	logger   *zap.Logger
	workers  int
	jobQueue chan *DispatchJob
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type DispatchJob struct {
	UserID   string
	PlanID   string
	PlanName string
}

func NewNotificationDispatcher(provider PushNotificationProvider, tokens DeviceTokenStore, logger *zap.Logger, workers int) *NotificationDispatcher {
	if workers <= 0 {
		workers = 2
	}

	d := &NotificationDispatcher{
		provider: provider,
		tokens:   tokens,
		logger:   logger,
		workers:  workers,
		jobQueue: make(chan *DispatchJob, 100),
		stopChan: make(chan struct{}),
	}

	d.startWorkers()
	return d
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			// drain what is already queued
			for {
				select {
				case job := <-d.jobQueue:
					d.processJob(job)
				default:
					return
				}
			}
		}
	}
}

func (d *NotificationDispatcher) processJob(job *DispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	log := d.logger.With(zap.String("uid", job.UserID), zap.String("plan", job.PlanID))

	tokens, err := d.tokens.DeviceTokens(ctx, job.UserID)
	if err != nil {
		log.Warn("failed to load device tokens", zap.Error(err))
		return
	}
	if len(tokens) == 0 {
		return
	}

	err = d.provider.SendPush(ctx, tokens,
		"Subscription active",
		"Your "+job.PlanName+" subscription is now active.",
		map[string]string{"type": "subscription_activated", "plan": job.PlanID},
	)
	if err != nil {
		log.Warn("failed to push activation notice", zap.Error(err))
	}
}

func (d *NotificationDispatcher) NotifyActivated(userID, planID, planName string) {
	select {
	case <-d.stopChan:
		return
	default:
	}

	select {
	case d.jobQueue <- &DispatchJob{UserID: userID, PlanID: planID, PlanName: planName}:
	default:
		d.logger.Warn("notification queue full, dropping activation notice", zap.String("uid", userID))
	}
}

// Stop finishes queued jobs and waits for the workers to exit.
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stopChan) })
	d.wg.Wait()
}
