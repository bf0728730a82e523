package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"subscriptionAPI/internal/apperr"
	"subscriptionAPI/internal/ledger"
	"subscriptionAPI/internal/metrics"
	"subscriptionAPI/internal/paystack"
	"subscriptionAPI/internal/plan"
	"subscriptionAPI/internal/types/payment"
)

// TransactionVerifier looks up a transaction on the payment provider.
type TransactionVerifier interface {
	Configured() bool
	Verify(ctx context.Context, reference string) (*paystack.VerificationResult, error)
}

// PaymentService reconciles Paystack payments into subscriptions for both the
// client-driven verification call and the provider's webhook.
type PaymentService struct {
	catalog       *plan.Catalog
	verifier      TransactionVerifier
	subscriptions *SubscriptionService
	ledger        ledger.Recorder
	notifier      ActivationNotifier
	logger        *zap.Logger
}

func NewPaymentService(
	catalog *plan.Catalog,
	verifier TransactionVerifier,
	subscriptions *SubscriptionService,
	recorder ledger.Recorder,
	logger *zap.Logger,
) *PaymentService {
	if recorder == nil {
		recorder = ledger.Nop{}
	}
	return &PaymentService{
		catalog:       catalog,
		verifier:      verifier,
		subscriptions: subscriptions,
		ledger:        recorder,
		logger:        logger,
	}
}

// VerifyPayment confirms reference with Paystack on behalf of the signed-in
// user uid and activates the requested plan. Every failure is an *apperr.Error.
func (s *PaymentService) VerifyPayment(ctx context.Context, uid string, req payment.VerifyRequest) (*payment.VerifyResult, error) {
	if uid == "" {
		return nil, apperr.New(apperr.KindUnauthenticated, "You must be signed in to verify a payment.")
	}

	reference := req.Reference
	if strings.TrimSpace(reference) == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "A payment reference is required.")
	}

	selected, err := s.catalog.Resolve(req.Plan)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidArgument, fmt.Sprintf("Unknown plan %q.", req.Plan), err)
	}

	log := s.logger.With(
		zap.String("uid", uid),
		zap.String("reference", reference),
		zap.String("plan", selected.ID),
	)

	if !s.verifier.Configured() {
		log.Error("PAYSTACK_SECRET_KEY is not configured; cannot verify payment")
		s.finish(ctx, ledger.Entry{Path: payment.PathCallable, Reference: reference, UserID: uid, Plan: selected.ID, Outcome: payment.OutcomeRejected, Detail: "unconfigured"})
		return nil, apperr.New(apperr.KindUnconfigured, "Payment verification is temporarily unavailable.")
	}

	result, err := s.verifier.Verify(ctx, reference)
	if err != nil {
		s.finish(ctx, ledger.Entry{Path: payment.PathCallable, Reference: reference, UserID: uid, Plan: selected.ID, Outcome: payment.OutcomeProviderError, Detail: err.Error()})

		if errors.Is(err, paystack.ErrRejected) {
			log.Warn("paystack rejected verification", zap.Error(err))
			var rejected *paystack.RejectedError
			msg := "Payment could not be verified."
			if errors.As(err, &rejected) && rejected.Message != "" {
				msg = "Payment could not be verified: " + rejected.Message
			}
			return nil, apperr.Wrap(apperr.KindProviderRejected, msg, err)
		}

		log.Error("paystack verification failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindProviderUnreachable, "Could not reach the payment provider. Please try again.", err)
	}

	if !result.Succeeded() {
		log.Warn("payment not successful", zap.String("status", string(result.Status)))
		s.finish(ctx, ledger.Entry{Path: payment.PathCallable, Reference: reference, UserID: uid, Plan: selected.ID, Amount: result.Amount, Outcome: payment.OutcomeStatusMismatch, Detail: string(result.Status)})
		return nil, apperr.New(apperr.KindStatusMismatch, fmt.Sprintf("Payment was not successful (status: %s).", result.Status))
	}

	if result.Amount != selected.Amount {
		log.Warn("payment amount mismatch",
			zap.Int64("expectedAmount", selected.Amount),
			zap.Int64("receivedAmount", result.Amount),
			zap.String("customerEmail", result.CustomerEmail),
		)
		metrics.AmountMismatches.Inc()
		s.finish(ctx, ledger.Entry{
			Path:      payment.PathCallable,
			Reference: reference,
			UserID:    uid,
			Plan:      selected.ID,
			Amount:    result.Amount,
			Outcome:   payment.OutcomeAmountMismatch,
			Detail:    fmt.Sprintf("expected %d", selected.Amount),
		})
		return nil, apperr.New(apperr.KindAmountMismatch, "Payment amount does not match the selected plan.")
	}

	if err := s.subscriptions.Activate(ctx, uid, selected.ID, reference); err != nil {
		log.Error("payment verified but subscription update failed", zap.Int64("amount", result.Amount), zap.Error(err))
		s.finish(ctx, ledger.Entry{Path: payment.PathCallable, Reference: reference, UserID: uid, Plan: selected.ID, Amount: result.Amount, Outcome: payment.OutcomePersistenceFailure, Detail: err.Error()})
		return nil, apperr.Wrap(apperr.KindPersistence,
			fmt.Sprintf("Your payment was received but your subscription could not be updated. Please keep your reference (%s) and contact support.", reference),
			err)
	}

	s.finish(ctx, ledger.Entry{Path: payment.PathCallable, Reference: reference, UserID: uid, Plan: selected.ID, Amount: result.Amount, Outcome: payment.OutcomeActivated})

	return &payment.VerifyResult{
		Success: true,
		Plan:    selected.ID,
		Message: payment.ActivatedMessage,
	}, nil
}

// ReconcileCharge applies an authenticated webhook event. It never returns an
// error: the webhook acknowledges Paystack regardless, so every failure is
// logged, counted and written to the ledger here instead.
func (s *PaymentService) ReconcileCharge(ctx context.Context, ev paystack.Event) payment.Outcome {
	if ev.Event != paystack.EventChargeSuccess {
		s.logger.Debug("ignoring paystack event", zap.String("event", ev.Event))
		metrics.ObserveOutcome(payment.PathWebhook, payment.OutcomeIgnored)
		return payment.OutcomeIgnored
	}

	email := ev.Data.Customer.Email
	reference := ev.Data.Reference
	amount := ev.Data.Amount

	log := s.logger.With(
		zap.String("reference", reference),
		zap.String("customerEmail", email),
		zap.Int64("amount", amount),
	)

	if email == "" || reference == "" {
		log.Warn("charge.success without customer email or reference; nothing to do")
		s.finish(ctx, ledger.Entry{Path: payment.PathWebhook, Reference: reference, Amount: amount, Outcome: payment.OutcomeIgnored, Detail: "missing email or reference"})
		return payment.OutcomeIgnored
	}

	uid, err := s.subscriptions.FindUserIDByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		log.Warn("charge.success for an email with no registered user")
		s.finish(ctx, ledger.Entry{Path: payment.PathWebhook, Reference: reference, Amount: amount, Outcome: payment.OutcomeNoMatchingUser, Detail: email})
		return payment.OutcomeNoMatchingUser
	}
	if err != nil {
		log.Error("user lookup failed while reconciling charge", zap.Error(err))
		s.finish(ctx, ledger.Entry{Path: payment.PathWebhook, Reference: reference, Amount: amount, Outcome: payment.OutcomePersistenceFailure, Detail: err.Error()})
		return payment.OutcomePersistenceFailure
	}

	planID := s.catalog.PlanFor(amount)
	if a, _ := s.catalog.AmountFor(planID); a != amount {
		log.Warn("charged amount matches no plan; using default plan", zap.String("plan", planID))
	}

	if err := s.subscriptions.Activate(ctx, uid, planID, reference); err != nil {
		log.Error("charge verified by webhook but subscription update failed", zap.String("uid", uid), zap.String("plan", planID), zap.Error(err))
		s.finish(ctx, ledger.Entry{Path: payment.PathWebhook, Reference: reference, UserID: uid, Plan: planID, Amount: amount, Outcome: payment.OutcomePersistenceFailure, Detail: err.Error()})
		return payment.OutcomePersistenceFailure
	}

	s.finish(ctx, ledger.Entry{Path: payment.PathWebhook, Reference: reference, UserID: uid, Plan: planID, Amount: amount, Outcome: payment.OutcomeActivated})

	if s.notifier != nil {
		p, _ := s.catalog.Resolve(planID)
		s.notifier.NotifyActivated(uid, p.ID, p.Name)
	}
	return payment.OutcomeActivated
}

// SetNotifier enables push notices for webhook activations.
func (s *PaymentService) SetNotifier(notifier ActivationNotifier) {
	s.notifier = notifier
}

// finish counts the outcome and appends it to the ledger. Ledger failures
// never change the result of the reconciliation.
func (s *PaymentService) finish(ctx context.Context, e ledger.Entry) {
	metrics.ObserveOutcome(e.Path, e.Outcome)

	if err := s.ledger.Record(context.WithoutCancel(ctx), e); err != nil {
		s.logger.Error("failed to record payment event",
			zap.String("path", string(e.Path)),
			zap.String("reference", e.Reference),
			zap.String("outcome", string(e.Outcome)),
			zap.Error(err),
		)
	}
}
