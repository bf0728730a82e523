package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"subscriptionAPI/internal/metrics"
	"subscriptionAPI/internal/paystack"
	"subscriptionAPI/services"
)

const maxWebhookBodyBytes = 1 << 20

// PaystackWebhookHandler receives Paystack events. An authenticated request
// is always answered 200 "OK"; failed reconciliations show up in the ledger
// and logs.
type PaystackWebhookHandler struct {
	paymentService *services.PaymentService
	secret         string
	logger         *zap.Logger
}

func NewPaystackWebhookHandler(paymentService *services.PaymentService, secret string, logger *zap.Logger) *PaystackWebhookHandler {
	return &PaystackWebhookHandler{
		paymentService: paymentService,
		secret:         secret,
		logger:         logger,
	}
}

func (h *PaystackWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.secret == "" {
		h.logger.Error("PAYSTACK_SECRET_KEY is not configured; rejecting webhook")
		http.Error(w, "Webhook not configured", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warn("failed to read webhook body", zap.Error(err))
		metrics.WebhookSignatureFailures.Inc()
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	if !paystack.VerifySignature(body, r.Header.Get(paystack.SignatureHeader), h.secret) {
		h.logger.Warn("invalid paystack webhook signature", zap.String("remoteAddr", r.RemoteAddr))
		metrics.WebhookSignatureFailures.Inc()
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var event paystack.Event
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("authenticated webhook with undecodable body", zap.Error(err))
		respondOK(w)
		return
	}

	// finish the write even if Paystack hangs up
	outcome := h.paymentService.ReconcileCharge(context.WithoutCancel(r.Context()), event)
	h.logger.Debug("paystack webhook processed",
		zap.String("event", event.Event),
		zap.String("reference", event.Data.Reference),
		zap.String("outcome", string(outcome)),
	)

	respondOK(w)
}

func respondOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
