package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"subscriptionAPI/internal/apperr"
	"subscriptionAPI/internal/types/payment"
	"subscriptionAPI/middleware"
	"subscriptionAPI/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService *services.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// VerifyPayment is the callable invoked by the client after the
// Paystack checkout completes.
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, ok := middleware.GetUserID(ctx)
	if !ok {
		respondCallableError(w, apperr.New(apperr.KindUnauthenticated, "You must be signed in to verify a payment."))
		return
	}

	var req payment.VerifyRequest
	if err := decodeCallable(w, r, &req); err != nil {
		h.logger.Info("invalid verify payment request", zap.String("uid", uid), zap.Error(err))
		respondCallableError(w, apperr.Wrap(apperr.KindInvalidArgument, "A payment reference string is required.", err))
		return
	}

	result, err := h.paymentService.VerifyPayment(ctx, uid, req)
	if err != nil {
		h.logger.Info("verify payment failed",
			zap.String("uid", uid),
			zap.String("reference", req.Reference),
			zap.String("kind", apperr.KindOf(err).String()),
			zap.String("requestID", middleware.GetRequestID(ctx)),
		)
		respondCallableError(w, err)
		return
	}

	respondCallable(w, result)
}
