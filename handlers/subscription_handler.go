package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"subscriptionAPI/middleware"
	"subscriptionAPI/services"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
	logger              *zap.Logger
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

func (h *SubscriptionHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	uid, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sub, err := h.subscriptionService.GetSubscription(ctx, uid)
	if err != nil {
		h.logger.Error("failed to load subscription", zap.String("uid", uid), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to load subscription")
		return
	}

	respondWithJSON(w, http.StatusOK, sub)
}
