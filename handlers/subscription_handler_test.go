package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"subscriptionAPI/internal/user"
	"subscriptionAPI/middleware"
)

func TestGetSubscription(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.subs.Activate(context.Background(), "uid_1", "plus", "ref_9"))
	h := NewSubscriptionHandler(env.subs, zap.NewNop())

	t.Run("active user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/subscription", nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), "uid_1"))
		rec := httptest.NewRecorder()
		h.GetSubscription(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var sub user.Subscription
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
		assert.Equal(t, user.StatusActive, sub.Status)
		assert.Equal(t, "plus", sub.Plan)
		assert.Equal(t, "ref_9", sub.PaystackReference)
	})

	t.Run("never subscribed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/subscription", nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), "uid_2"))
		rec := httptest.NewRecorder()
		h.GetSubscription(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var sub user.Subscription
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
		assert.Equal(t, user.StatusNone, sub.Status)
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.GetSubscription(rec, httptest.NewRequest(http.MethodGet, "/api/v1/subscription", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
