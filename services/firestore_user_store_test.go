package services

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subscriptionAPI/internal/user"
)

func setupFirestoreStore(t *testing.T) (*FirestoreUserStore, *firestore.Client) {
	t.Helper()

	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := firestore.NewClient(ctx, "demo-subscription-api")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewFirestoreUserStore(client), client
}

func newUserDoc(t *testing.T, client *firestore.Client, fields map[string]interface{}) string {
	t.Helper()
	uid := "uid_" + uuid.NewString()
	_, err := client.Collection(user.Collection).Doc(uid).Set(context.Background(), fields)
	require.NoError(t, err)
	t.Cleanup(func() {
		client.Collection(user.Collection).Doc(uid).Delete(context.Background())
	})
	return uid
}

func readDoc(t *testing.T, client *firestore.Client, uid string) map[string]interface{} {
	t.Helper()
	snap, err := client.Collection(user.Collection).Doc(uid).Get(context.Background())
	require.NoError(t, err)
	return snap.Data()
}

func TestFirestoreApplyActivationMergesAndIsIdempotent(t *testing.T) {
	store, client := setupFirestoreStore(t)
	ctx := context.Background()

	email := uuid.NewString() + "@example.com"
	uid := newUserDoc(t, client, map[string]interface{}{
		user.FieldEmail: email,
		"displayName":   "Ada",
		"streak":        int64(7),
	})

	activation := user.Activation{Status: user.StatusActive, Plan: "plus", Reference: "ref_merge"}

	require.NoError(t, store.ApplyActivation(ctx, uid, activation))
	first := readDoc(t, client, uid)

	require.NoError(t, store.ApplyActivation(ctx, uid, activation))
	second := readDoc(t, client, uid)

	for _, doc := range []map[string]interface{}{first, second} {
		assert.Equal(t, "active", doc[user.FieldSubscriptionStatus])
		assert.Equal(t, "plus", doc[user.FieldSubscriptionPlan])
		assert.Equal(t, "ref_merge", doc[user.FieldPaystackReference])
		assert.IsType(t, time.Time{}, doc[user.FieldSubscribedAt], "server timestamp resolved")

		assert.Equal(t, email, doc[user.FieldEmail])
		assert.Equal(t, "Ada", doc["displayName"])
		assert.Equal(t, int64(7), doc["streak"])
	}

	sub, err := store.GetSubscription(ctx, uid)
	require.NoError(t, err)
	assert.True(t, sub.IsActive())
	assert.Equal(t, uid, sub.UserID)
	require.NotNil(t, sub.SubscribedAt)
}

func TestFirestoreApplyActivationCreatesMissingDocument(t *testing.T) {
	store, client := setupFirestoreStore(t)
	ctx := context.Background()

	uid := "uid_" + uuid.NewString()
	t.Cleanup(func() {
		client.Collection(user.Collection).Doc(uid).Delete(context.Background())
	})

	require.NoError(t, store.ApplyActivation(ctx, uid, user.Activation{Status: user.StatusActive, Plan: "pro", Reference: "ref_new"}))

	doc := readDoc(t, client, uid)
	assert.Equal(t, "pro", doc[user.FieldSubscriptionPlan])
	assert.Len(t, doc, 4)
}

func TestFirestoreFindUserIDByEmail(t *testing.T) {
	store, client := setupFirestoreStore(t)
	ctx := context.Background()

	email := uuid.NewString() + "@example.com"

	_, err := store.FindUserIDByEmail(ctx, email)
	assert.ErrorIs(t, err, ErrUserNotFound)

	uid := newUserDoc(t, client, map[string]interface{}{user.FieldEmail: email})
	newUserDoc(t, client, map[string]interface{}{user.FieldEmail: "other-" + email})

	got, err := store.FindUserIDByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, uid, got)
}

func TestFirestoreGetSubscriptionMissingDocument(t *testing.T) {
	store, _ := setupFirestoreStore(t)

	_, err := store.GetSubscription(context.Background(), "uid_"+uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFirestoreDeviceTokens(t *testing.T) {
	store, client := setupFirestoreStore(t)
	ctx := context.Background()

	uid := newUserDoc(t, client, map[string]interface{}{user.FieldFCMTokens: []string{"tok_a", "", "tok_b"}})
	tokens, err := store.DeviceTokens(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok_a", "tok_b"}, tokens)

	bad := newUserDoc(t, client, map[string]interface{}{user.FieldFCMTokens: "tok_a"})
	_, err = store.DeviceTokens(ctx, bad)
	assert.Error(t, err)

	tokens, err = store.DeviceTokens(ctx, "uid_"+uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestDeviceTokensFrom(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]interface{}
		want    []string
		wantErr bool
	}{
		{name: "field absent", data: map[string]interface{}{"email": "a@example.com"}},
		{name: "null field", data: map[string]interface{}{user.FieldFCMTokens: nil}},
		{
			name: "tokens",
			data: map[string]interface{}{user.FieldFCMTokens: []interface{}{"tok_a", "", "tok_b"}},
			want: []string{"tok_a", "tok_b"},
		},
		{name: "string instead of array", data: map[string]interface{}{user.FieldFCMTokens: "tok_a"}, wantErr: true},
		{name: "non-string element", data: map[string]interface{}{user.FieldFCMTokens: []interface{}{"tok_a", int64(3)}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := deviceTokensFrom("uid_1", tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
