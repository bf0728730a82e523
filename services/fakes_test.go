package services

import (
	"context"
	"sync"
	"time"

	"subscriptionAPI/internal/ledger"
	"subscriptionAPI/internal/paystack"
	"subscriptionAPI/internal/user"
)

// memoryUserStore is an in-memory users collection with merge semantics.
type memoryUserStore struct {
	mu       sync.Mutex
	docs     map[string]map[string]interface{}
	now      time.Time
	writes   int
	applyErr error
	findErr  error
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{
		docs: make(map[string]map[string]interface{}),
		now:  time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memoryUserStore) addUser(uid, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[uid] = map[string]interface{}{
		user.FieldEmail: email,
		"displayName":   "User " + uid,
	}
}

func (m *memoryUserStore) doc(uid string) map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]interface{}, len(m.docs[uid]))
	for k, v := range m.docs[uid] {
		out[k] = v
	}
	return out
}

func (m *memoryUserStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memoryUserStore) ApplyActivation(ctx context.Context, userID string, a user.Activation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	d, ok := m.docs[userID]
	if !ok {
		d = make(map[string]interface{})
		m.docs[userID] = d
	}
	d[user.FieldSubscriptionStatus] = string(a.Status)
	d[user.FieldSubscriptionPlan] = a.Plan
	d[user.FieldSubscribedAt] = m.now
	d[user.FieldPaystackReference] = a.Reference
	m.writes++
	return nil
}

func (m *memoryUserStore) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return "", m.findErr
	}
	for uid, d := range m.docs {
		if d[user.FieldEmail] == email {
			return uid, nil
		}
	}
	return "", ErrUserNotFound
}

func (m *memoryUserStore) GetSubscription(ctx context.Context, userID string) (*user.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	sub := &user.Subscription{UserID: userID, Status: user.StatusNone}
	if v, ok := d[user.FieldSubscriptionStatus].(string); ok {
		sub.Status = user.SubscriptionStatus(v)
	}
	if v, ok := d[user.FieldSubscriptionPlan].(string); ok {
		sub.Plan = v
	}
	if v, ok := d[user.FieldPaystackReference].(string); ok {
		sub.PaystackReference = v
	}
	if v, ok := d[user.FieldSubscribedAt].(time.Time); ok {
		sub.SubscribedAt = &v
	}
	return sub, nil
}

type fakeVerifier struct {
	configured bool
	result     *paystack.VerificationResult
	err        error
	calls      []string
}

func (f *fakeVerifier) Configured() bool { return f.configured }

func (f *fakeVerifier) Verify(ctx context.Context, reference string) (*paystack.VerificationResult, error) {
	f.calls = append(f.calls, reference)
	return f.result, f.err
}

type recordingLedger struct {
	mu      sync.Mutex
	entries []ledger.Entry
	err     error
}

func (r *recordingLedger) Record(ctx context.Context, e ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return r.err
}

func (r *recordingLedger) last() ledger.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return ledger.Entry{}
	}
	return r.entries[len(r.entries)-1]
}
