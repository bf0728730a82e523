package handlers

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"subscriptionAPI/internal/ledger"
	"subscriptionAPI/internal/paystack"
	"subscriptionAPI/internal/plan"
	"subscriptionAPI/internal/user"
	"subscriptionAPI/services"
)

const testSecret = "sk_test_handlers"

type memoryUsers struct {
	mu       sync.Mutex
	emails   map[string]string
	subs     map[string]user.Subscription
	writes   int
	applyErr error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		emails: make(map[string]string),
		subs:   make(map[string]user.Subscription),
	}
}

func (m *memoryUsers) add(uid, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emails[uid] = email
}

func (m *memoryUsers) subscription(uid string) (user.Subscription, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[uid]
	return s, ok
}

func (m *memoryUsers) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memoryUsers) ApplyActivation(ctx context.Context, userID string, a user.Activation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	m.writes++
	m.subs[userID] = user.Subscription{
		UserID:            userID,
		Status:            a.Status,
		Plan:              a.Plan,
		PaystackReference: a.Reference,
	}
	return nil
}

func (m *memoryUsers) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for uid, e := range m.emails {
		if e == email {
			return uid, nil
		}
	}
	return "", services.ErrUserNotFound
}

func (m *memoryUsers) GetSubscription(ctx context.Context, userID string) (*user.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subs[userID]; ok {
		return &s, nil
	}
	return &user.Subscription{UserID: userID, Status: user.StatusNone}, nil
}

type stubVerifier struct {
	result *paystack.VerificationResult
	err    error
}

func (s *stubVerifier) Configured() bool { return true }

func (s *stubVerifier) Verify(ctx context.Context, reference string) (*paystack.VerificationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := *s.result
	r.Reference = reference
	return &r, nil
}

type testEnv struct {
	users    *memoryUsers
	verifier *stubVerifier
	payments *services.PaymentService
	subs     *services.SubscriptionService
	logs     *observer.ObservedLogs
}

func newTestEnv() *testEnv {
	users := newMemoryUsers()
	verifier := &stubVerifier{result: &paystack.VerificationResult{Status: paystack.StatusSuccess, Amount: 150000}}
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	subs := services.NewSubscriptionService(users, logger)
	return &testEnv{
		users:    users,
		verifier: verifier,
		subs:     subs,
		logs:     logs,
		payments: services.NewPaymentService(plan.Default(), verifier, subs, ledger.Nop{}, logger),
	}
}

type stubPinger struct{ err error }

func (f stubPinger) Ping(ctx context.Context) error { return f.err }

var errStoreDown = errors.New("firestore unavailable")
