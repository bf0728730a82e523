// Package replay re-delivers Paystack webhook events to our own endpoint,
// signed exactly as Paystack would sign them.
package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"subscriptionAPI/internal/paystack"
)

type Sender struct {
	URL        string
	Secret     string
	HTTPClient *http.Client
}

func NewSender(url, secret string, timeout time.Duration) *Sender {
	return &Sender{
		URL:        url,
		Secret:     secret,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type Result struct {
	StatusCode int
	Body       string
}

func (r Result) Accepted() bool {
	return r.StatusCode == http.StatusOK
}

// Send POSTs payload unchanged with its x-paystack-signature header.
func (s *Sender) Send(ctx context.Context, payload []byte) (*Result, error) {
	if s.Secret == "" {
		return nil, paystack.ErrNoSecretKey
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("payload is not valid JSON")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(paystack.SignatureHeader, paystack.Sign(payload, s.Secret))

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to deliver event: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Result{StatusCode: resp.StatusCode, Body: string(body)}, nil
}

// ChargeSuccess builds the charge.success payload Paystack would have sent
// for a completed transaction.
func ChargeSuccess(email, reference string, amount int64) ([]byte, error) {
	return json.Marshal(paystack.Event{
		Event: paystack.EventChargeSuccess,
		Data: paystack.TransactionData{
			Status:    paystack.StatusSuccess,
			Amount:    amount,
			Reference: reference,
			Customer:  paystack.Customer{Email: email},
		},
	})
}
