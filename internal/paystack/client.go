package paystack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.paystack.co"

	maxResponseBytes = 1 << 20
)

type Client struct {
	SecretKey  string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(secretKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		SecretKey: secretKey,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether a secret key is available for API calls.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.SecretKey) != ""
}

type verifyResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    TransactionData `json:"data"`
}

// Verify looks up a transaction by reference on Paystack's verify endpoint.
func (c *Client) Verify(ctx context.Context, reference string) (*VerificationResult, error) {
	if !c.Configured() {
		return nil, ErrNoSecretKey
	}

	endpoint := c.BaseURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &UnreachableError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &UnreachableError{Err: fmt.Errorf("failed to read verify response: %w", err)}
	}

	var out verifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		// a gateway error page rather than a Paystack answer
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &UnreachableError{Err: fmt.Errorf("verify returned %d with a non-JSON body: %w", resp.StatusCode, err)}
		}
		return nil, &RejectedError{
			HTTPStatus: resp.StatusCode,
			Message:    "unexpected response from payment provider",
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !out.Status {
		msg := out.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &RejectedError{HTTPStatus: resp.StatusCode, Message: msg}
	}

	return &VerificationResult{
		Status:        out.Data.Status,
		Amount:        out.Data.Amount,
		Reference:     out.Data.Reference,
		CustomerEmail: out.Data.Customer.Email,
	}, nil
}
