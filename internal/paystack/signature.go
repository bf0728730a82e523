package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// Sign returns the lowercase hex HMAC-SHA512 of payload keyed by secret,
// the format Paystack sends in the x-paystack-signature header.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature authenticates payload under secret.
// The payload must be the exact bytes received.
func VerifySignature(payload []byte, signature, secret string) bool {
	sig := strings.ToLower(strings.TrimSpace(signature))
	if sig == "" || secret == "" {
		return false
	}

	decoded, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decoded)
}
