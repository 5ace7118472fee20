package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature authenticates a webhook payload: it computes
// HMAC-SHA256 over the raw body with the shared secret and compares it
// against the hex signature the processor sent. The comparison is
// constant-time.
func VerifySignature(rawBody []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}

// Sign computes the hex HMAC-SHA256 signature for a payload. The
// webhook tests and local tooling use it to produce valid signatures.
func Sign(rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}
