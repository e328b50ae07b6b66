// Package signature authenticates partner webhook deliveries.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Verifier checks a delivery's signature header against its raw body.
type Verifier interface {
	Verify(body []byte, signature string) bool
	// Enforced reports whether unsigned deliveries are rejected.
	Enforced() bool
}

// New returns an HMAC-SHA256 verifier, or Unsigned when no secret is configured.
func New(secret string) Verifier {
	if secret == "" {
		return Unsigned{}
	}
	return &HMACSHA256{secret: []byte(secret)}
}

// Unsigned accepts every delivery.
type Unsigned struct{}

func (Unsigned) Verify([]byte, string) bool { return true }
func (Unsigned) Enforced() bool             { return false }

type HMACSHA256 struct {
	secret []byte
}

func (v *HMACSHA256) Enforced() bool { return true }

// Verify accepts a hex digest, optionally prefixed with "sha256=".
func (v *HMACSHA256) Verify(body []byte, signature string) bool {
	signature = strings.TrimSpace(signature)
	signature = strings.TrimPrefix(signature, "sha256=")
	if signature == "" {
		return false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}

// Sign returns the hex HMAC-SHA256 of body, as the partner sends it.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
