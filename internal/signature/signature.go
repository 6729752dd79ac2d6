package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the hex-encoded HMAC-SHA256 of message under secret.
// Deterministic: the same inputs always produce the same signature.
func Sign(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether sig is the signature of message under secret.
// Comparison is constant-time.
func Verify(message, secret, sig string) bool {
	expected := Sign(message, secret)
	return hmac.Equal([]byte(expected), []byte(sig))
}
