package session

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/pkg/errors"
)

// GenerateID generates a cryptographically secure session ID.
// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
// Hex keeps the ID free of the cookie value delimiter.
func GenerateID() (string, error) {

	const size = 32 // 256 bits

	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", errors.Wrap(err, "session: failed to generate id")
	}

	return hex.EncodeToString(b), nil

}
