package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// sessionTokenBytes is the entropy of a session token; rendered as hex it
// becomes a 64-character string.
const sessionTokenBytes = 32

// GenerateSessionToken returns a 256-bit random token rendered as hex.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateOTP returns a 6-digit numeric one-time code as a zero-padded string.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate one-time code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
