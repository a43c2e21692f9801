package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecureToken returns length random bytes hex-encoded.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
