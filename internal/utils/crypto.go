package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// TokenDigest returns the SHA-256 hex digest of a one-time scan token.
// Only the digest ever travels to the backend or into audit logs; the
// plaintext token is discarded after the scan is consumed or queued.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateScanToken produces a new one-time scan token.
func GenerateScanToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// MustGenerateScanToken panics if the system entropy source fails.
func MustGenerateScanToken() string {
	token, err := GenerateScanToken()
	if err != nil {
		panic("failed to generate scan token: " + err.Error())
	}
	return token
}
