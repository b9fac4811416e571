package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// SessionCookieName is the cookie carrying the opaque session token.
	SessionCookieName = "task.session"

	// TokenLength is the length of generated bearer tokens in bytes
	TokenLength = 32
)

// GenerateSessionToken generates a cryptographically secure random bearer token.
// Returns: token (hex string), token hash (SHA256 hex), error
func GenerateSessionToken() (string, string, error) {
	tokenBytes := make([]byte, TokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", "", fmt.Errorf("generate random token: %w", err)
	}

	token := hex.EncodeToString(tokenBytes)
	return token, HashToken(token), nil
}

// HashToken hashes a bearer token for storage/lookup.
// Returns SHA256 hex hash.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// IsSessionExpired checks if a session has expired
func IsSessionExpired(expiresAt time.Time) bool {
	return time.Now().After(expiresAt)
}
