package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// saltBytes is the raw salt length before hex encoding.
const saltBytes = 16

// GenerateSalt returns a fresh cryptographically random salt, hex-encoded.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword computes hex(SHA-256(password || salt)). The salt is the
// hex-encoded form as stored, not the raw bytes.
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}
