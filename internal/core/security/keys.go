package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// GenerateAPIKey creates a new admin key and its hash.
// Returns: (realKey, hash). The real key is shown to the caller exactly once;
// only the hash is persisted.
func GenerateAPIKey() (string, string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	realKey := fmt.Sprintf("sk_live_%s", hex.EncodeToString(bytes))

	hash := sha256.Sum256([]byte(realKey))
	hashedKey := hex.EncodeToString(hash[:])

	return realKey, hashedKey, nil
}

// ValidateKey checks a presented key against the stored hash in constant
// time.
func ValidateKey(providedKey, storedHash string) bool {
	hash := sha256.Sum256([]byte(providedKey))
	computedHash := hex.EncodeToString(hash[:])
	return subtle.ConstantTimeCompare([]byte(computedHash), []byte(storedHash)) == 1
}
