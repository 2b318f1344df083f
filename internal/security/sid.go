// Package security provides the session identifier generator and the bcrypt
// hasher used to verify the bootstrap secret.
package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// sidBytes is the raw entropy of a session identifier. 32 bytes gives 256
// bits, which makes guessing and collisions both out of reach.
const sidBytes = 32

// NewSID returns a cryptographically random, URL-safe session identifier.
func NewSID() (string, error) {
	b := make([]byte, sidBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("sid: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
