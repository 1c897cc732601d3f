package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewUUID generates a new UUID
func NewUUID() uuid.UUID {
	return uuid.New()
}

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// NewAnonymousID returns an opaque id for a browser session without an
// account.
func NewAnonymousID() string {
	return "anon_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// IsAnonymousID reports whether s looks like an id from NewAnonymousID.
func IsAnonymousID(s string) bool {
	if !strings.HasPrefix(s, "anon_") || len(s) != len("anon_")+32 {
		return false
	}
	_, err := hex.DecodeString(s[len("anon_"):])
	return err == nil
}

// RandomState returns a random hex string for OAuth state parameters.
func RandomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
