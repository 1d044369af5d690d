package domain

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// ConnIDLen is the length of every minted ConnID.
const ConnIDLen = 16

// ConnID identifies one live signaling connection from upgrade to disconnect.
type ConnID string

// NewConnID mints a 16 character url-safe identifier.
func NewConnID() ConnID {
	u := uuid.New()
	return ConnID(base64.RawURLEncoding.EncodeToString(u[:12]))
}

// ValidConnID reports whether s has the shape of a ConnID.
// Anything else submitted as a speaker id is treated as a release.
func ValidConnID(s string) bool {
	return len(s) == ConnIDLen
}
