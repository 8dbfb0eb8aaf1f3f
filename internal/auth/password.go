package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Hasher derives password digests with the server-wide secret mixed in.
// The secret is injected at construction and never read from the
// environment here.
type Hasher struct {
	secret string
}

func NewHasher(secret string) *Hasher {
	return &Hasher{secret: secret}
}

// Hash returns the lowercase hex SHA-256 digest of password + secret.
func (h *Hasher) Hash(password string) string {
	sum := sha256.Sum256([]byte(password + h.secret))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the digest and compares in constant time.
func (h *Hasher) Verify(password, digest string) bool {
	computed := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
