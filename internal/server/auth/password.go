// Package auth implements the credential verifier (bcrypt) and the access
// token codec (HS256 JWT) used by the session use cases and the
// authentication gate.
package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords with bcrypt. Plaintext passwords must
// never be logged or persisted.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher returns a Hasher with the given bcrypt cost, clamped to the range
// bcrypt accepts. A non-positive cost selects bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	h := &Hasher{cost: cost}
	// A fixed hash at the same cost, so comparisons for unknown users take as
	// long as real ones.
	h.dummy, _ = bcrypt.GenerateFromPassword([]byte("gophmarket-dummy-password"), cost)
	return h
}

// Hash produces a salted bcrypt hash of secret.
func (h *Hasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether secret matches hash. A malformed hash yields false.
func (h *Hasher) Compare(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// DummyCompare spends one comparison against a fixed hash and discards the result.
func (h *Hasher) DummyCompare(secret string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(secret))
}
