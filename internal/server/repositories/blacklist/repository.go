// Package blacklist is the revocation registry for access tokens that were
// logged out before their natural expiry.
//
// Only the SHA-256 digest of a token is stored. Each entry carries its own
// expiry and is ignored by IsBlacklisted once that instant has passed, so
// reclamation (DeleteExpired) affects storage size only, never correctness.
package blacklist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type Repository interface {
	// Add records token as revoked until expiresAt. Adding the same token
	// twice keeps the later expiry.
	Add(ctx context.Context, token string, expiresAt time.Time) error
	// IsBlacklisted reports whether token has an entry expiring after now.
	IsBlacklisted(ctx context.Context, token string, now time.Time) (bool, error)
	// DeleteExpired drops entries with expires_at <= now and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// HashToken returns the hex SHA-256 digest used as the registry key.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
