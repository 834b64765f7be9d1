package models

import "time"

// RevokedToken marks an access token as unusable until ExpiresAt. Tokens are
// keyed by the SHA-256 hash of their raw value.
type RevokedToken struct {
	TokenHash string
	ExpiresAt time.Time
	RevokedAt time.Time
}
