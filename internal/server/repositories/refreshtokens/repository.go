// Package refreshtokens stores single-use refresh tokens. Two backends are
// provided: PostgreSQL over dbx.DBTX and an in-memory map for tests and
// single-process deployments.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/server/models"
)

// Repository is the refresh token store.
type Repository interface {
	// Save upserts a token record keyed by token.
	Save(ctx context.Context, userID, token string, expiresAt time.Time) error
	// Find returns the record without checking expiry, or common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	// Delete removes the record. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
	// Consume atomically finds and removes the record. Of two concurrent
	// callers with the same token at most one gets it; the other gets
	// common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteByUser(ctx context.Context, userID string) error
	// DeleteExpired removes records with expires_at <= now and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
