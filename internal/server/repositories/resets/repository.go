// Package resets stores single-use password reset tokens.
package resets

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, token string, expiresAt time.Time) error
	// Consume atomically removes and returns the record, or common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.PasswordReset, error)
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
