// Package users persists user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophmarket/internal/server/models"
)

type Repository interface {
	// Create inserts u, filling ID and timestamps. A taken email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, id string, up models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
