// Package favorites stores the (user, listing) bookmark pairs.
package favorites

import (
	"context"

	"github.com/dmitrijs2005/gophmarket/internal/server/models"
)

type Repository interface {
	// Add returns common.ErrorAlreadyExists when the pair is present.
	Add(ctx context.Context, userID, listingID string) error
	// Remove is idempotent.
	Remove(ctx context.Context, userID, listingID string) error
	// List returns the user's favorites, newest first.
	List(ctx context.Context, userID string) ([]models.Favorite, error)
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByListing(ctx context.Context, listingID string) error
}
