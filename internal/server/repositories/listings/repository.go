// Package listings persists marketplace listings.
package listings

import (
	"context"

	"github.com/dmitrijs2005/gophmarket/internal/server/models"
)

// Filter selects a page of listings, newest first. An empty SellerID
// matches every seller.
type Filter struct {
	Limit    int
	Offset   int
	SellerID string
}

type Repository interface {
	Create(ctx context.Context, l *models.Listing) (*models.Listing, error)
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	List(ctx context.Context, f Filter) ([]*models.Listing, error)
	Update(ctx context.Context, id string, up models.ListingUpdate) (*models.Listing, error)
	Delete(ctx context.Context, id string) error
	DeleteBySeller(ctx context.Context, sellerID string) error
}
