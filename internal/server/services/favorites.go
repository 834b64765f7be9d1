package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/logging"
	"github.com/dmitrijs2005/gophmarket/internal/server/models"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/repomanager"
)

type FavoriteService struct {
	repomanager repomanager.RepositoryManager
	listings    *ListingService
	log         logging.Logger
}

// NewFavoriteService reuses listings to resolve favorites into listings with
// their image URLs.
func NewFavoriteService(m repomanager.RepositoryManager, listings *ListingService, log logging.Logger) *FavoriteService {
	return &FavoriteService{repomanager: m, listings: listings, log: log.With("module", "favorites")}
}

func (s *FavoriteService) Add(ctx context.Context, userID, listingID string) error {
	db := s.repomanager.Conn()
	if _, err := s.repomanager.Listings(db).GetByID(ctx, listingID); err != nil {
		return err
	}

	if err := s.repomanager.Favorites(db).Add(ctx, userID, listingID); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return common.ErrAlreadyFavorited
		}
		return fmt.Errorf("error adding favorite: %w", err)
	}
	s.log.Debug(ctx, "favorite added", "user_id", userID, "listing_id", listingID)
	return nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, listingID string) error {
	if err := s.repomanager.Favorites(s.repomanager.Conn()).Remove(ctx, userID, listingID); err != nil {
		return fmt.Errorf("error removing favorite: %w", err)
	}
	return nil
}

// List resolves the user's favorites, newest first. Listings deleted in the
// meantime are skipped.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]*models.Listing, error) {
	favs, err := s.repomanager.Favorites(s.repomanager.Conn()).List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing favorites: %w", err)
	}

	out := make([]*models.Listing, 0, len(favs))
	for _, f := range favs {
		l, err := s.listings.Get(ctx, f.ListingID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
