package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/dbx"
	"github.com/dmitrijs2005/gophmarket/internal/logging"
	"github.com/dmitrijs2005/gophmarket/internal/server/models"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/listings"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophmarket/internal/server/storage"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	maxTitleLen       = 200
	maxDescriptionLen = 5000
	defaultCurrency   = "USD"
)

// ErrImagesDisabled is returned by ImageUploadURL when no object store is
// configured.
var ErrImagesDisabled = errors.New("image storage is not configured")

type ListingInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	Currency    string `json:"currency"`
	Category    string `json:"category"`
	Location    string `json:"location"`
}

type ListingService struct {
	repomanager repomanager.RepositoryManager
	presigner   storage.Presigner
	log         logging.Logger
}

// NewListingService builds the listing use cases. presigner may be nil, in
// which case listings carry no image URLs and uploads are refused.
func NewListingService(m repomanager.RepositoryManager, presigner storage.Presigner, log logging.Logger) *ListingService {
	return &ListingService{repomanager: m, presigner: presigner, log: log.With("module", "listings")}
}

func (s *ListingService) Create(ctx context.Context, sellerID string, in ListingInput) (*models.Listing, error) {
	l := &models.Listing{
		SellerID:    sellerID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		Currency:    strings.ToUpper(strings.TrimSpace(in.Currency)),
		Category:    strings.TrimSpace(in.Category),
		Location:    strings.TrimSpace(in.Location),
		Status:      models.ListingActive,
	}
	if l.Currency == "" {
		l.Currency = defaultCurrency
	}
	if err := validateListing(l); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Listings(s.repomanager.Conn()).Create(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("error creating listing: %w", err)
	}

	s.log.Info(ctx, "listing created", "listing_id", created.ID, "seller_id", sellerID)
	return s.withImageURL(ctx, created), nil
}

func (s *ListingService) Get(ctx context.Context, id string) (*models.Listing, error) {
	l, err := s.repomanager.Listings(s.repomanager.Conn()).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withImageURL(ctx, l), nil
}

// List returns a page of listings, newest first. A zero limit means
// DefaultListLimit; larger than MaxListLimit is clamped.
func (s *ListingService) List(ctx context.Context, limit, offset int, sellerID string) ([]*models.Listing, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	if offset < 0 {
		return nil, validationError("offset must not be negative")
	}

	items, err := s.repomanager.Listings(s.repomanager.Conn()).List(ctx, listings.Filter{Limit: limit, Offset: offset, SellerID: sellerID})
	if err != nil {
		return nil, fmt.Errorf("error listing: %w", err)
	}
	for i := range items {
		items[i] = s.withImageURL(ctx, items[i])
	}
	return items, nil
}

func (s *ListingService) Update(ctx context.Context, userID, id string, up models.ListingUpdate) (*models.Listing, error) {
	current, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	up.ImageKey = nil
	trimPtr(up.Title)
	trimPtr(up.Description)
	trimPtr(up.Category)
	trimPtr(up.Location)
	if up.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*up.Currency))
		up.Currency = &c
	}

	next := *current
	up.Apply(&next)
	if err := validateListing(&next); err != nil {
		return nil, err
	}

	l, err := s.repomanager.Listings(s.repomanager.Conn()).Update(ctx, id, up)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "listing updated", "listing_id", id)
	return s.withImageURL(ctx, l), nil
}

// Delete removes the listing and every favorite pointing at it.
func (s *ListingService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Favorites(tx).DeleteByListing(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Listings(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "listing deleted", "listing_id", id)
	return nil
}

// ImageUploadURL stores a fresh object key on the listing and returns a
// presigned PUT URL for it.
func (s *ListingService) ImageUploadURL(ctx context.Context, userID, id, contentType string) (string, string, error) {
	if s.presigner == nil {
		return "", "", ErrImagesDisabled
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.owned(ctx, userID, id); err != nil {
		return "", "", err
	}

	key := path.Join("listings", id, uuid.NewString())
	url, err := s.presigner.PutURL(ctx, key, contentType)
	if err != nil {
		return "", "", fmt.Errorf("error presigning upload: %w", err)
	}

	if _, err := s.repomanager.Listings(s.repomanager.Conn()).Update(ctx, id, models.ListingUpdate{ImageKey: &key}); err != nil {
		return "", "", err
	}
	return url, key, nil
}

func (s *ListingService) owned(ctx context.Context, userID, id string) (*models.Listing, error) {
	l, err := s.repomanager.Listings(s.repomanager.Conn()).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.SellerID != userID {
		return nil, common.ErrorForbidden
	}
	return l, nil
}

func (s *ListingService) withImageURL(ctx context.Context, l *models.Listing) *models.Listing {
	if s.presigner == nil || l.ImageKey == "" {
		return l
	}
	url, err := s.presigner.GetURL(ctx, l.ImageKey)
	if err != nil {
		s.log.Warn(ctx, "presign image url failed", "listing_id", l.ID, "error", err)
		return l
	}
	l.ImageURL = url
	return l
}

func validateListing(l *models.Listing) error {
	if l.Title == "" {
		return validationError("title is required")
	}
	if utf8.RuneCountInString(l.Title) > maxTitleLen {
		return validationError("title is too long")
	}
	if utf8.RuneCountInString(l.Description) > maxDescriptionLen {
		return validationError("description is too long")
	}
	if l.PriceCents < 0 {
		return validationError("price must not be negative")
	}
	if !isCurrencyCode(l.Currency) {
		return validationError("currency must be a three-letter code")
	}
	if !l.Status.Valid() {
		return validationError("unknown listing status")
	}
	return nil
}

func isCurrencyCode(c string) bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func trimPtr(p *string) {
	if p != nil {
		*p = strings.TrimSpace(*p)
	}
}
