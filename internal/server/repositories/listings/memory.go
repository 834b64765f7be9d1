package listings

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/server/models"
	"github.com/dmitrijs2005/gophmarket/internal/timex"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu       sync.RWMutex
	listings map[string]models.Listing
	now      timex.Clock
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{listings: make(map[string]models.Listing), now: timex.SystemClock}
}

func (r *MemoryRepository) Create(_ context.Context, l *models.Listing) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.ID = uuid.NewString()
	l.CreatedAt = r.now()
	l.UpdatedAt = l.CreatedAt
	r.listings[l.ID] = *l
	return l, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.listings[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &l, nil
}

func (r *MemoryRepository) List(_ context.Context, f Filter) ([]*models.Listing, error) {
	r.mu.RLock()
	all := make([]*models.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		if f.SellerID != "" && l.SellerID != f.SellerID {
			continue
		}
		l := l
		all = append(all, &l)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	if f.Offset >= len(all) {
		return []*models.Listing{}, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && f.Limit < len(all) {
		all = all[:f.Limit]
	}
	return all, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, up models.ListingUpdate) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	up.Apply(&l)
	l.UpdatedAt = r.now()
	r.listings[id] = l
	return &l, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r *MemoryRepository) DeleteBySeller(_ context.Context, sellerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, l := range r.listings {
		if l.SellerID == sellerID {
			delete(r.listings, id)
		}
	}
	return nil
}
