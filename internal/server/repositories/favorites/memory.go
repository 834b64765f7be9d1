package favorites

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/server/models"
	"github.com/dmitrijs2005/gophmarket/internal/timex"
)

type key struct{ user, listing string }

type MemoryRepository struct {
	mu    sync.RWMutex
	pairs map[key]models.Favorite
	now   timex.Clock
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{pairs: make(map[key]models.Favorite), now: timex.SystemClock}
}

func (r *MemoryRepository) Add(_ context.Context, userID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{userID, listingID}
	if _, ok := r.pairs[k]; ok {
		return common.ErrorAlreadyExists
	}
	r.pairs[k] = models.Favorite{UserID: userID, ListingID: listingID, CreatedAt: r.now()}
	return nil
}

func (r *MemoryRepository) Remove(_ context.Context, userID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pairs, key{userID, listingID})
	return nil
}

func (r *MemoryRepository) List(_ context.Context, userID string) ([]models.Favorite, error) {
	r.mu.RLock()
	result := make([]models.Favorite, 0)
	for k, f := range r.pairs {
		if k.user == userID {
			result = append(result, f)
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ListingID < result[j].ListingID
	})
	return result, nil
}

func (r *MemoryRepository) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.pairs {
		if k.user == userID {
			delete(r.pairs, k)
		}
	}
	return nil
}

func (r *MemoryRepository) DeleteByListing(_ context.Context, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.pairs {
		if k.listing == listingID {
			delete(r.pairs, k)
		}
	}
	return nil
}
