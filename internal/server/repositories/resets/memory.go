package resets

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/server/models"
	"github.com/dmitrijs2005/gophmarket/internal/timex"
)

type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]models.PasswordReset
	now    timex.Clock
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]models.PasswordReset), now: timex.SystemClock}
}

func (r *MemoryRepository) Create(_ context.Context, userID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token]; ok {
		return common.ErrorAlreadyExists
	}
	r.tokens[token] = models.PasswordReset{Token: token, UserID: userID, ExpiresAt: expiresAt, CreatedAt: r.now()}
	return nil
}

func (r *MemoryRepository) Consume(_ context.Context, token string) (*models.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pr, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.tokens, token)
	return &pr, nil
}

func (r *MemoryRepository) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, pr := range r.tokens {
		if pr.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

func (r *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for k, pr := range r.tokens {
		if pr.Expired(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}
