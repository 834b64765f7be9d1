package refreshtokens

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SaveFindDelete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, r.Save(ctx, "u1", "tok", exp))

	got, err := r.Find(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, exp, got.ExpiresAt)

	// Save is an upsert.
	require.NoError(t, r.Save(ctx, "u2", "tok", exp.Add(time.Hour)))
	got, err = r.Find(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)

	require.NoError(t, r.Delete(ctx, "tok"))
	require.NoError(t, r.Delete(ctx, "tok"))

	_, err = r.Find(ctx, "tok")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_FindDoesNotCheckExpiry(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Save(ctx, "u1", "old", time.Now().Add(-time.Hour)))

	got, err := r.Find(ctx, "old")
	require.NoError(t, err)
	assert.True(t, got.Expired(time.Now()))
}

func TestMemory_ConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Save(ctx, "u1", "tok", time.Now().Add(time.Hour)))

	got, err := r.Consume(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	_, err = r.Consume(ctx, "tok")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_ConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Save(ctx, "u1", "tok", time.Now().Add(time.Hour)))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Consume(ctx, "tok"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestMemory_DeleteByUserAndExpired(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.Save(ctx, "u1", "a", now.Add(time.Hour)))
	require.NoError(t, r.Save(ctx, "u1", "b", now.Add(-time.Minute)))
	require.NoError(t, r.Save(ctx, "u2", "c", now))
	require.NoError(t, r.Save(ctx, "u2", "d", now.Add(time.Hour)))

	n, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, r.DeleteByUser(ctx, "u1"))

	_, err = r.Find(ctx, "a")
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.Find(ctx, "d")
	require.NoError(t, err)
}
