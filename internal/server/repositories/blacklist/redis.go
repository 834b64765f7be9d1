package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/timex"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "gophmarket:revoked:"

// RedisRepository keeps one key per revoked token with a native TTL, so
// entries vanish on their own and DeleteExpired has nothing to do.
type RedisRepository struct {
	client redis.Cmdable
	now    timex.Clock
}

type RedisOption func(*RedisRepository)

// WithRedisClock sets the clock used to turn expiresAt into a key TTL.
func WithRedisClock(now timex.Clock) RedisOption {
	return func(r *RedisRepository) { r.now = now }
}

func NewRedisRepository(client redis.Cmdable, opts ...RedisOption) *RedisRepository {
	r := &RedisRepository{client: client, now: timex.SystemClock}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *RedisRepository) key(token string) string {
	return redisKeyPrefix + HashToken(token)
}

func (r *RedisRepository) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	// Keep the later expiry when the key already exists.
	if cur, err := r.client.PTTL(ctx, r.key(token)).Result(); err == nil && cur > ttl {
		return nil
	}
	if err := r.client.Set(ctx, r.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// IsBlacklisted ignores now: Redis evicts keys at their TTL.
func (r *RedisRepository) IsBlacklisted(ctx context.Context, token string, _ time.Time) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n > 0, nil
}

func (r *RedisRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
