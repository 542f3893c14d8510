package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore shares counters between instances. Each key is an integer with a
// PTTL equal to the remainder of its window.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisStore uses keys "<prefix><key>".
func NewRedisStore(rdb redis.UniversalClient, prefix string) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("ratelimit: nil redis client")
	}
	if prefix == "" {
		prefix = "fakie:rl:"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}, nil
}

// Increment implements CounterStore.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration, now time.Time) (Counter, error) {
	k := s.prefix + key

	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		pttl = p.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return Counter{}, fmt.Errorf("ratelimit: redis incr: %w", err)
	}

	ttl := pttl.Val()
	if ttl < 0 {
		// First hit of a window: the key has no expiry yet.
		if err := s.rdb.PExpire(ctx, k, window).Err(); err != nil {
			return Counter{}, fmt.Errorf("ratelimit: redis pexpire: %w", err)
		}
		ttl = window
	}

	return Counter{Count: incr.Val(), ResetAt: now.Add(ttl)}, nil
}
