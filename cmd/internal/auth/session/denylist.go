package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Denylist records revoked token ids until their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	Revoked(ctx context.Context, jti string) (bool, error)
}

// MemoryDenylist is a bounded in-process denylist.
//
// Entries are evicted by the LRU after maxTTL at the latest; each entry also
// carries its own deadline so a token revoked near its expiry is forgotten on time.
type MemoryDenylist struct {
	lru *expirable.LRU[string, time.Time]
	now func() time.Time
}

// NewMemoryDenylist holds up to size ids, none longer than maxTTL.
func NewMemoryDenylist(size int, maxTTL time.Duration) *MemoryDenylist {
	if size <= 0 {
		size = 10000
	}
	return &MemoryDenylist{
		lru: expirable.NewLRU[string, time.Time](size, nil, maxTTL),
		now: time.Now,
	}
}

func (d *MemoryDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	if !until.After(d.now()) {
		return nil
	}
	d.lru.Add(jti, until)
	return nil
}

func (d *MemoryDenylist) Revoked(_ context.Context, jti string) (bool, error) {
	until, ok := d.lru.Get(jti)
	if !ok {
		return false, nil
	}
	if !until.After(d.now()) {
		d.lru.Remove(jti)
		return false, nil
	}
	return true, nil
}

// RedisDenylist stores revoked ids as keys expiring with the token.
type RedisDenylist struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisDenylist uses keys "<prefix><jti>".
func NewRedisDenylist(rdb redis.UniversalClient, prefix string) (*RedisDenylist, error) {
	if rdb == nil {
		return nil, errors.New("session: nil redis client")
	}
	if prefix == "" {
		prefix = "fakie:deny:"
	}
	return &RedisDenylist{rdb: rdb, prefix: prefix, now: time.Now}, nil
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, d.prefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("session: denylist set: %w", err)
	}
	return nil
}

func (d *RedisDenylist) Revoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, d.prefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("session: denylist exists: %w", err)
	}
	return n > 0, nil
}
