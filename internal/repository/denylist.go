package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDenylist records revoked token ids in Redis.  Each entry expires when
// the token itself would have, so the set never outgrows the live tokens.
type RedisDenylist struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisDenylist(rdb *redis.Client) *RedisDenylist {
	return &RedisDenylist{rdb: rdb, prefix: "denylist:"}
}

// Revoke marks jti as revoked until expiresAt.  Already expired tokens are
// ignored.
func (d *RedisDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, d.prefix+jti, "1", ttl).Err()
}

// RevokeOnce revokes jti with SET NX and reports whether this call was the
// one that revoked it.  Concurrent callers presenting the same token see
// exactly one true.
func (d *RedisDenylist) RevokeOnce(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return true, nil
	}
	return d.rdb.SetNX(ctx, d.prefix+jti, "1", ttl).Result()
}

// IsRevoked reports whether jti has been revoked.
func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := d.rdb.Get(ctx, d.prefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryDenylist is the single-process fallback used when Redis is not
// available.  Expired entries are pruned lazily on write.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist(now func() time.Time) *MemoryDenylist {
	if now == nil {
		now = time.Now
	}
	return &MemoryDenylist{entries: make(map[string]time.Time), now: now}
}

func (d *MemoryDenylist) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for k, exp := range d.entries {
		if !exp.After(now) {
			delete(d.entries, k)
		}
	}
	if expiresAt.After(now) {
		d.entries[jti] = expiresAt
	}
	return nil
}

// RevokeOnce is the check-and-set form of Revoke.
func (d *MemoryDenylist) RevokeOnce(_ context.Context, jti string, expiresAt time.Time) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if exp, ok := d.entries[jti]; ok && exp.After(now) {
		return false, nil
	}
	if expiresAt.After(now) {
		d.entries[jti] = expiresAt
	}
	return true, nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.entries[jti]
	return ok && exp.After(d.now()), nil
}
