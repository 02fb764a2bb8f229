package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDenylist(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	d := NewRedisDenylist(rdb)
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists("denylist:jti-1"))

	mr.FastForward(2 * time.Minute)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisDenylist_IgnoresExpired(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	d := NewRedisDenylist(rdb)
	require.NoError(t, d.Revoke(context.Background(), "old", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists("denylist:old"))
}

func TestRedisDenylist_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	_, err := NewRedisDenylist(rdb).IsRevoked(context.Background(), "x")
	assert.Error(t, err)
}

func TestMemoryDenylist(t *testing.T) {
	now := time.Now()
	d := NewMemoryDenylist(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, d.Revoke(ctx, "b", now.Add(-time.Minute)))

	revoked, _ := d.IsRevoked(ctx, "a")
	assert.True(t, revoked)
	revoked, _ = d.IsRevoked(ctx, "b")
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = d.IsRevoked(ctx, "a")
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "c", now.Add(time.Minute)))
	assert.Len(t, d.entries, 1)
}

func TestRedisDenylist_RevokeOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	d := NewRedisDenylist(rdb)
	ctx := context.Background()
	exp := time.Now().Add(time.Minute)

	first, err := d.RevokeOnce(ctx, "r-1", exp)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = d.RevokeOnce(ctx, "r-1", exp)
	require.NoError(t, err)
	assert.False(t, first)

	revoked, err := d.IsRevoked(ctx, "r-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestDenylist_RevokeOnceConcurrent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	lists := map[string]interface {
		RevokeOnce(context.Context, string, time.Time) (bool, error)
	}{
		"redis":  NewRedisDenylist(rdb),
		"memory": NewMemoryDenylist(nil),
	}
	for name, d := range lists {
		t.Run(name, func(t *testing.T) {
			var wins int32
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if ok, err := d.RevokeOnce(context.Background(), "shared", time.Now().Add(time.Minute)); err == nil && ok {
						atomic.AddInt32(&wins, 1)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), wins)
		})
	}
}
