package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
Cache service test cases:
1) Set then Get round-trips a value
2) Get on an absent key returns ErrCacheMiss
3) Every operation degrades gracefully when Redis is unreachable
4) MGet returns nil slots for absent keys and never errors
5) IncrBatch increments all keys atomically and applies the TTL
6) DeletePattern removes only matching keys
*/

func newTestService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store := NewStore(Config{Addr: mr.Addr()})
	t.Cleanup(func() { _ = store.Close() })

	return NewService(store, nil), mr
}

// newDeadService points at an address nothing listens on.
func newDeadService(t *testing.T) Service {
	t.Helper()
	store := NewStore(Config{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, nil)
}

func TestService_SetGetRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, svc.Set(ctx, "pt:test:key", payload{Name: "fajr", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, svc.Get(ctx, "pt:test:key", &got))
	assert.Equal(t, "fajr", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestService_GetMiss(t *testing.T) {
	svc, _ := newTestService(t)

	var got string
	err := svc.Get(context.Background(), "pt:absent", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

// TestService_DegradedStore verifies that a dead Redis never breaks callers:
// reads are misses, writes are no-ops, batch reads come back empty.
func TestService_DegradedStore(t *testing.T) {
	svc := newDeadService(t)
	ctx := context.Background()

	assert.False(t, svc.Available())
	assert.ErrorIs(t, svc.Ping(ctx), ErrCacheUnavailable)

	var got string
	assert.ErrorIs(t, svc.Get(ctx, "pt:any", &got), ErrCacheUnavailable)
	assert.ErrorIs(t, svc.Set(ctx, "pt:any", "v", time.Minute), ErrCacheUnavailable)

	results, err := svc.MGet(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Nil(t, results[0])
	assert.Nil(t, results[1])

	assert.NoError(t, svc.IncrBatch(ctx, []string{"pt:count"}, time.Minute))
	assert.NoError(t, svc.Delete(ctx, "pt:any"))
}

func TestService_MGetPartial(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "pt:m:a", "one", time.Minute))
	require.NoError(t, svc.Set(ctx, "pt:m:c", "three", time.Minute))

	results, err := svc.MGet(ctx, []string{"pt:m:a", "pt:m:b", "pt:m:c"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.NotNil(t, results[2])
}

func TestService_IncrBatch(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	keys := []string{"pt:stats:req:total", "pt:stats:req:cairo,-egypt:2026-09-01"}
	require.NoError(t, svc.IncrBatch(ctx, keys, time.Hour))
	require.NoError(t, svc.IncrBatch(ctx, keys, time.Hour))

	total, err := svc.GetCounter(ctx, keys[0])
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestService_GetCounterAbsent(t *testing.T) {
	svc, _ := newTestService(t)

	val, err := svc.GetCounter(context.Background(), "pt:stats:req:total")
	require.NoError(t, err)
	assert.Equal(t, int64(0), val)
}

func TestService_DeletePattern(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "pt:resp:abc", "x", time.Minute))
	require.NoError(t, svc.Set(ctx, "pt:resp:def", "y", time.Minute))
	require.NoError(t, svc.Set(ctx, "pt:cairo,-egypt:5:0:2026-09", "z", time.Minute))

	deleted, err := svc.DeletePattern(ctx, "pt:resp:*")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	keys, err := svc.Keys(ctx, "pt:*")
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}
