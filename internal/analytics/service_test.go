package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"praycalendar/internal/shared/constants"
	"praycalendar/pkg/cache"
)

/*
Analytics test cases:
1) RecordRequest bumps the global and per-location daily counters
2) GetStats aggregates per-location counters and classifies cache keys
3) PurgeCache deletes matching keys but refuses foreign patterns
*/

func newAnalytics(t *testing.T) (Service, *miniredis.Miniredis, cache.Service) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store := cache.NewStore(cache.Config{Addr: mr.Addr()})
	t.Cleanup(func() { _ = store.Close() })
	cacheSv := cache.NewService(store, nil)

	return NewService(cacheSv, nil), mr, cacheSv
}

func TestRecordRequest_Counters(t *testing.T) {
	svc, _, cacheSv := newAnalytics(t)
	ctx := context.Background()

	svc.RecordRequest("cairo,-egypt")
	svc.RecordRequest("cairo,-egypt")
	svc.RecordRequest("30.04,31.24")

	// Writes are detached from the caller.
	require.Eventually(t, func() bool {
		total, err := cacheSv.GetCounter(ctx, constants.CACHE_KEY_STATS_TOTAL)
		return err == nil && total == 3
	}, 2*time.Second, 10*time.Millisecond)

	day := time.Now().Format("2006-01-02")
	count, err := cacheSv.GetCounter(ctx, constants.BuildStatsLocationKey("cairo,-egypt", day))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGetStats_Aggregation(t *testing.T) {
	svc, mr, cacheSv := newAnalytics(t)
	ctx := context.Background()

	svc.RecordRequest("cairo,-egypt")
	svc.RecordRequest("cairo,-egypt")
	svc.RecordRequest("30.04,31.24")
	require.Eventually(t, func() bool {
		total, err := cacheSv.GetCounter(ctx, constants.CACHE_KEY_STATS_TOTAL)
		return err == nil && total == 3
	}, 2*time.Second, 10*time.Millisecond)

	// Some cache entries alongside the counters.
	require.NoError(t, mr.Set("pt:resp:abcdef0123456789", "doc"))
	require.NoError(t, mr.Set("pt:cairo,-egypt:5:0:2026-09", "[]"))

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalRequests)

	require.Len(t, stats.Locations, 2)
	// Sorted by volume: Cairo first.
	assert.Equal(t, "cairo,-egypt", stats.Locations[0].Location)
	assert.Equal(t, int64(2), stats.Locations[0].Total)
	assert.Equal(t, "30.04,31.24", stats.Locations[1].Location)

	assert.Equal(t, 1, stats.CacheKeys.Responses)
	assert.Equal(t, 1, stats.CacheKeys.Months)
	assert.Equal(t, 3, stats.CacheKeys.Counters)
}

func TestPurgeCache(t *testing.T) {
	svc, mr, _ := newAnalytics(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("pt:resp:aaa", "x"))
	require.NoError(t, mr.Set("pt:resp:bbb", "y"))
	require.NoError(t, mr.Set("pt:cairo,-egypt:5:0:2026-09", "[]"))

	result, err := svc.PurgeCache(ctx, "pt:resp:*")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Deleted)
	assert.Len(t, mr.Keys(), 1)
}

// Purges outside the service's namespace are rejected outright.
func TestPurgeCache_ForeignPattern(t *testing.T) {
	svc, mr, _ := newAnalytics(t)

	require.NoError(t, mr.Set("sessions:123", "x"))

	_, err := svc.PurgeCache(context.Background(), "*")
	require.Error(t, err)
	assert.Len(t, mr.Keys(), 1)
}
