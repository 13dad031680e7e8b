package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
Rate limiter test cases:
1) Requests under the budget pass with a decreasing remaining count
2) The budget boundary blocks further requests within the window
3) A nil client or disabled config fails open
*/

func newLimiter(t *testing.T, limit int) *RateLimiter {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRateLimiter(client, &Config{
		Enabled:          true,
		WindowDuration:   time.Minute,
		CalendarRequests: limit,
	})
}

func TestIsAllowed_UnderBudget(t *testing.T) {
	rl := newLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeCalendar)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 3, result.Limit)
	}
}

func TestIsAllowed_OverBudget(t *testing.T) {
	rl := newLimiter(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := rl.IsAllowed(ctx, "10.0.0.2", RateLimitTypeCalendar)
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	result, err := rl.IsAllowed(ctx, "10.0.0.2", RateLimitTypeCalendar)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)

	// A different client is unaffected.
	other, err := rl.IsAllowed(ctx, "10.0.0.3", RateLimitTypeCalendar)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestIsAllowed_FailsOpen(t *testing.T) {
	rl := NewRateLimiter(nil, &Config{Enabled: true, WindowDuration: time.Minute, CalendarRequests: 1})

	for i := 0; i < 5; i++ {
		result, err := rl.IsAllowed(context.Background(), "10.0.0.4", RateLimitTypeCalendar)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	disabled := newLimiter(t, 1)
	disabled.config.Enabled = false
	result, err := disabled.IsAllowed(context.Background(), "10.0.0.5", RateLimitTypeCalendar)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
