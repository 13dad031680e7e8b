package prayer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"praycalendar/internal/shared/constants"
	"praycalendar/pkg/cache"
	"praycalendar/pkg/logger"
)

// MonthCache is the L1 cache: one entry per (location, method, school,
// year-month), holding that month's ordered day list.
type MonthCache struct {
	cache  cache.Service
	ttl    time.Duration
	logger *logger.Logger
}

// NewMonthCache wraps the cache service. A zero ttl falls back to the
// 7-day default.
func NewMonthCache(cacheService cache.Service, ttl time.Duration, log *logger.Logger) *MonthCache {
	if ttl <= 0 {
		ttl = constants.TTL_MONTH_DATA
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &MonthCache{cache: cacheService, ttl: ttl, logger: log}
}

// GetCachedMonths looks up every requested month in a single batched read.
// Months absent from the store, months whose payload no longer unmarshals,
// and the whole set when the store is unavailable all land in missing; the
// caller fetches those from upstream.
func (m *MonthCache) GetCachedMonths(ctx context.Context, location string, method, school int, months []string) (map[string][]Day, []string) {
	cached := make(map[string][]Day, len(months))
	if len(months) == 0 {
		return cached, nil
	}

	keys := make([]string, len(months))
	for i, ym := range months {
		keys[i] = constants.BuildMonthKey(location, method, school, ym)
	}

	values, err := m.cache.MGet(ctx, keys)
	if err != nil && !errors.Is(err, cache.ErrCacheUnavailable) {
		m.logger.LogCacheDegraded(ctx, "month mget", err)
	}

	var missing []string
	for i, ym := range months {
		if values == nil || values[i] == nil {
			missing = append(missing, ym)
			continue
		}
		var days []Day
		if err := json.Unmarshal(values[i], &days); err != nil || len(days) == 0 {
			missing = append(missing, ym)
			continue
		}
		cached[ym] = days
	}
	return cached, missing
}

// SetCachedMonth populates one month slot, fire-and-forget. Write-through
// population must never fail the request, so failures are swallowed inside
// the cache service.
func (m *MonthCache) SetCachedMonth(location string, method, school int, yearMonth string, days []Day) {
	if len(days) == 0 {
		return
	}
	key := constants.BuildMonthKey(location, method, school, yearMonth)
	m.cache.SetAsync(key, days, m.ttl)
	m.logger.Debug("month cached", slog.String("key", key), slog.Int("days", len(days)))
}
