package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"praycalendar/internal/shared/constants"
	"praycalendar/pkg/cache"
	"praycalendar/pkg/logger"
)

// Service maintains request counters and answers admin stats queries. All
// counter writes are best effort; a dead cache never affects callers.
type Service interface {
	RecordRequest(location string)
	GetStats(ctx context.Context) (*UsageStats, error)
	PurgeCache(ctx context.Context, pattern string) (*PurgeResult, error)
}

type service struct {
	cacheService cache.Service
	logger       *logger.Logger
	now          func() time.Time
}

func NewService(cacheService cache.Service, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		cacheService: cacheService,
		logger:       log,
		now:          time.Now,
	}
}

// RecordRequest bumps the global and per-location daily counters in one
// MULTI block, off the request path.
func (s *service) RecordRequest(location string) {
	day := s.now().Format("2006-01-02")
	keys := []string{
		constants.CACHE_KEY_STATS_TOTAL,
		constants.BuildStatsLocationKey(location, day),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.cacheService.IncrBatch(ctx, keys, constants.TTL_STATS); err != nil {
			s.logger.Warn("stats increment failed", "error", err.Error())
		}
	}()
}

func (s *service) GetStats(ctx context.Context) (*UsageStats, error) {
	total, err := s.cacheService.GetCounter(ctx, constants.CACHE_KEY_STATS_TOTAL)
	if err != nil {
		return nil, fmt.Errorf("read total counter: %w", err)
	}

	stats := &UsageStats{TotalRequests: total}

	statKeys, err := s.cacheService.Keys(ctx, constants.PATTERN_STATS_KEYS)
	if err != nil {
		return nil, fmt.Errorf("scan stats keys: %w", err)
	}

	// pt:stats:req:{location}:{yyyy-mm-dd}; the location itself may contain
	// colons ("30.04,31.24"), so the date is split off the tail.
	perLocation := map[string]*LocationStats{}
	for _, key := range statKeys {
		if key == constants.CACHE_KEY_STATS_TOTAL {
			continue
		}
		rest := strings.TrimPrefix(key, constants.CACHE_KEY_STATS_LOCATION)
		idx := strings.LastIndex(rest, ":")
		if idx <= 0 {
			continue
		}
		location, day := rest[:idx], rest[idx+1:]

		count, err := s.cacheService.GetCounter(ctx, key)
		if err != nil {
			continue
		}

		ls, ok := perLocation[location]
		if !ok {
			ls = &LocationStats{Location: location, Daily: map[string]int64{}}
			perLocation[location] = ls
		}
		ls.Daily[day] = count
		ls.Total += count
	}

	for _, ls := range perLocation {
		stats.Locations = append(stats.Locations, *ls)
	}
	sort.Slice(stats.Locations, func(i, j int) bool {
		if stats.Locations[i].Total != stats.Locations[j].Total {
			return stats.Locations[i].Total > stats.Locations[j].Total
		}
		return stats.Locations[i].Location < stats.Locations[j].Location
	})

	stats.CacheKeys, err = s.countCacheKeys(ctx)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *service) countCacheKeys(ctx context.Context) (CacheKeyBreakdown, error) {
	var breakdown CacheKeyBreakdown

	all, err := s.cacheService.Keys(ctx, constants.PATTERN_ALL_KEYS)
	if err != nil {
		return breakdown, fmt.Errorf("scan cache keys: %w", err)
	}
	for _, key := range all {
		switch {
		case strings.HasPrefix(key, constants.CACHE_KEY_RESPONSE):
			breakdown.Responses++
		case strings.HasPrefix(key, constants.CACHE_PREFIX+":stats:"):
			breakdown.Counters++
		default:
			breakdown.Months++
		}
	}
	return breakdown, nil
}

// PurgeCache deletes matching keys. The pattern must stay inside this
// service's namespace; a purge can never touch foreign keys on a shared
// Redis.
func (s *service) PurgeCache(ctx context.Context, pattern string) (*PurgeResult, error) {
	if !strings.HasPrefix(pattern, constants.CACHE_PREFIX+":") {
		return nil, fmt.Errorf("pattern must start with %q", constants.CACHE_PREFIX+":")
	}

	deleted, err := s.cacheService.DeletePattern(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("purge cache: %w", err)
	}

	s.logger.Info("cache purged", "pattern", pattern, "deleted", deleted)
	return &PurgeResult{Pattern: pattern, Deleted: int(deleted)}, nil
}
