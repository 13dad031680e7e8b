package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss is returned when a key does not exist.
	ErrCacheMiss = errors.New("cache miss")
	// ErrCacheUnavailable is returned when the backing store is unreachable.
	// Consumers must treat it exactly like a miss.
	ErrCacheUnavailable = errors.New("cache unavailable")
)

// Service exposes the cache operations the application uses. Every method
// degrades to a miss / no-op when the backing store is unavailable; cache
// failures never surface to the request path.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// SetAsync dispatches a fire-and-forget write. Failures are swallowed.
	SetAsync(key string, value interface{}, ttl time.Duration)
	// MGet performs one batched lookup. The result has one entry per key;
	// missing keys yield nil. An unavailable store yields all-nil.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Delete(ctx context.Context, keys ...string) error
	// Keys runs a pattern scan. Admin/stat tooling only, not for hot paths.
	Keys(ctx context.Context, pattern string) ([]string, error)
	DeletePattern(ctx context.Context, pattern string) (int64, error)
	// IncrBatch atomically increments every key in one MULTI block and
	// refreshes their expiry.
	IncrBatch(ctx context.Context, keys []string, ttl time.Duration) error
	GetCounter(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Available() bool
}

type service struct {
	store  *Store
	logger *slog.Logger
}

// NewService wraps a store in the JSON cache service.
func NewService(store *Store, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{store: store, logger: logger}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	client := s.store.Client()
	if client == nil {
		return ErrCacheUnavailable
	}

	val, err := client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	client := s.store.Client()
	if client == nil {
		return ErrCacheUnavailable
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// SetAsync populates the cache without holding up the caller. The write runs
// detached with its own deadline; its failure is never observed by the
// request path.
func (s *service) SetAsync(key string, value interface{}, ttl time.Duration) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.Set(ctx, key, value, ttl); err != nil && !errors.Is(err, ErrCacheUnavailable) {
			s.logger.Warn("async cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}()
}

func (s *service) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	results := make([][]byte, len(keys))
	if len(keys) == 0 {
		return results, nil
	}

	client := s.store.Client()
	if client == nil {
		return results, nil
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		// A failing batch read is a whole-batch miss, not an error.
		s.logger.Warn("cache mget failed", slog.String("error", err.Error()))
		return results, nil
	}

	for i, val := range values {
		if str, ok := val.(string); ok {
			results[i] = []byte(str)
		}
	}
	return results, nil
}

func (s *service) Delete(ctx context.Context, keys ...string) error {
	client := s.store.Client()
	if client == nil || len(keys) == 0 {
		return nil
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (s *service) Keys(ctx context.Context, pattern string) ([]string, error) {
	client := s.store.Client()
	if client == nil {
		return nil, ErrCacheUnavailable
	}
	keys, err := client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("cache keys error: %w", err)
	}
	return keys, nil
}

func (s *service) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	keys, err := s.Keys(ctx, pattern)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	client := s.store.Client()
	if client == nil {
		return 0, ErrCacheUnavailable
	}
	deleted, err := client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("cache delete pattern error: %w", err)
	}
	return deleted, nil
}

func (s *service) IncrBatch(ctx context.Context, keys []string, ttl time.Duration) error {
	client := s.store.Client()
	if client == nil || len(keys) == 0 {
		return nil
	}

	pipe := client.TxPipeline()
	for _, key := range keys {
		pipe.Incr(ctx, key)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache incr batch error: %w", err)
	}
	return nil
}

func (s *service) GetCounter(ctx context.Context, key string) (int64, error) {
	client := s.store.Client()
	if client == nil {
		return 0, ErrCacheUnavailable
	}
	val, err := client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("cache counter error: %w", err)
	}
	return val, nil
}

func (s *service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *service) Available() bool {
	return s.store.Available()
}
