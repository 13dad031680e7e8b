package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration
type Config struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (empty if no password)
	DB       int    // Redis database number (0-15)
}

// Store wraps a single shared Redis connection. The connection is established
// lazily on first use; concurrent callers share one connect attempt. When the
// backend cannot be reached the store stays in an unavailable state and every
// operation degrades to a cache miss, so the service keeps working without
// Redis (just slower, always hitting upstream).
type Store struct {
	cfg    Config
	logger *slog.Logger

	connectOnce sync.Once
	client      *redis.Client
}

// NewStore creates a store without touching the network.
func NewStore(cfg Config) *Store {
	return &Store{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// NewStoreWithLogger creates a store that logs connection state to the given logger.
func NewStoreWithLogger(cfg Config, logger *slog.Logger) *Store {
	s := NewStore(cfg)
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Store) connect() {
	if s.cfg.Addr == "" {
		s.logger.Warn("redis address not configured, cache disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.cfg.Addr,
		Password: s.cfg.Password,
		DB:       s.cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		s.logger.Warn("redis unreachable, running without cache",
			slog.String("addr", s.cfg.Addr),
			slog.String("error", err.Error()),
		)
		_ = client.Close()
		return
	}

	s.client = client
	s.logger.Info("redis connected", slog.String("addr", s.cfg.Addr))
}

// Client returns the shared Redis client, or nil when the backend is
// unavailable. Callers must treat nil as a cache miss.
func (s *Store) Client() *redis.Client {
	s.connectOnce.Do(s.connect)
	return s.client
}

// Available reports whether the backing store is reachable.
func (s *Store) Available() bool {
	return s.Client() != nil
}

// Ping tests the connection. Returns ErrCacheUnavailable when the store never
// came up.
func (s *Store) Ping(ctx context.Context) error {
	client := s.Client()
	if client == nil {
		return ErrCacheUnavailable
	}
	return client.Ping(ctx).Err()
}

// Close releases the underlying connection if one was established.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
