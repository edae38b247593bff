package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dev.helix.promptcache/internal/config"
)

// Store is the storage contract implemented identically by the memory,
// file, and distributed backends.
//
// Get returns (nil, false, nil) both for never-stored keys and for entries
// whose TTL has elapsed (lazy expiration). A non-nil error wrapping
// ErrStorageUnavailable means the backend could not be reached; callers are
// expected to treat that as a miss. Unreadable entries are discarded and
// reported as misses, never as errors.
//
// Put unconditionally overwrites. A non-positive ttl falls back to the
// store's configured default.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Size(ctx context.Context) (int, error)
	Close() error
}

// NewStore constructs the backend selected by cfg.Backend.
func NewStore(cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStore(cfg.MaxEntries, cfg.DefaultTTL(), logger), nil
	case config.BackendFile:
		return NewFileStore(cfg.Directory, cfg.DefaultTTL(), cfg.SweepInterval, logger)
	case config.BackendDistributed:
		client := NewRedisClient(cfg.Redis)
		return NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.DefaultTTL(), logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
