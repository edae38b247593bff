package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dev.helix.promptcache/internal/config"
)

// redisRecord is the wire payload for the distributed backend. The server
// owns expiry (SET ... EX), so no TTL is stored alongside the value.
type redisRecord struct {
	Value     []byte `json:"value"`
	CreatedAt int64  `json:"created_at"`
}

// RedisStore is the distributed backend: a shared key-value service holding
// entries for many processes, with server-side TTL. Backend unreachability
// surfaces as ErrStorageUnavailable, which the facade treats as a miss;
// a caching outage must never block the caller.
type RedisStore struct {
	client *redis.Client
	prefix string

	defaultTTL time.Duration
	logger     *zap.Logger
}

// NewRedisClient builds a client from the configured endpoint.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisStore wraps an existing client. prefix namespaces every key so
// several caches can share one server.
func NewRedisStore(client *redis.Client, prefix string, defaultTTL time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

// Get fetches the entry for key. The sibling hit counter is incremented
// server-side, so hit counts aggregate across processes.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	data, err := s.client.Get(ctx, s.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: redis get: %v", ErrStorageUnavailable, err)
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		serr := &SerializationError{Key: key, Err: err}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(serr))
		_ = s.client.Del(ctx, s.entryKey(key)).Err()
		return nil, false, nil
	}

	hits, err := s.client.Incr(ctx, s.hitsKey(key)).Result()
	if err != nil {
		hits = 0
	}

	return &Entry{
		Key:       key,
		Value:     rec.Value,
		CreatedAt: time.Unix(rec.CreatedAt, 0),
		SizeBytes: int64(len(rec.Value)),
		HitCount:  hits,
	}, true, nil
}

// Put stores value under key with a server-side TTL.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	data, err := json.Marshal(&redisRecord{Value: value, CreatedAt: time.Now().Unix()})
	if err != nil {
		return &SerializationError{Key: key, Err: err}
	}
	if err := s.client.Set(ctx, s.entryKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Delete removes the entry and its hit counter; absent keys are a no-op.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.entryKey(key), s.hitsKey(key)).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Clear removes every entry and hit counter under this store's prefix.
// Shared stats counters are left alone; they belong to the recorder.
func (s *RedisStore) Clear(ctx context.Context) error {
	for _, pattern := range []string{s.prefix + "entry:*", s.prefix + "hits:*"} {
		var cursor uint64
		for {
			keys, next, err := s.client.Scan(ctx, cursor, pattern, 256).Result()
			if err != nil {
				return fmt.Errorf("%w: redis scan: %v", ErrStorageUnavailable, err)
			}
			if len(keys) > 0 {
				if err := s.client.Del(ctx, keys...).Err(); err != nil {
					return fmt.Errorf("%w: redis del: %v", ErrStorageUnavailable, err)
				}
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	return nil
}

// Size counts live entries under the prefix. The server expires keys
// itself, so the count never includes expired entries.
func (s *RedisStore) Size(ctx context.Context) (int, error) {
	var cursor uint64
	count := 0
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"entry:*", 256).Result()
		if err != nil {
			return 0, fmt.Errorf("%w: redis scan: %v", ErrStorageUnavailable, err)
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

// Close releases the client connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Client exposes the underlying connection, shared with the stats recorder.
func (s *RedisStore) Client() *redis.Client { return s.client }

func (s *RedisStore) entryKey(key string) string { return s.prefix + "entry:" + key }
func (s *RedisStore) hitsKey(key string) string  { return s.prefix + "hits:" + key }
