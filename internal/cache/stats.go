package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Snapshot is an immutable view of cache effectiveness counters. HitRate is
// hits/(hits+misses), reported as 0 before any resolve has been observed.
type Snapshot struct {
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	BytesSaved int64   `json:"bytes_saved"`
	CostSaved  float64 `json:"cost_saved"`
	HitRate    float64 `json:"hit_rate"`
}

// Recorder accumulates hit/miss accounting. Recording must never fail the
// calling request; implementations swallow and log their own errors.
type Recorder interface {
	RecordHit(ctx context.Context, bytesSaved int64, costSaved float64)
	RecordMiss(ctx context.Context)
	Snapshot(ctx context.Context) (Snapshot, error)
	Reset(ctx context.Context) error
}

// LocalRecorder keeps process-local counters behind a mutex.
type LocalRecorder struct {
	mu         sync.Mutex
	hits       int64
	misses     int64
	bytesSaved int64
	costSaved  float64
}

// NewLocalRecorder returns a zeroed in-process recorder.
func NewLocalRecorder() *LocalRecorder {
	return &LocalRecorder{}
}

func (r *LocalRecorder) RecordHit(ctx context.Context, bytesSaved int64, costSaved float64) {
	r.mu.Lock()
	r.hits++
	r.bytesSaved += bytesSaved
	r.costSaved += costSaved
	r.mu.Unlock()
}

func (r *LocalRecorder) RecordMiss(ctx context.Context) {
	r.mu.Lock()
	r.misses++
	r.mu.Unlock()
}

func (r *LocalRecorder) Snapshot(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return buildSnapshot(r.hits, r.misses, r.bytesSaved, r.costSaved), nil
}

func (r *LocalRecorder) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits, r.misses, r.bytesSaved, r.costSaved = 0, 0, 0, 0
	return nil
}

const (
	statsHitsKey   = "stats:hits"
	statsMissesKey = "stats:misses"
	statsBytesKey  = "stats:bytes_saved"
	statsCostKey   = "stats:cost_saved"
)

// RedisRecorder keeps counters in the shared backend via atomic server-side
// increments, so every process against the same cache observes one
// aggregate. Recording failures are logged and dropped; stats must never
// gate a request.
type RedisRecorder struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisRecorder shares the distributed store's client and key prefix.
func NewRedisRecorder(client *redis.Client, prefix string, logger *zap.Logger) *RedisRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRecorder{client: client, prefix: prefix, logger: logger}
}

func (r *RedisRecorder) RecordHit(ctx context.Context, bytesSaved int64, costSaved float64) {
	pipe := r.client.Pipeline()
	pipe.Incr(ctx, r.prefix+statsHitsKey)
	pipe.IncrBy(ctx, r.prefix+statsBytesKey, bytesSaved)
	pipe.IncrByFloat(ctx, r.prefix+statsCostKey, costSaved)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("shared stats update dropped", zap.Error(err))
	}
}

func (r *RedisRecorder) RecordMiss(ctx context.Context) {
	if err := r.client.Incr(ctx, r.prefix+statsMissesKey).Err(); err != nil {
		r.logger.Warn("shared stats update dropped", zap.Error(err))
	}
}

func (r *RedisRecorder) Snapshot(ctx context.Context) (Snapshot, error) {
	values, err := r.client.MGet(ctx,
		r.prefix+statsHitsKey,
		r.prefix+statsMissesKey,
		r.prefix+statsBytesKey,
		r.prefix+statsCostKey,
	).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: read shared stats: %v", ErrStorageUnavailable, err)
	}

	hits := parseCounter(values[0])
	misses := parseCounter(values[1])
	bytesSaved := parseCounter(values[2])
	costSaved := parseFloatCounter(values[3])
	return buildSnapshot(hits, misses, bytesSaved, costSaved), nil
}

func (r *RedisRecorder) Reset(ctx context.Context) error {
	err := r.client.Del(ctx,
		r.prefix+statsHitsKey,
		r.prefix+statsMissesKey,
		r.prefix+statsBytesKey,
		r.prefix+statsCostKey,
	).Err()
	if err != nil {
		return fmt.Errorf("%w: reset shared stats: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func buildSnapshot(hits, misses, bytesSaved int64, costSaved float64) Snapshot {
	snap := Snapshot{
		Hits:       hits,
		Misses:     misses,
		BytesSaved: bytesSaved,
		CostSaved:  costSaved,
	}
	if total := hits + misses; total > 0 {
		snap.HitRate = float64(hits) / float64(total)
	}
	return snap
}

func parseCounter(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseFloatCounter(v interface{}) float64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
