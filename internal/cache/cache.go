package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"dev.helix.promptcache/internal/config"
	"dev.helix.promptcache/internal/llm"
	"dev.helix.promptcache/internal/models"
)

// Options tunes facade behavior beyond what the store carries.
type Options struct {
	// DefaultTTL applies when Resolve is called with a non-positive TTL.
	DefaultTTL time.Duration
	// MaxPayloadBytes skips caching responses larger than this. Zero
	// disables the limit.
	MaxPayloadBytes int
	// Prices maps model IDs to per-token cost for savings accounting.
	Prices config.PriceTable
}

// Cache fronts an inference provider with a fingerprint-keyed store. It is
// the only entry point other subsystems use; construction and teardown are
// explicit, never package-level state.
//
// Concurrent misses on the same key each invoke the provider; the entry
// left behind is whichever put completed last. Single-flight deduplication
// is deliberately not provided.
type Cache struct {
	store    Store
	provider llm.Provider
	stats    Recorder
	opts     Options
	logger   *zap.Logger
}

// New wires a facade over the given store and provider. A nil stats
// recorder gets a process-local one; a nil logger logs nothing.
func New(store Store, provider llm.Provider, stats Recorder, opts Options, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if stats == nil {
		stats = NewLocalRecorder()
	}
	return &Cache{
		store:    store,
		provider: provider,
		stats:    stats,
		opts:     opts,
		logger:   logger,
	}
}

// Resolve returns the completion for req, from cache when a live entry
// exists, otherwise from the provider. Store failures fall through to the
// provider (fail-open); provider failures propagate and nothing is cached.
// A non-positive ttl uses the configured default.
func (c *Cache) Resolve(ctx context.Context, req *models.CompletionRequest, ttl time.Duration) (*models.Completion, error) {
	key, err := RequestKey(req)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = c.opts.DefaultTTL
	}

	if comp, ok := c.lookup(ctx, key); ok {
		c.stats.RecordHit(ctx, int64(len(comp.raw)), c.opts.Prices.Cost(req.Model, comp.value.InputTokens, comp.value.OutputTokens))
		c.logger.Debug("cache hit", zap.String("key", key), zap.String("model", req.Model))
		return comp.value, nil
	}

	completion, err := c.provider.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("cache miss",
		zap.String("key", key),
		zap.String("model", req.Model),
		zap.Int("tokens", completion.TotalTokens()))

	c.storeResult(ctx, key, completion, ttl)
	c.stats.RecordMiss(ctx)
	return completion, nil
}

// Invalidate drops any cached entry for the given logical request.
func (c *Cache) Invalidate(ctx context.Context, model, prompt string, params map[string]interface{}) error {
	key, err := Fingerprint(model, prompt, params)
	if err != nil {
		return err
	}
	return c.store.Delete(ctx, key)
}

// Clear empties the underlying store.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Stats returns the recorder's current snapshot.
func (c *Cache) Stats(ctx context.Context) (Snapshot, error) {
	return c.stats.Snapshot(ctx)
}

// Close releases the store.
func (c *Cache) Close() error {
	return c.store.Close()
}

type cachedCompletion struct {
	value *models.Completion
	raw   []byte
}

func (c *Cache) lookup(ctx context.Context, key string) (cachedCompletion, bool) {
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		// Fail open: an unreachable backend is a miss, never a request error.
		c.logger.Warn("cache lookup failed, falling through to provider",
			zap.String("key", key), zap.Error(err))
		return cachedCompletion{}, false
	}
	if !ok {
		return cachedCompletion{}, false
	}

	var completion models.Completion
	if err := json.Unmarshal(entry.Value, &completion); err != nil {
		serr := &SerializationError{Key: key, Err: err}
		c.logger.Warn("discarding undecodable cached completion", zap.Error(serr))
		_ = c.store.Delete(ctx, key)
		return cachedCompletion{}, false
	}
	return cachedCompletion{value: &completion, raw: entry.Value}, true
}

func (c *Cache) storeResult(ctx context.Context, key string, completion *models.Completion, ttl time.Duration) {
	payload, err := json.Marshal(completion)
	if err != nil {
		c.logger.Warn("completion not cacheable", zap.String("key", key), zap.Error(err))
		return
	}
	if c.opts.MaxPayloadBytes > 0 && len(payload) > c.opts.MaxPayloadBytes {
		c.logger.Debug("skipping oversized completion",
			zap.String("key", key), zap.Int("size_bytes", len(payload)))
		return
	}
	if err := c.store.Put(ctx, key, payload, ttl); err != nil {
		// The caller already has the result; a failed write only costs a
		// future hit.
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
