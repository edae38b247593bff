// Package cache avoids redundant calls to a hosted inference provider by
// keying responses on a stable request fingerprint.
//
// Three interchangeable backends implement the Store contract:
//
//  1. MemoryStore: in-process, LRU-bounded, gone on restart.
//  2. FileStore: one file per key, atomic rename writes, survives restarts.
//  3. RedisStore: shared across processes, server-side TTL.
//
// The Cache facade ties fingerprinting, store lookup, provider invocation,
// and hit/miss accounting together:
//
//	store, _ := cache.NewStore(cfg, logger)
//	c := cache.New(store, provider, nil, cache.Options{
//	    DefaultTTL: cfg.DefaultTTL(),
//	    Prices:     cfg.Prices,
//	}, logger)
//	defer c.Close()
//
//	resp, err := c.Resolve(ctx, models.NewCompletionRequest(model, prompt, params), 0)
//
// The cache is strictly an optimization layer: storage failures fall
// through to the provider, provider failures propagate uncached, and no
// error from this package ever gates a request.
package cache
