package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryStore holds entries in process memory, bounded by maxEntries with
// least-recently-used eviction. Recency is updated on both get-hits and
// puts. All structural mutation happens under a single mutex; entries do
// not survive a process restart.
type MemoryStore struct {
	mu         sync.Mutex
	maxEntries int
	defaultTTL time.Duration
	order      *list.List // front = most recently used
	items      map[string]*list.Element
	logger     *zap.Logger
}

// NewMemoryStore creates an in-process store capped at maxEntries.
func NewMemoryStore(maxEntries int, defaultTTL time.Duration, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		order:      list.New(),
		items:      make(map[string]*list.Element),
		logger:     logger,
	}
}

// Get returns the live entry for key, refreshing its recency and hit count.
// Expired entries are removed on discovery and reported as misses.
func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}

	entry := elem.Value.(*Entry)
	if entry.Expired(time.Now()) {
		s.removeLocked(elem, entry.Key)
		return nil, false, nil
	}

	entry.HitCount++
	s.order.MoveToFront(elem)

	snapshot := *entry
	return &snapshot, true, nil
}

// Put stores value under key, evicting the least-recently-used entry when
// the store is full.
func (s *MemoryStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	entry := &Entry{
		Key:       key,
		Value:     value,
		CreatedAt: time.Now(),
		TTL:       ttl,
		SizeBytes: int64(len(value)),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		elem.Value = entry
		s.order.MoveToFront(elem)
		return nil
	}

	s.items[key] = s.order.PushFront(entry)

	for len(s.items) > s.maxEntries {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		evicted := oldest.Value.(*Entry)
		s.removeLocked(oldest, evicted.Key)
		s.logger.Debug("evicted least-recently-used entry",
			zap.String("key", evicted.Key),
			zap.Int64("size_bytes", evicted.SizeBytes))
	}
	return nil
}

// Delete removes key if present; deleting an absent key is a no-op.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.items[key]; ok {
		s.removeLocked(elem, key)
	}
	return nil
}

// Clear drops every entry.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.Init()
	s.items = make(map[string]*list.Element)
	return nil
}

// Size returns the number of entries currently held. Expired-but-unswept
// entries count until the next access discovers them.
func (s *MemoryStore) Size(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

// Close releases nothing; the store lives and dies with its process.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) removeLocked(elem *list.Element, key string) {
	s.order.Remove(elem)
	delete(s.items, key)
}
