package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const fileSuffix = ".json"

// fileRecord is the on-disk encoding of an entry. TTL travels with the
// record so a new process can judge expiry without external state.
type fileRecord struct {
	Value      []byte `json:"value"`
	CreatedAt  int64  `json:"created_at"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

// FileStore persists one file per key under a configured directory, so
// entries survive process restarts. Writes go to a temp file first and are
// renamed into place; readers never observe a partial entry, and concurrent
// writers to the same key cannot interleave. Expired or corrupted files are
// removed lazily on access and by an optional background sweep.
//
// Hit counts are process-local bookkeeping: a Get never rewrites the
// record, so the only writes that land on disk are Puts and removals and
// the last completed Put always wins.
type FileStore struct {
	dir        string
	defaultTTL time.Duration
	logger     *zap.Logger

	hitMu     sync.Mutex
	hitCounts map[string]int64

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewFileStore opens (creating if needed) a file-backed store rooted at dir.
// A positive sweepInterval starts a background pass that removes expired
// entries to bound disk usage between accesses.
func NewFileStore(dir string, defaultTTL, sweepInterval time.Duration, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		return nil, fmt.Errorf("file store: directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create %s: %w", dir, err)
	}

	s := &FileStore{
		dir:        dir,
		defaultTTL: defaultTTL,
		logger:     logger,
		hitCounts:  make(map[string]int64),
		done:       make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	if sweepInterval > 0 {
		go s.sweepLoop(ctx, sweepInterval)
	} else {
		close(s.done)
	}
	return s, nil
}

// Get reads the entry for key. Missing files are plain misses; unreadable
// or expired files are removed and reported as misses. The record itself
// is never written back on a hit.
func (s *FileStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	path := s.pathFor(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, path, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		serr := &SerializationError{Key: key, Err: err}
		s.logger.Warn("discarding corrupted cache file", zap.String("path", path), zap.Error(serr))
		_ = os.Remove(path)
		s.dropHits(key)
		return nil, false, nil
	}

	entry := rec.toEntry(key)
	if entry.Expired(time.Now()) {
		_ = os.Remove(path)
		s.dropHits(key)
		return nil, false, nil
	}

	entry.HitCount = s.bumpHits(key)
	return entry, true, nil
}

// Put atomically replaces the entry for key.
func (s *FileStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	rec := &fileRecord{
		Value:      value,
		CreatedAt:  time.Now().Unix(),
		TTLSeconds: int64(ttl / time.Second),
	}
	if err := s.writeRecord(s.pathFor(key), rec); err != nil {
		return err
	}
	s.dropHits(key)
	return nil
}

// Delete removes the entry file; an absent file is not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.pathFor(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove entry: %v", ErrStorageUnavailable, err)
	}
	s.dropHits(key)
	return nil
}

// Clear removes every entry file in the cache directory.
func (s *FileStore) Clear(ctx context.Context) error {
	names, err := s.entryFiles()
	if err != nil {
		return err
	}
	for _, name := range names {
		_ = os.Remove(filepath.Join(s.dir, name))
	}
	s.hitMu.Lock()
	s.hitCounts = make(map[string]int64)
	s.hitMu.Unlock()
	return nil
}

// Size counts entry files. Expired-but-unswept files count until accessed
// or swept.
func (s *FileStore) Size(ctx context.Context) (int, error) {
	names, err := s.entryFiles()
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Sweep removes expired and unreadable entry files, returning how many it
// reclaimed.
func (s *FileStore) Sweep(ctx context.Context) (int, error) {
	names, err := s.entryFiles()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	removed := 0
	for _, name := range names {
		select {
		case <-ctx.Done():
			return removed, ctx.Err()
		default:
		}

		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		key := strings.TrimSuffix(name, fileSuffix)
		var rec fileRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			_ = os.Remove(path)
			s.dropHits(key)
			removed++
			continue
		}
		if rec.toEntry(key).Expired(now) {
			_ = os.Remove(path)
			s.dropHits(key)
			removed++
		}
	}
	return removed, nil
}

// Close stops the background sweep.
func (s *FileStore) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

func (s *FileStore) sweepLoop(ctx context.Context, interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Sweep(ctx)
			if err != nil {
				s.logger.Warn("cache sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				s.logger.Debug("cache sweep reclaimed entries", zap.Int("removed", removed))
			}
		}
	}
}

// writeRecord writes to a temp file in the same directory and renames it
// over the target, so partial writes are never visible.
func (s *FileStore) writeRecord(path string, rec *fileRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &SerializationError{Key: strings.TrimSuffix(filepath.Base(path), fileSuffix), Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write temp file: %v", ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close temp file: %v", ErrStorageUnavailable, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: chmod temp file: %v", ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename into place: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *FileStore) pathFor(key string) string {
	return filepath.Join(s.dir, key+fileSuffix)
}

func (s *FileStore) entryFiles() ([]string, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir %s: %v", ErrStorageUnavailable, s.dir, err)
	}
	names := make([]string, 0, len(dirents))
	for _, d := range dirents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), fileSuffix) {
			continue
		}
		names = append(names, d.Name())
	}
	return names, nil
}

func (s *FileStore) bumpHits(key string) int64 {
	s.hitMu.Lock()
	defer s.hitMu.Unlock()
	s.hitCounts[key]++
	return s.hitCounts[key]
}

func (s *FileStore) dropHits(key string) {
	s.hitMu.Lock()
	delete(s.hitCounts, key)
	s.hitMu.Unlock()
}

func (r *fileRecord) toEntry(key string) *Entry {
	return &Entry{
		Key:       key,
		Value:     r.Value,
		CreatedAt: time.Unix(r.CreatedAt, 0),
		TTL:       time.Duration(r.TTLSeconds) * time.Second,
		SizeBytes: int64(len(r.Value)),
	}
}
