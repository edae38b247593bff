package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore(10, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", []byte("Paris"), 0))

	entry, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("Paris"), entry.Value)
	assert.Equal(t, time.Minute, entry.TTL) // default TTL applied
	assert.Equal(t, int64(5), entry.SizeBytes)
	assert.Equal(t, int64(1), entry.HitCount)

	entry, ok, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), entry.HitCount)
}

func TestMemoryStore_GetAbsent(t *testing.T) {
	s := NewMemoryStore(10, time.Minute, nil)

	entry, ok, err := s.Get(context.Background(), "never-stored")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, entry)
}

func TestMemoryStore_LazyExpiration(t *testing.T) {
	s := NewMemoryStore(10, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", []byte("v"), 20*time.Millisecond))

	_, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Discovery removed the entry physically as well.
	n, err := s.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryStore_LRUEviction(t *testing.T) {
	s := NewMemoryStore(2, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "A", []byte("a"), 0))
	require.NoError(t, s.Put(ctx, "B", []byte("b"), 0))
	require.NoError(t, s.Put(ctx, "C", []byte("c"), 0))

	_, ok, _ := s.Get(ctx, "A")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok, _ = s.Get(ctx, "B")
	assert.True(t, ok)
	_, ok, _ = s.Get(ctx, "C")
	assert.True(t, ok)

	n, err := s.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryStore_GetRefreshesRecency(t *testing.T) {
	s := NewMemoryStore(2, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "A", []byte("a"), 0))
	require.NoError(t, s.Put(ctx, "B", []byte("b"), 0))

	// Touch A so B becomes the LRU victim.
	_, ok, _ := s.Get(ctx, "A")
	require.True(t, ok)

	require.NoError(t, s.Put(ctx, "C", []byte("c"), 0))

	_, ok, _ = s.Get(ctx, "A")
	assert.True(t, ok)
	_, ok, _ = s.Get(ctx, "B")
	assert.False(t, ok)
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	s := NewMemoryStore(10, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("old"), 0))
	require.NoError(t, s.Put(ctx, "k", []byte("new"), 0))

	entry, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), entry.Value)

	n, _ := s.Size(ctx)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_DeleteIdempotent(t *testing.T) {
	s := NewMemoryStore(10, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("v"), 0))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	_, ok, _ := s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStore_Clear(t *testing.T) {
	s := NewMemoryStore(10, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Put(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0))
	}
	require.NoError(t, s.Clear(ctx))

	n, err := s.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore(64, time.Minute, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", i%32)
				_ = s.Put(ctx, key, []byte("v"), 0)
				_, _, _ = s.Get(ctx, key)
				if i%10 == 0 {
					_ = s.Delete(ctx, key)
				}
			}
		}(g)
	}
	wg.Wait()

	n, err := s.Size(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, n, 64)
}
