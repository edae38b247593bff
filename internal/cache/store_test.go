package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.helix.promptcache/internal/config"
)

func TestNewStore_BackendSelection(t *testing.T) {
	cfg := config.Default()
	cfg.SweepInterval = 0

	cfg.Backend = config.BackendMemory
	s, err := NewStore(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	require.NoError(t, s.Close())

	cfg.Backend = config.BackendFile
	cfg.Directory = t.TempDir()
	s, err = NewStore(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	require.NoError(t, s.Close())

	// Client construction is lazy; no server needs to be reachable here.
	cfg.Backend = config.BackendDistributed
	s, err = NewStore(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())
}

func TestNewStore_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "tape"

	_, err := NewStore(cfg, nil)
	require.Error(t, err)
}

func TestNewStore_FileBackendNeedsDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendFile
	cfg.Directory = ""
	cfg.SweepInterval = time.Minute

	_, err := NewStore(cfg, nil)
	require.Error(t, err)
}
