package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntry_ExpiresAt(t *testing.T) {
	created := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	e := &Entry{CreatedAt: created, TTL: 5 * time.Second}

	assert.Equal(t, created.Add(5*time.Second), e.ExpiresAt())
	assert.False(t, e.Expired(created.Add(5*time.Second)))
	assert.True(t, e.Expired(created.Add(6*time.Second)))
}

func TestEntry_ServerManagedTTLNeverExpiresLocally(t *testing.T) {
	e := &Entry{CreatedAt: time.Now().Add(-24 * time.Hour), TTL: 0}

	assert.True(t, e.ExpiresAt().IsZero())
	assert.False(t, e.Expired(time.Now()))
}
