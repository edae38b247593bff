package cache

import "time"

// Entry is a cached item with metadata. Value is an opaque serialized
// payload; the facade owns its encoding.
type Entry struct {
	Key       string        `json:"key"`
	Value     []byte        `json:"value"`
	CreatedAt time.Time     `json:"created_at"`
	TTL       time.Duration `json:"ttl"`
	SizeBytes int64         `json:"size_bytes"`
	HitCount  int64         `json:"hit_count"`
}

// ExpiresAt returns the expiration instant. Entries with a non-positive TTL
// never expire client-side (the distributed backend lets the server manage
// expiry and reports TTL as zero).
func (e *Entry) ExpiresAt() time.Time {
	if e.TTL <= 0 {
		return time.Time{}
	}
	return e.CreatedAt.Add(e.TTL)
}

// Expired reports whether the entry is logically absent at the given time.
func (e *Entry) Expired(now time.Time) bool {
	expiresAt := e.ExpiresAt()
	if expiresAt.IsZero() {
		return false
	}
	return now.After(expiresAt)
}
