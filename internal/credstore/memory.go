package credstore

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemorySize bounds a Memory store created with a non-positive size.
const DefaultMemorySize = 10000

type memoryEntry struct {
	cookies   []storedCookie
	expiresAt time.Time
}

// Memory is an in-process Store backed by a size-bounded LRU. The LRU
// drops entries older than the store's ttl in the background; a shorter
// per-entry ttl passed to Save is enforced on Load.
type Memory struct {
	cache *expirable.LRU[string, memoryEntry]
	now   func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty store holding at most size visitors for at
// most ttl each. A non-positive ttl keeps entries until they are evicted
// by size.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &Memory{
		cache: expirable.NewLRU[string, memoryEntry](size, nil, ttl),
		now:   time.Now,
	}
}

func (m *Memory) Load(_ context.Context, visitorID string) ([]*http.Cookie, error) {
	e, ok := m.cache.Get(visitorID)
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.cache.Remove(visitorID)
		return nil, ErrNotFound
	}
	return fromStored(e.cookies), nil
}

// Save replaces the visitor's cookies. Saving an empty cookie list deletes
// the entry.
func (m *Memory) Save(_ context.Context, visitorID string, cookies []*http.Cookie, ttl time.Duration) error {
	stored := toStored(cookies)
	if len(stored) == 0 {
		m.cache.Remove(visitorID)
		return nil
	}

	e := memoryEntry{cookies: stored}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.cache.Add(visitorID, e)
	return nil
}

func (m *Memory) Delete(_ context.Context, visitorID string) error {
	m.cache.Remove(visitorID)
	return nil
}

// Len reports the number of stored visitors.
func (m *Memory) Len() int {
	return m.cache.Len()
}
