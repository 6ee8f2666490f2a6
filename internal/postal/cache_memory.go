package postal

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryCache is a process-local Cache used when Redis is not configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, cep string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[cep]
	if !ok || !c.now().Before(e.expiresAt) {
		return Entry{}, false, nil
	}
	return copyEntry(e.entry), true, nil
}

func (c *MemoryCache) Set(_ context.Context, cep string, entry Entry, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cep] = memoryEntry{entry: copyEntry(entry), expiresAt: c.now().Add(ttl)}
	return nil
}

func copyEntry(e Entry) Entry {
	if e.Address != nil {
		addr := *e.Address
		e.Address = &addr
	}
	return e
}
