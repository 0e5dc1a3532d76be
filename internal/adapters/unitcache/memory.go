// Package unitcache stores compilation units between builds, in memory and optionally
// in an append-only log on disk.
package unitcache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
)

var _ ports.UnitCache = (*MemoryCache)(nil)

// MemoryCache keeps the most recently used units, keyed by resource path, with a
// secondary index by content id. Eviction is by capacity.
type MemoryCache struct {
	mu     sync.Mutex
	byPath *lru.Cache[string, *domain.CompilationUnit]
	byID   map[domain.ContentID]*domain.CompilationUnit
}

// NewMemoryCache returns a cache holding at most size units.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = domain.DefaultMemoryEntries
	}
	c := &MemoryCache{byID: make(map[domain.ContentID]*domain.CompilationUnit)}
	byPath, err := lru.NewWithEvict[string, *domain.CompilationUnit](size, c.onEvict)
	if err != nil {
		return nil, err
	}
	c.byPath = byPath
	return c, nil
}

// onEvict runs with mu held: every lru call below happens under it.
func (c *MemoryCache) onEvict(_ string, u *domain.CompilationUnit) {
	if c.byID[u.ContentID()] == u {
		delete(c.byID, u.ContentID())
	}
}

// Add stores u, replacing the entry for its resource path.
func (c *MemoryCache) Add(u *domain.CompilationUnit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(u)
}

func (c *MemoryCache) addLocked(u *domain.CompilationUnit) {
	if old, ok := c.byPath.Peek(u.ResourcePath()); ok && old != u && c.byID[old.ContentID()] == old {
		delete(c.byID, old.ContentID())
	}
	c.byPath.Add(u.ResourcePath(), u)
	c.byID[u.ContentID()] = u
}

// FindByPath returns the unit stored for path.
func (c *MemoryCache) FindByPath(path string) (*domain.CompilationUnit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byPath.Get(path)
}

// FindByContentID returns the unit for a specific source revision.
func (c *MemoryCache) FindByContentID(id domain.ContentID) (*domain.CompilationUnit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.byID[id]
	if ok {
		// Refresh recency.
		c.byPath.Get(u.ResourcePath())
	}
	return u, ok
}

// Remove drops u from both indexes. Another unit stored under the same path stays.
func (c *MemoryCache) Remove(u *domain.CompilationUnit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.byPath.Peek(u.ResourcePath()); ok && cur == u {
		c.byPath.Remove(u.ResourcePath())
	}
	if c.byID[u.ContentID()] == u {
		delete(c.byID, u.ContentID())
	}
}

// Cleanup does nothing for the memory cache.
func (c *MemoryCache) Cleanup() {}

// Len returns the number of cached units.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byPath.Len()
}

// Units returns the cached units, least recently used first.
func (c *MemoryCache) Units() []*domain.CompilationUnit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byPath.Values()
}

// Close does nothing for the memory cache.
func (c *MemoryCache) Close(_ context.Context) error { return nil }
