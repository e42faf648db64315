package mesh

import "sync"

// Cache is a concurrency-safe store of finalized meshes keyed by name.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*Mesh
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]*Mesh)}
}

// Get returns the cached mesh for name.
func (c *Cache) Get(name string) (*Mesh, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.items[name]
	return m, ok
}

// Put stores m unless a mesh with the same name is already cached, and
// returns whichever mesh ends up cached.
func (c *Cache) Put(m *Mesh) *Mesh {
	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[m.Name]; ok {
		return existing
	}
	c.items[m.Name] = m
	return m
}

// Len returns the number of cached meshes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
