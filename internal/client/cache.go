package client

import "voy.com/portfolio/pkg/dto"

// Cache maps canonical query keys to previously fetched results for one page
// session. No TTL and no eviction: the catalog changes slowly relative to a
// browsing session, so staleness is bounded by session length. Access is
// serialized by the owning controller.
type Cache struct {
	entries map[string]*dto.QueryResult
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*dto.QueryResult)}
}

func (c *Cache) Get(key string) (*dto.QueryResult, bool) {
	result, ok := c.entries[key]
	return result, ok
}

func (c *Cache) Put(key string, result *dto.QueryResult) {
	c.entries[key] = result
}

func (c *Cache) Len() int {
	return len(c.entries)
}
