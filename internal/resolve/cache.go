package resolve

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/store"
)

// Cache defaults.
const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = 5 * time.Minute
)

// Cache maps (kind, normalised name) to an id. Entries expire after a TTL
// and the least recently used ones are evicted past the size bound.
type Cache struct {
	lru *expirable.LRU[string, int64]
}

// NewCache returns a cache holding at most size entries for ttl each.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{lru: expirable.NewLRU[string, int64](size, nil, ttl)}
}

func cacheKey(kind model.Kind, name string) string {
	return string(kind) + "\x00" + model.NameKey(name)
}

// Get returns the cached id of name.
func (c *Cache) Get(kind model.Kind, name string) (int64, bool) {
	return c.lru.Get(cacheKey(kind, name))
}

// Add records the id of name.
func (c *Cache) Add(kind model.Kind, name string, id int64) {
	c.lru.Add(cacheKey(kind, name), id)
}

// Invalidate drops every entry of kind.
func (c *Cache) Invalidate(kind model.Kind) {
	prefix := string(kind) + "\x00"
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.lru.Purge()
}

type invalidating struct {
	store.EntityStore
	cache *Cache
}

// Invalidating wraps s so that every successful create, update or delete
// drops the cached names of the affected kind.
func Invalidating(s store.EntityStore, c *Cache) store.EntityStore {
	return &invalidating{EntityStore: s, cache: c}
}

func (s *invalidating) Create(ctx context.Context, kind model.Kind, fields map[string]any) (*store.Entity, error) {
	e, err := s.EntityStore.Create(ctx, kind, fields)
	if err == nil {
		s.cache.Invalidate(kind)
	}
	return e, err
}

func (s *invalidating) Update(ctx context.Context, kind model.Kind, id int64, fields map[string]any) (*store.Entity, error) {
	e, err := s.EntityStore.Update(ctx, kind, id, fields)
	if err == nil {
		s.cache.Invalidate(kind)
	}
	return e, err
}

func (s *invalidating) Delete(ctx context.Context, kind model.Kind, id int64) error {
	err := s.EntityStore.Delete(ctx, kind, id)
	if err == nil {
		s.cache.Invalidate(kind)
	}
	return err
}
