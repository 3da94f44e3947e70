package bitmap

import (
	"image"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of decoded images a Cache keeps by default.
const DefaultCacheSize = 32

// Cache keeps recently decoded images, keyed by image name. One cache
// belongs to one open table and is dropped with it. It is safe for
// concurrent use.
type Cache struct {
	lru *lru.Cache[string, image.Image]
}

// NewCache returns a cache holding at most size images. A size of zero or
// less selects DefaultCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, image.Image](size)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &Cache{lru: c}
}

// Get returns the cached image for name.
func (c *Cache) Get(name string) (image.Image, bool) {
	return c.lru.Get(name)
}

// Add stores img under name and reports whether an older entry was evicted.
func (c *Cache) Add(name string, img image.Image) bool {
	return c.lru.Add(name, img)
}

// Len returns the number of cached images.
func (c *Cache) Len() int { return c.lru.Len() }

// Purge drops every cached image.
func (c *Cache) Purge() { c.lru.Purge() }
