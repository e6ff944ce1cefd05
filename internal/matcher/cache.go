package matcher

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dl/gohighlight/internal/text"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Cache keeps compiled regex patterns across recomputations. Entries expire
// after going unused for the expiration window; evicted PCRE patterns are closed.
type Cache struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewCache creates a pattern cache with the default expiration.
func NewCache() *Cache {
	return NewCacheWithExpiration(DefaultExpiration, DefaultCleanupInterval)
}

func NewCacheWithExpiration(expiration, cleanup time.Duration) *Cache {
	c := gocache.New(expiration, cleanup)
	c.OnEvicted(func(_ string, v any) {
		if p, ok := v.(*Pattern); ok {
			p.Close()
		}
	})
	return &Cache{cache: c}
}

// Pattern returns the compiled form of a regex query, compiling on a miss.
// Compile failures are not cached so an edited pattern is retried.
func (c *Cache) Pattern(source string) (*Pattern, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cache.Get(source); ok {
		p := v.(*Pattern)
		c.cache.SetDefault(source, p)
		return p, nil
	}
	p, err := compileRegex(source)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(source, p)
	return p, nil
}

// NewCursor is NewCursor with regex compilation served from the cache.
// A nil *Cache compiles every time.
func (c *Cache) NewCursor(doc text.Document, pattern string, isRegex bool, from, to int) (Cursor, error) {
	if c == nil || !isRegex {
		return NewCursor(doc, pattern, isRegex, from, to)
	}
	p, err := c.Pattern(pattern)
	if err != nil {
		return nil, err
	}
	return newRegexCursor(doc, p, from, to), nil
}

// Len reports the number of cached patterns.
func (c *Cache) Len() int { return c.cache.ItemCount() }

// Flush drops every cached pattern.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.cache.Items() {
		c.cache.Delete(k)
	}
}
