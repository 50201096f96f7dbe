package transform

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type chainKey struct {
	locator string
	base    int
	reverse bool
}

// CachingResolver memoizes resolved chains per (locator, base, reverse).
// Families do not change after startup, so entries only expire to bound
// memory for clients sending many distinct base versions. Failed lookups
// are not cached.
type CachingResolver struct {
	next  Resolver
	cache *ttlcache.Cache[chainKey, []Step]
}

// NewCachingResolver wraps next. A ttl of zero keeps entries forever.
func NewCachingResolver(next Resolver, ttl time.Duration) *CachingResolver {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	return &CachingResolver{
		next:  next,
		cache: ttlcache.New[chainKey, []Step](ttlcache.WithTTL[chainKey, []Step](ttl)),
	}
}

func (c *CachingResolver) Resolve(locator string, base int, reverse bool) ([]Step, error) {
	key := chainKey{locator: locator, base: base, reverse: reverse}
	if item := c.cache.Get(key); item != nil {
		return append([]Step(nil), item.Value()...), nil
	}
	steps, err := c.next.Resolve(locator, base, reverse)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, steps, ttlcache.DefaultTTL)
	return append([]Step(nil), steps...), nil
}

// Len reports the number of cached chains.
func (c *CachingResolver) Len() int { return c.cache.Len() }

// Start runs the expiry loop until Stop; without it expired entries are
// only dropped when read.
func (c *CachingResolver) Start() { go c.cache.Start() }

func (c *CachingResolver) Stop() { c.cache.Stop() }
