// Package cache provides the keyed, insertion-ordered stores that own every
// entity collection in the mock client.
//
// A Cache is a plain ordered map with optional least-recently-added eviction.
// A Store layers the add-or-patch contract on top of it: adding a record whose
// ID is already cached patches the existing instance in place and returns it,
// so callers holding that pointer observe the change.
package cache

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Option configures a Cache.
type Option func(*options)

type options struct {
	limit   int
	onEvict func(key any)
}

// WithLimit bounds the cache to n entries. Inserting a new key past the limit
// evicts the oldest entry. Values of zero or less mean unbounded.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithEvictHook registers fn to be called with the key of every entry dropped
// by the size limit.
func WithEvictHook(fn func(key any)) Option {
	return func(o *options) {
		o.onEvict = fn
	}
}

// Cache is an insertion-ordered map guarded by a read/write mutex. Replacing
// the value of an existing key keeps its position.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items *orderedmap.OrderedMap[K, V]
	opts  options
}

// New returns an empty Cache.
func New[K comparable, V any](opts ...Option) *Cache[K, V] {
	c := &Cache[K, V]{items: orderedmap.New[K, V]()}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// Limit reports the configured size bound, or zero when unbounded.
func (c *Cache[K, V]) Limit() int {
	return c.opts.limit
}

// Get returns the value stored under k.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items.Get(k)
}

// Has reports whether k is cached.
func (c *Cache[K, V]) Has(k K) bool {
	_, ok := c.Get(k)
	return ok
}

// Set stores v under k and reports the keys evicted to honour the limit.
func (c *Cache[K, V]) Set(k K, v V) (evicted []K) {
	c.mu.Lock()
	_, existed := c.items.Set(k, v)
	if !existed && c.opts.limit > 0 {
		for c.items.Len() > c.opts.limit {
			oldest := c.items.Oldest()
			c.items.Delete(oldest.Key)
			evicted = append(evicted, oldest.Key)
		}
	}
	c.mu.Unlock()

	if c.opts.onEvict != nil {
		for _, key := range evicted {
			c.opts.onEvict(key)
		}
	}
	return evicted
}

// Delete removes k and returns the value it held.
func (c *Cache[K, V]) Delete(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Delete(k)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items.Len()
}

// Keys returns the keys oldest first.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]K, 0, c.items.Len())
	for p := c.items.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Values returns the values oldest first.
func (c *Cache[K, V]) Values() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]V, 0, c.items.Len())
	for p := c.items.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

// Each calls fn for every entry oldest first until fn returns false. fn runs
// on a snapshot, so it may modify the cache.
func (c *Cache[K, V]) Each(fn func(K, V) bool) {
	keys := c.Keys()
	for _, k := range keys {
		v, ok := c.Get(k)
		if !ok {
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}

// Find returns the first value, oldest first, for which match is true.
func (c *Cache[K, V]) Find(match func(V) bool) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for p := c.items.Oldest(); p != nil; p = p.Next() {
		if match(p.Value) {
			return p.Value, true
		}
	}
	var zero V
	return zero, false
}

// Filter returns every value for which match is true, oldest first.
func (c *Cache[K, V]) Filter(match func(V) bool) []V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []V
	for p := c.items.Oldest(); p != nil; p = p.Next() {
		if match(p.Value) {
			out = append(out, p.Value)
		}
	}
	return out
}

// First returns the oldest value.
func (c *Cache[K, V]) First() (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p := c.items.Oldest(); p != nil {
		return p.Value, true
	}
	var zero V
	return zero, false
}

// Last returns the newest value.
func (c *Cache[K, V]) Last() (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p := c.items.Newest(); p != nil {
		return p.Value, true
	}
	var zero V
	return zero, false
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = orderedmap.New[K, V]()
}

// Clone returns an independent cache holding the same entries in the same
// order. Values are copied as-is, so pointer values are shared.
func (c *Cache[K, V]) Clone() *Cache[K, V] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := &Cache[K, V]{items: orderedmap.New[K, V](), opts: c.opts}
	for p := c.items.Oldest(); p != nil; p = p.Next() {
		out.items.Set(p.Key, p.Value)
	}
	return out
}
