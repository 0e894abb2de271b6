// Package slotcache provides a bounded cache backed by a fixed slot arena.
//
// Recency is tracked with per-slot access generations taken from a shared
// atomic clock instead of a linked list, so a hit only needs the read lock:
// the index map is guarded by an RWMutex and the generation update is a
// single atomic store. Eviction picks the slot with the smallest generation.
//
// Values are written only under the write lock and never mutated afterwards,
// so readers holding the read lock never observe a torn value.
package slotcache

import (
	"sync"
	"sync/atomic"
)

// Config holds configuration for Cache.
type Config struct {
	// Capacity is the number of slots. Default: 1024
	Capacity int

	// StaleFrames is the number of frames a slot may go unused before a
	// sweep evicts it. Default: 300
	StaleFrames int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:    1024,
		StaleFrames: 300,
	}
}

type slot[K comparable, V any] struct {
	key   K
	value V
	used  bool

	// lastUse is the clock generation of the last access.
	lastUse atomic.Uint64

	// lastFrame is the frame number of the last access.
	lastFrame atomic.Uint64
}

func (s *slot[K, V]) touch(gen, frame uint64) {
	s.lastUse.Store(gen)
	s.lastFrame.Store(frame)
}

// Stats holds cache statistics.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Insertions uint64
	Evictions  uint64
	Swept      uint64
	Len        int
	Capacity   int
}

// HitRate returns hits / (hits + misses), or 0 without accesses.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a generation-counted LRU cache with frame-based staleness sweeps.
//
// Cache is safe for concurrent use.
type Cache[K comparable, V any] struct {
	config Config

	mu    sync.RWMutex
	index map[K]int32
	slots []slot[K, V]
	free  []int32

	clock atomic.Uint64
	frame atomic.Uint64

	hits       atomic.Uint64
	misses     atomic.Uint64
	insertions atomic.Uint64
	evictions  atomic.Uint64
	swept      atomic.Uint64
}

// New creates a cache with the given configuration. The slot arena is
// allocated once and never grows.
func New[K comparable, V any](config Config) *Cache[K, V] {
	def := DefaultConfig()
	if config.Capacity <= 0 {
		config.Capacity = def.Capacity
	}
	if config.StaleFrames <= 0 {
		config.StaleFrames = def.StaleFrames
	}

	c := &Cache[K, V]{
		config: config,
		index:  make(map[K]int32, config.Capacity),
		slots:  make([]slot[K, V], config.Capacity),
		free:   make([]int32, config.Capacity),
	}
	// Pop from the end hands out slot 0 first.
	for i := range c.free {
		c.free[i] = int32(config.Capacity - 1 - i) //nolint:gosec // bounded by Capacity
	}
	return c
}

// Config returns the effective configuration.
func (c *Cache[K, V]) Config() Config {
	return c.config
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	i, ok := c.index[key]
	if !ok {
		c.mu.RUnlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s := &c.slots[i]
	v := s.value
	s.touch(c.clock.Add(1), c.frame.Load())
	c.mu.RUnlock()

	c.hits.Add(1)
	return v, true
}

// Peek returns the value for key without updating recency or statistics.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i, ok := c.index[key]; ok {
		return c.slots[i].value, true
	}
	var zero V
	return zero, false
}

// Put stores value under key as the most recently used entry. If the cache
// is full the least recently used entry is evicted; its key is returned.
func (c *Cache[K, V]) Put(key K, value V) (evicted K, didEvict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.clock.Add(1)
	frame := c.frame.Load()

	if i, ok := c.index[key]; ok {
		c.slots[i].value = value
		c.slots[i].touch(gen, frame)
		return evicted, false
	}

	var i int32
	if n := len(c.free); n > 0 {
		i = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		i = c.oldestLocked()
		evicted, didEvict = c.slots[i].key, true
		delete(c.index, evicted)
		c.evictions.Add(1)
	}

	s := &c.slots[i]
	s.key = key
	s.value = value
	s.used = true
	s.touch(gen, frame)
	c.index[key] = i
	c.insertions.Add(1)
	return evicted, didEvict
}

// Delete removes key. It reports whether the key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[key]
	if !ok {
		return false
	}
	c.releaseLocked(i)
	return true
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index)
}

// Clear removes every entry. Statistics are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, i := range c.index {
		c.releaseLocked(i)
	}
}

// Tick advances the frame counter and returns the new frame number.
func (c *Cache[K, V]) Tick() uint64 {
	return c.frame.Add(1)
}

// Frame returns the current frame number.
func (c *Cache[K, V]) Frame() uint64 {
	return c.frame.Load()
}

// Sweep evicts every entry unused for more than StaleFrames frames,
// regardless of its LRU position, and returns how many were evicted.
func (c *Cache[K, V]) Sweep() int {
	frame := c.frame.Load()
	stale := uint64(c.config.StaleFrames) //nolint:gosec // validated > 0 in New
	if frame <= stale {
		return 0
	}
	threshold := frame - stale

	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for i := range c.slots {
		s := &c.slots[i]
		if s.used && s.lastFrame.Load() < threshold {
			c.releaseLocked(int32(i)) //nolint:gosec // bounded by Capacity
			n++
		}
	}
	c.swept.Add(uint64(n)) //nolint:gosec // n >= 0
	return n
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Insertions: c.insertions.Load(),
		Evictions:  c.evictions.Load(),
		Swept:      c.swept.Load(),
		Len:        c.Len(),
		Capacity:   c.config.Capacity,
	}
}

// ResetStats zeroes the hit, miss and eviction counters.
func (c *Cache[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.insertions.Store(0)
	c.evictions.Store(0)
	c.swept.Store(0)
}

// oldestLocked returns the used slot with the smallest access generation.
func (c *Cache[K, V]) oldestLocked() int32 {
	oldest := int32(-1)
	var oldestGen uint64
	for i := range c.slots {
		s := &c.slots[i]
		if !s.used {
			continue
		}
		if g := s.lastUse.Load(); oldest < 0 || g < oldestGen {
			oldest, oldestGen = int32(i), g //nolint:gosec // bounded by Capacity
		}
	}
	return oldest
}

func (c *Cache[K, V]) releaseLocked(i int32) {
	s := &c.slots[i]
	delete(c.index, s.key)
	var zeroK K
	var zeroV V
	s.key, s.value, s.used = zeroK, zeroV, false
	s.lastUse.Store(0)
	s.lastFrame.Store(0)
	c.free = append(c.free, i)
}
