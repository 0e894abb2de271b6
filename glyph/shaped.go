package glyph

import (
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/gogpu/overlay/internal/logging"
	"github.com/gogpu/overlay/internal/slotcache"
)

// ShapedConfig holds configuration for ShapedCache.
type ShapedConfig struct {
	// Capacity is the maximum number of cached glyphs. Default: 1024
	Capacity int

	// SweepInterval is the number of frames between staleness sweeps.
	// Default: 60
	SweepInterval int

	// StaleFrames is how many frames an entry may go unused before a sweep
	// evicts it, independent of LRU order. Default: 300
	StaleFrames int
}

// DefaultShapedConfig returns the default configuration.
func DefaultShapedConfig() ShapedConfig {
	return ShapedConfig{
		Capacity:      1024,
		SweepInterval: 60,
		StaleFrames:   300,
	}
}

// ShapedStats holds tier-2 statistics.
type ShapedStats struct {
	Hits      uint64
	Misses    uint64
	Shaped    uint64
	Failures  uint64
	Evictions uint64
	Swept     uint64
	Len       int
	Capacity  int
}

// ShapedCache is the lazily filled tier: text absent from the atlas is shaped
// and rasterized once, then served from a bounded LRU.
//
// Recency lives in per-slot atomic generations, the key index has its own
// RWMutex, and concurrent misses on one key are collapsed so the shaper runs
// once. Cached glyphs are immutable.
//
// ShapedCache is safe for concurrent use.
type ShapedCache struct {
	config ShapedConfig
	shaper Shaper
	raster *Rasterizer
	slots  *slotcache.Cache[Key, *Glyph]
	flight singleflight.Group

	shaped   atomic.Uint64
	failures atomic.Uint64
}

// NewShapedCache creates a tier-2 cache using shaper on misses.
func NewShapedCache(shaper Shaper, config ShapedConfig) *ShapedCache {
	def := DefaultShapedConfig()
	if config.Capacity <= 0 {
		config.Capacity = def.Capacity
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = def.SweepInterval
	}
	if config.StaleFrames <= 0 {
		config.StaleFrames = def.StaleFrames
	}
	return &ShapedCache{
		config: config,
		shaper: shaper,
		raster: NewRasterizer(),
		slots: slotcache.New[Key, *Glyph](slotcache.Config{
			Capacity:    config.Capacity,
			StaleFrames: config.StaleFrames,
		}),
	}
}

// Config returns the effective configuration.
func (c *ShapedCache) Config() ShapedConfig {
	return c.config
}

// Get returns the glyph for key, shaping and rasterizing it on a miss.
// A failed creation leaves the cache untouched and returns the error.
func (c *ShapedCache) Get(key Key) (*Glyph, error) {
	if g, ok := c.slots.Get(key); ok {
		return g, nil
	}

	v, err, _ := c.flight.Do(key.flightKey(), func() (any, error) {
		// A concurrent flight may have filled the slot meanwhile.
		if g, ok := c.slots.Peek(key); ok {
			return g, nil
		}
		run, err := c.shaper.Shape(key.Text, key.Attrs)
		if err != nil {
			return nil, err
		}
		g, err := c.raster.Rasterize(run)
		if err != nil {
			return nil, err
		}
		c.shaped.Add(1)
		if evicted, ok := c.slots.Put(key, g); ok {
			logging.Logger().Debug("glyph: evicted", "text", evicted.Text)
		}
		return g, nil
	})
	if err != nil {
		c.failures.Add(1)
		return nil, err
	}
	return v.(*Glyph), nil
}

// Lookup returns the cached glyph for key without creating it.
func (c *ShapedCache) Lookup(key Key) (*Glyph, bool) {
	return c.slots.Peek(key)
}

// BeginFrame advances the frame counter and, every SweepInterval frames,
// evicts entries unused for more than StaleFrames frames. It returns the
// number of swept entries.
func (c *ShapedCache) BeginFrame() int {
	frame := c.slots.Tick()
	if frame%uint64(c.config.SweepInterval) != 0 { //nolint:gosec // validated > 0
		return 0
	}
	n := c.slots.Sweep()
	if n > 0 {
		logging.Logger().Debug("glyph: swept stale entries", "count", n, "frame", frame)
	}
	return n
}

// Len returns the number of cached glyphs.
func (c *ShapedCache) Len() int {
	return c.slots.Len()
}

// Clear drops every cached glyph.
func (c *ShapedCache) Clear() {
	c.slots.Clear()
}

// Stats returns a snapshot of tier-2 statistics.
func (c *ShapedCache) Stats() ShapedStats {
	s := c.slots.Stats()
	return ShapedStats{
		Hits:      s.Hits,
		Misses:    s.Misses,
		Shaped:    c.shaped.Load(),
		Failures:  c.failures.Load(),
		Evictions: s.Evictions,
		Swept:     s.Swept,
		Len:       s.Len,
		Capacity:  s.Capacity,
	}
}
