package glyph

import (
	"image/color"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/time/rate"

	"github.com/gogpu/overlay/geom"
	"github.com/gogpu/overlay/internal/logging"
	"github.com/gogpu/overlay/paint"
	"github.com/gogpu/overlay/surface"
)

// Tier identifies which cache tier served a draw.
type Tier uint8

const (
	// TierNone means nothing was drawn (empty text).
	TierNone Tier = iota
	// TierAtlas is the prerendered atlas.
	TierAtlas
	// TierShaped is the lazily filled shaped-text cache.
	TierShaped
	// TierFallback is the uncached surface text primitive.
	TierFallback
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierAtlas:
		return "atlas"
	case TierShaped:
		return "shaped"
	case TierFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Option configures a Cache.
type Option func(*Cache)

// WithFallbackWarnInterval sets the minimum interval between fallback
// warnings. Default: one per second.
func WithFallbackWarnInterval(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.warn = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// Stats holds counters across all tiers.
type Stats struct {
	AtlasEntries int
	AtlasBytes   int
	AtlasHits    uint64
	ShapedHits   uint64
	Fallbacks    uint64
	Shaped       ShapedStats
}

// Cache is the text entry point: each lookup tries the atlas, then the
// shaped-text cache (creating the entry on a miss), then falls back to the
// surface's own text primitive, which always succeeds.
//
// Color and blend mode come from the paint on every draw; they never take
// part in cache keys. Either tier may be nil.
//
// Cache is safe for concurrent use; surfaces are not, so draw calls for one
// surface must come from one goroutine.
type Cache struct {
	atlas  *Atlas
	shaped *ShapedCache
	warn   *rate.Limiter

	atlasHits  atomic.Uint64
	shapedHits atomic.Uint64
	fallbacks  atomic.Uint64
}

// New creates a cache over the given tiers.
func New(atlas *Atlas, shaped *ShapedCache, opts ...Option) *Cache {
	c := &Cache{
		atlas:  atlas,
		shaped: shaped,
		warn:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Atlas returns the atlas tier, possibly nil.
func (c *Cache) Atlas() *Atlas {
	return c.atlas
}

// Shaped returns the shaped-text tier, possibly nil.
func (c *Cache) Shaped() *ShapedCache {
	return c.shaped
}

// resolve finds or creates the glyph for text. A nil glyph means fallback.
func (c *Cache) resolve(text string, attrs Attributes) (*Glyph, Tier) {
	key, err := NewKey(text, attrs)
	if err != nil {
		c.warnFallback(text, err)
		return nil, TierFallback
	}
	if g, ok := c.atlas.Lookup(key); ok {
		return g, TierAtlas
	}
	if c.shaped == nil {
		return nil, TierFallback
	}
	g, err := c.shaped.Get(key)
	if err != nil {
		c.warnFallback(text, err)
		return nil, TierFallback
	}
	return g, TierShaped
}

func (c *Cache) warnFallback(text string, err error) {
	if c.warn.Allow() {
		logging.Logger().Warn("glyph: falling back to uncached text",
			"text", strings.ToValidUTF8(text, "\uFFFD"), "err", err)
	}
}

// Draw draws text with its baseline-left corner at at, using p's color,
// blend mode and text attributes. It returns the tier that served it.
func (c *Cache) Draw(s surface.Surface, text string, at geom.Point, p *paint.Paint) Tier {
	return c.drawColored(s, text, at, p, textColor(p))
}

func (c *Cache) drawColored(s surface.Surface, text string, at geom.Point, p *paint.Paint, col color.RGBA) Tier {
	if text == "" {
		return TierNone
	}
	g, tier := c.resolve(text, AttributesOf(p))
	c.count(tier)
	if g != nil {
		if g.mask != nil {
			s.DrawMask(g.mask, at.Add(g.offset), col, blendOf(p))
		}
		return tier
	}
	style := textStyle(p)
	style.Color = col
	s.DrawText(strings.ToValidUTF8(text, "\uFFFD"), at, style)
	return TierFallback
}

// outlineOffsets are the eight compass directions used for outlines.
var outlineOffsets = [...]geom.Point{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// DrawOutlined draws text in fill over an outline of the given width drawn
// in outline color. Both passes reuse the same cached glyph.
func (c *Cache) DrawOutlined(s surface.Surface, text string, at geom.Point, p *paint.Paint, fill, outline color.RGBA, width float32) Tier {
	if text == "" {
		return TierNone
	}
	if width > 0 {
		w := float64(width)
		for _, o := range outlineOffsets {
			c.drawColored(s, text, geom.Pt(at.X+o.X*w, at.Y+o.Y*w), p, outline)
		}
	}
	return c.drawColored(s, text, at, p, fill)
}

// DrawAligned draws text aligned horizontally around at.
func (c *Cache) DrawAligned(s surface.Surface, text string, at geom.Point, align paint.Align, p *paint.Paint) Tier {
	if text == "" {
		return TierNone
	}
	w := float64(c.Measure(text, p).Width)
	switch align {
	case paint.AlignCenter:
		at.X -= w / 2
	case paint.AlignRight:
		at.X -= w
	}
	return c.Draw(s, text, at, p)
}

// DrawCentered draws text centered both horizontally and vertically on center.
func (c *Cache) DrawCentered(s surface.Surface, text string, center geom.Point, p *paint.Paint) Tier {
	if text == "" {
		return TierNone
	}
	m := c.Measure(text, p)
	at := geom.Pt(
		center.X-float64(m.Width)/2,
		center.Y+float64(m.Ascent-m.Descent)/2,
	)
	return c.Draw(s, text, at, p)
}

// DrawIcon draws the prerendered icon nearest to size with its top-left
// corner at at. It reports whether the icon exists.
func (c *Cache) DrawIcon(s surface.Surface, name string, size int, at geom.Point, p *paint.Paint) bool {
	img, ok := c.atlas.Icon(name, size)
	if !ok {
		return false
	}
	c.atlasHits.Add(1)
	s.DrawImage(img, at, blendOf(p))
	return true
}

// Measure returns the metrics text would have when drawn with p. Shaped
// entries are created on a miss; text that cannot be shaped is measured with
// the fallback face.
func (c *Cache) Measure(text string, p *paint.Paint) Metrics {
	if text == "" {
		return Metrics{}
	}
	attrs := AttributesOf(p)
	if g, _ := c.resolve(text, attrs); g != nil {
		return g.metrics
	}
	return fallbackMetrics(text, attrs)
}

// Contains reports whether text in p's attributes is currently cached in
// the atlas or the shaped tier. It never creates entries.
func (c *Cache) Contains(text string, p *paint.Paint) bool {
	key, err := NewKey(text, AttributesOf(p))
	if err != nil {
		return false
	}
	if _, ok := c.atlas.Lookup(key); ok {
		return true
	}
	if c.shaped == nil {
		return false
	}
	_, ok := c.shaped.Lookup(key)
	return ok
}

// BeginFrame advances the shaped tier's frame counter and runs its periodic
// staleness sweep. It returns the number of swept entries.
func (c *Cache) BeginFrame() int {
	if c.shaped == nil {
		return 0
	}
	return c.shaped.BeginFrame()
}

// Stats returns counters for all tiers.
func (c *Cache) Stats() Stats {
	st := Stats{
		AtlasEntries: c.atlas.Len(),
		AtlasBytes:   c.atlas.Bytes(),
		AtlasHits:    c.atlasHits.Load(),
		ShapedHits:   c.shapedHits.Load(),
		Fallbacks:    c.fallbacks.Load(),
	}
	if c.shaped != nil {
		st.Shaped = c.shaped.Stats()
	}
	return st
}

func (c *Cache) count(t Tier) {
	switch t {
	case TierAtlas:
		c.atlasHits.Add(1)
	case TierShaped:
		c.shapedHits.Add(1)
	case TierFallback:
		c.fallbacks.Add(1)
	}
}

// fallbackMetrics measures with basicfont's 7x13 face scaled to the size.
func fallbackMetrics(text string, attrs Attributes) Metrics {
	f := basicfont.Face7x13
	size := attrs.Size
	if !(size > 0) {
		size = float32(f.Height)
	}
	scale := size / float32(f.Height)
	sx := attrs.ScaleX
	if !(sx > 0) {
		sx = 1
	}
	n := utf8.RuneCountInString(text)
	return Metrics{
		Width:   float32(n*f.Advance) * scale * sx,
		Ascent:  float32(f.Ascent) * scale,
		Descent: float32(f.Descent) * scale,
	}
}

func textColor(p *paint.Paint) color.RGBA {
	if p == nil {
		return paint.Default(paint.CategoryText).Color
	}
	return p.Color
}

func blendOf(p *paint.Paint) paint.BlendMode {
	if p == nil {
		return paint.BlendSourceOver
	}
	return p.Blend
}

func textStyle(p *paint.Paint) paint.TextStyle {
	if p == nil {
		d := paint.Default(paint.CategoryText)
		return d.TextStyle()
	}
	return p.TextStyle()
}
