package overlay

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/overlay/batch"
	"github.com/gogpu/overlay/geom"
	"github.com/gogpu/overlay/glyph"
	"github.com/gogpu/overlay/internal/logging"
	"github.com/gogpu/overlay/paint"
	"github.com/gogpu/overlay/profile"
	"github.com/gogpu/overlay/spatial"
	"github.com/gogpu/overlay/surface"
)

// Profiled section names recorded by Pipeline.
const (
	SectionRebuild = "rebuild"
	SectionCull    = "cull"
	SectionFlush   = "flush"
)

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	shaper   glyph.Shaper
	profiler *profile.Profiler
	icons    map[string]image.Image
}

// WithShaper replaces the default go-text shaper over the Go fonts.
func WithShaper(s glyph.Shaper) Option {
	return func(o *options) {
		o.shaper = s
	}
}

// WithProfiler shares an existing profiler instead of creating one from
// the profile section of the config.
func WithProfiler(p *profile.Profiler) Option {
	return func(o *options) {
		o.profiler = p
	}
}

// WithIcons adds icons to the atlas, rendered at every configured icon size.
func WithIcons(icons map[string]image.Image) Option {
	return func(o *options) {
		o.icons = icons
	}
}

// Pipeline wires the overlay services for one render loop. T is the
// caller's entity handle type.
//
// A frame runs:
//
//	p.BeginFrame()
//	for _, e := range p.Cull(view, margin) {
//		// draw through p.Batcher(), p.Paints() and p.Glyphs()
//	}
//	err := p.EndFrame(surf)
//
// Rebuild may run on another goroutine. Everything else belongs to the
// render goroutine.
type Pipeline[T any] struct {
	cfg     Config
	index   *spatial.Index[T]
	batcher *batch.Batcher
	paints  *paint.Pool
	glyphs  *glyph.Cache
	prof    *profile.Profiler

	visible []T
}

// New builds every service from cfg. When the atlas is enabled it is
// prerendered before New returns; a build that exceeds the configured
// timeout keeps the entries rendered so far. Canceling ctx aborts New.
func New[T any](ctx context.Context, cfg Config, opts ...Option) (*Pipeline[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.shaper == nil {
		book, err := glyph.DefaultFontBook()
		if err != nil {
			return nil, fmt.Errorf("overlay: load fonts: %w", err)
		}
		o.shaper = glyph.NewGoTextShaper(book)
	}
	if o.profiler == nil {
		o.profiler = profile.New(
			profile.WithEnabled(cfg.Profile.Enabled),
			profile.WithWindow(cfg.Profile.Window),
		)
	}

	var atlas *glyph.Atlas
	if cfg.Atlas.Enabled {
		var err error
		atlas, err = buildAtlas(ctx, &cfg, o.icons, o.shaper)
		if err != nil {
			return nil, err
		}
	}

	shaped := glyph.NewShapedCache(o.shaper, cfg.ShapedConfig())
	glyphs := glyph.New(atlas, shaped, glyph.WithFallbackWarnInterval(cfg.Glyph.FallbackWarnInterval.Std()))

	p := &Pipeline[T]{
		cfg:     cfg,
		index:   spatial.New[T](spatial.WithPointRadius(cfg.Spatial.PointRadius)),
		batcher: batch.New(batch.WithInitialCapacity(cfg.Batch.InitialCapacity)),
		paints:  paint.NewPool(paint.WithMaxIdle(cfg.Paint.MaxIdle), paint.WithWarmup(cfg.Paint.Warmup)),
		glyphs:  glyphs,
		prof:    o.profiler,
	}
	logging.Logger().Info("overlay: pipeline ready",
		"atlas_entries", atlas.Len(), "atlas_icons", atlas.Icons(),
		"shaped_capacity", cfg.Glyph.Capacity)
	return p, nil
}

func buildAtlas(ctx context.Context, cfg *Config, icons map[string]image.Image, shaper glyph.Shaper) (*glyph.Atlas, error) {
	buildCtx := ctx
	if t := cfg.Atlas.BuildTimeout.Std(); t > 0 {
		var cancel context.CancelFunc
		buildCtx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	ac := cfg.AtlasConfig()
	ac.Icons = icons
	atlas, err := glyph.BuildAtlas(buildCtx, ac, shaper)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("overlay: build atlas: %w", ctx.Err())
		}
		logging.Logger().Warn("overlay: atlas build timed out, continuing with partial atlas",
			"entries", atlas.Len(), "err", err)
	}
	return atlas, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline[T]) Config() Config { return p.cfg }

// Index returns the entity index.
func (p *Pipeline[T]) Index() *spatial.Index[T] { return p.index }

// Batcher returns the draw batcher.
func (p *Pipeline[T]) Batcher() *batch.Batcher { return p.batcher }

// Paints returns the paint pool.
func (p *Pipeline[T]) Paints() *paint.Pool { return p.paints }

// Glyphs returns the text cache.
func (p *Pipeline[T]) Glyphs() *glyph.Cache { return p.glyphs }

// Profiler returns the profiler.
func (p *Pipeline[T]) Profiler() *profile.Profiler { return p.prof }

// Rebuild replaces the indexed entities with their screen positions under
// transform.
func (p *Pipeline[T]) Rebuild(entities []spatial.Entry[T], transform geom.Transform) {
	defer p.prof.BeginSection(SectionRebuild).End()
	p.index.Rebuild(entities, transform)
}

// BeginFrame marks a frame boundary for the profiler and advances the text
// cache's frame clock.
func (p *Pipeline[T]) BeginFrame() {
	p.prof.BeginFrame()
	if evicted := p.glyphs.BeginFrame(); evicted > 0 {
		logging.Logger().Debug("overlay: swept stale glyphs", "evicted", evicted)
	}
}

// Cull returns the entities whose envelope intersects view expanded by
// margin. The slice is reused by the next call.
func (p *Pipeline[T]) Cull(view geom.Rect, margin float64) []T {
	defer p.prof.BeginSection(SectionCull).End()
	clear(p.visible)
	p.visible = p.visible[:0]
	p.index.Visit(view, margin, func(v T) bool {
		p.visible = append(p.visible, v)
		return true
	})
	return p.visible
}

// CullView culls against the configured screen size and margin.
func (p *Pipeline[T]) CullView() []T {
	view := geom.RectXYWH(0, 0, float64(p.cfg.View.Width), float64(p.cfg.View.Height))
	return p.Cull(view, p.cfg.View.Margin)
}

// EndFrame flushes every pending batch to s. A nil s flushes to the surface
// bound with Batcher().Begin.
func (p *Pipeline[T]) EndFrame(s surface.Surface) error {
	defer p.prof.BeginSection(SectionFlush).End()
	if err := p.batcher.Flush(s); err != nil {
		return fmt.Errorf("overlay: end frame: %w", err)
	}
	return nil
}

// Stats is a snapshot of every service's counters.
type Stats struct {
	Indexed int
	Visible int
	Batch   batch.Stats
	Glyphs  glyph.Stats
	Paints  paint.Stats
	Frame   profile.FrameStats
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline[T]) Stats() Stats {
	return Stats{
		Indexed: p.index.Len(),
		Visible: len(p.visible),
		Batch:   p.batcher.Stats(),
		Glyphs:  p.glyphs.Stats(),
		Paints:  p.paints.Stats(),
		Frame:   p.prof.Frame(),
	}
}
