package glyph

import (
	"context"
	"image"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/remeh/sizedwaitgroup"
	"golang.org/x/image/draw"

	"github.com/gogpu/overlay/internal/logging"
)

// DistanceLabel formats a distance the way the atlas prerenders it.
func DistanceLabel(d int) string {
	return strconv.Itoa(d) + "m"
}

// HeightLabel formats a height difference the way the atlas prerenders it.
// Positive values carry an explicit plus sign.
func HeightLabel(h int) string {
	if h > 0 {
		return "+" + strconv.Itoa(h) + "m"
	}
	return strconv.Itoa(h) + "m"
}

// AtlasConfig is the bounded vocabulary prerendered at startup.
type AtlasConfig struct {
	// Styles lists the attribute sets every text entry is rendered in.
	Styles []Attributes

	// MaxDistance bounds distance labels: DistanceLabel(d) for d in
	// [0, MaxDistance]. Negative disables distance labels.
	MaxDistance int

	// MaxHeight bounds height labels: HeightLabel(h) for h in
	// [-MaxHeight, MaxHeight]. Negative disables height labels.
	MaxHeight int

	// Items is a fixed catalog of names, e.g. item or marker labels.
	Items []string

	// Icons are source images rendered at each of IconSizes (pixels, the
	// longer edge).
	Icons     map[string]image.Image
	IconSizes []int

	// Workers bounds prerender parallelism. Default: runtime.NumCPU().
	Workers int
}

type iconKey struct {
	name string
	size int
}

// Atlas is the prerendered tier: immutable after BuildAtlas and never
// evicted. Lookups are a map read and need no locking.
type Atlas struct {
	glyphs    map[Key]*Glyph
	icons     map[iconKey]*image.RGBA
	iconSizes map[string][]int
	failed    int
}

// BuildAtlas shapes and rasterizes the configured vocabulary in parallel.
// A failing entry is logged and skipped; it will be served by a lower tier.
// BuildAtlas returns ctx.Err() if the context is canceled before all work is
// scheduled, together with the partially built atlas.
func BuildAtlas(ctx context.Context, cfg AtlasConfig, shaper Shaper) (*Atlas, error) {
	start := time.Now()
	a := &Atlas{
		glyphs:    make(map[Key]*Glyph),
		icons:     make(map[iconKey]*image.RGBA),
		iconSizes: make(map[string][]int),
	}

	var texts []string
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			texts = append(texts, s)
		}
	}
	for d := 0; d <= cfg.MaxDistance; d++ {
		add(DistanceLabel(d))
	}
	for h := -cfg.MaxHeight; h <= cfg.MaxHeight; h++ {
		add(HeightLabel(h))
	}
	for _, item := range cfg.Items {
		add(item)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	raster := NewRasterizer()

	var (
		mu  sync.Mutex
		err error
	)
	wg := sizedwaitgroup.New(workers)

schedule:
	for _, style := range cfg.Styles {
		for _, text := range texts {
			if err = acquire(ctx, &wg); err != nil {
				break schedule
			}
			go func(text string, style Attributes) {
				defer wg.Done()
				key, g, gerr := render(shaper, raster, text, style)
				mu.Lock()
				defer mu.Unlock()
				if gerr != nil {
					a.failed++
					logging.Logger().Warn("glyph: atlas entry skipped", "text", text, "err", gerr)
					return
				}
				a.glyphs[key] = g
			}(text, style)
		}
	}

	if err == nil {
		for name, img := range cfg.Icons {
			if img == nil {
				continue
			}
			for _, size := range cfg.IconSizes {
				if size <= 0 {
					continue
				}
				if err = acquire(ctx, &wg); err != nil {
					break
				}
				go func(name string, img image.Image, size int) {
					defer wg.Done()
					scaled := scaleIcon(img, size)
					mu.Lock()
					defer mu.Unlock()
					a.icons[iconKey{name, size}] = scaled
					a.iconSizes[name] = append(a.iconSizes[name], size)
				}(name, img, size)
			}
			if err != nil {
				break
			}
		}
	}
	wg.Wait()

	logging.Logger().Info("glyph: atlas built",
		"glyphs", len(a.glyphs), "icons", len(a.icons), "failed", a.failed,
		"elapsed", time.Since(start))
	return a, err
}

// acquire takes a worker slot. A canceled context always wins, even when a
// slot is free.
func acquire(ctx context.Context, wg *sizedwaitgroup.SizedWaitGroup) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wg.AddWithContext(ctx)
}

// render shapes and rasterizes one entry.
func render(shaper Shaper, raster *Rasterizer, text string, attrs Attributes) (Key, *Glyph, error) {
	key, err := NewKey(text, attrs)
	if err != nil {
		return Key{}, nil, err
	}
	run, err := shaper.Shape(key.Text, key.Attrs)
	if err != nil {
		return Key{}, nil, err
	}
	g, err := raster.Rasterize(run)
	if err != nil {
		return Key{}, nil, err
	}
	return key, g, nil
}

// scaleIcon resizes img so its longer edge is size pixels.
func scaleIcon(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	w, h := size, size
	if b.Dx() > b.Dy() && b.Dx() > 0 {
		h = max(1, size*b.Dy()/b.Dx())
	} else if b.Dy() > 0 {
		w = max(1, size*b.Dx()/b.Dy())
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Lookup returns the prerendered glyph for key.
func (a *Atlas) Lookup(key Key) (*Glyph, bool) {
	if a == nil {
		return nil, false
	}
	g, ok := a.glyphs[key]
	return g, ok
}

// Icon returns the icon prerendered at the discrete size nearest to size.
func (a *Atlas) Icon(name string, size int) (*image.RGBA, bool) {
	if a == nil {
		return nil, false
	}
	if img, ok := a.icons[iconKey{name, size}]; ok {
		return img, true
	}
	best, bestDiff := -1, 0
	for _, s := range a.iconSizes[name] {
		diff := s - size
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < bestDiff || (diff == bestDiff && s > best) {
			best, bestDiff = s, diff
		}
	}
	if best < 0 {
		return nil, false
	}
	return a.icons[iconKey{name, best}], true
}

// Len returns the number of prerendered text entries.
func (a *Atlas) Len() int {
	if a == nil {
		return 0
	}
	return len(a.glyphs)
}

// Icons returns the number of prerendered icon images.
func (a *Atlas) Icons() int {
	if a == nil {
		return 0
	}
	return len(a.icons)
}

// Failed returns how many text entries could not be prerendered.
func (a *Atlas) Failed() int {
	if a == nil {
		return 0
	}
	return a.failed
}

// Bytes returns the approximate memory held by the atlas.
func (a *Atlas) Bytes() int {
	if a == nil {
		return 0
	}
	n := 0
	for _, g := range a.glyphs {
		n += g.Bytes()
	}
	for _, img := range a.icons {
		n += len(img.Pix)
	}
	return n
}
