package main

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/bench"
	"github.com/gogpu/overlay/geom"
	"github.com/gogpu/overlay/paint"
	"github.com/gogpu/overlay/spatial"
)

// worldSize is the half-extent of the square world entities move in.
const worldSize = 4000.0

// entity is one synthetic moving marker.
type entity struct {
	pos    geom.Point
	vel    geom.Point
	team   int
	height int
	label  string
}

// world is a deterministic stand-in for the data an overlay would read
// from its host: entities wandering around the origin.
type world struct {
	rng      *rand.Rand
	entities []entity
	entries  []spatial.Entry[int]
	palette  []color.RGBA
}

func newWorld(n, teams int, seed uint64, items []string) *world {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	w := &world{
		rng:      rng,
		entities: make([]entity, n),
		entries:  make([]spatial.Entry[int], n),
		palette:  teamPalette(teams),
	}
	for i := range w.entities {
		e := &w.entities[i]
		e.pos = geom.Pt((rng.Float64()*2-1)*worldSize, (rng.Float64()*2-1)*worldSize)
		angle := rng.Float64() * 2 * math.Pi
		speed := 0.5 + rng.Float64()*3
		e.vel = geom.Pt(math.Cos(angle)*speed, math.Sin(angle)*speed)
		e.team = i % len(w.palette)
		e.height = rng.IntN(41) - 20
		if len(items) > 0 && i%7 == 0 {
			e.label = items[i%len(items)]
		}
		w.entries[i].Value = i
	}
	return w
}

// labelStyle is the text size and distance range labels are drawn with,
// taken from the atlas section of the config.
type labelStyle struct {
	size        float32
	maxDistance int
}

func newLabelStyle(cfg overlay.Config) labelStyle {
	st := labelStyle{
		size:        paint.Default(paint.CategoryText).TextSize,
		maxDistance: cfg.Atlas.MaxDistance,
	}
	if len(cfg.Atlas.Sizes) > 0 {
		st.size = cfg.Atlas.Sizes[0]
	}
	return st
}

// distance rounds d to a label value, clamped to the atlas range when one
// is configured.
func (st labelStyle) distance(d float64) int {
	n := int(d)
	if st.maxDistance >= 0 {
		n = min(n, st.maxDistance)
	}
	return max(n, 0)
}

// teamPalette spreads n hues evenly around the color wheel.
func teamPalette(n int) []color.RGBA {
	out := make([]color.RGBA, max(n, 1))
	for i := range out {
		out[i] = paint.HSV(float64(i)*360/float64(len(out)), 0.75, 0.95)
	}
	return out
}

// step advances every entity, bouncing off the world edges, and returns the
// index entries for this frame.
func (w *world) step() []spatial.Entry[int] {
	for i := range w.entities {
		e := &w.entities[i]
		e.pos = e.pos.Add(e.vel)
		if e.pos.X < -worldSize || e.pos.X > worldSize {
			e.vel.X = -e.vel.X
		}
		if e.pos.Y < -worldSize || e.pos.Y > worldSize {
			e.vel.Y = -e.vel.Y
		}
		w.entries[i].Pos = e.pos
	}
	return w.entries
}

// camera maps world positions to the screen, centered on the origin.
type camera struct {
	zoom          float64
	width, height float64
}

func (c camera) transform() geom.Transform {
	return geom.Affine(c.zoom, c.zoom, c.width/2, c.height/2)
}

// lodController eases the camera zoom toward the level the benchmark asks
// for and reports which level the view currently shows.
type lodController struct {
	zooms   map[int]float64
	current bench.Level
	target  bench.Level
	zoom    float64

	// rate is the fraction of the remaining zoom distance covered per frame.
	rate float64
}

func newLODController(levels []bench.Level, zooms []float64) *lodController {
	c := &lodController{zooms: make(map[int]float64, len(levels)), rate: 0.15}
	for i, l := range levels {
		c.zooms[l.ID] = zooms[i]
	}
	if len(levels) > 0 {
		c.current, c.target = levels[0], levels[0]
		c.zoom = zooms[0]
	}
	return c
}

// setTarget starts moving toward l.
func (c *lodController) setTarget(l bench.Level) {
	c.target = l
}

// step moves one frame closer to the target zoom. The current level flips
// to the target once the zoom is within one percent.
func (c *lodController) step() {
	want, ok := c.zooms[c.target.ID]
	if !ok {
		return
	}
	// Ease in log space so zooming in and out take equally long.
	lz, lw := math.Log(c.zoom), math.Log(want)
	c.zoom = math.Exp(lz + (lw-lz)*c.rate)
	if math.Abs(c.zoom-want) <= want*0.01 {
		c.zoom = want
		c.current = c.target
	}
}

// markerIcon draws a small diamond used as the atlas icon.
func markerIcon() image.Image {
	const size = 64
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := color.RGBA{R: 250, G: 210, B: 60, A: 255}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := math.Abs(float64(x) - size/2 + 0.5)
			dy := math.Abs(float64(y) - size/2 + 0.5)
			if dx+dy <= size/2 {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return img
}
