package glyph

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/chewxy/math32"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/overlay/geom"
)

// maskPadding is the blank border kept around a mask for antialiasing.
const maskPadding = 1

// Rasterizer renders shaped runs into coverage masks using the sfnt glyph
// outlines of the run's font and x/image/vector.
//
// Rasterizer is safe for concurrent use; scratch state is pooled.
type Rasterizer struct {
	scratch sync.Pool
}

type rasterScratch struct {
	buf  sfnt.Buffer
	segs []pathSeg
	z    *vector.Rasterizer
}

// pathSeg is a transformed outline segment in run space (pixels, y down).
type pathSeg struct {
	op  sfnt.SegmentOp
	pts [3][2]float32
}

// NewRasterizer creates a rasterizer.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{
		scratch: sync.Pool{
			New: func() any {
				return &rasterScratch{segs: make([]pathSeg, 0, 256)}
			},
		},
	}
}

// Rasterize renders run into a Glyph. ScaleX stretches horizontally and
// SkewX shears (positive values lean right, like an oblique face).
func (r *Rasterizer) Rasterize(run *Run) (*Glyph, error) {
	if run == nil || run.Source == nil {
		return nil, ErrNoFont
	}
	sc := r.scratch.Get().(*rasterScratch)
	defer r.scratch.Put(sc)

	f := run.Source.outlines
	ppem := fixed.Int26_6(run.Attrs.Size * 64)
	sx, kx := run.Attrs.ScaleX, run.Attrs.SkewX
	if sx == 0 {
		sx = 1
	}

	ascent, descent := run.Ascent, run.Descent
	if ascent == 0 && descent == 0 {
		if m, err := f.Metrics(&sc.buf, ppem, xfont.HintingNone); err == nil {
			ascent = fixedToFloat(m.Ascent)
			descent = fixedToFloat(m.Descent)
		}
	}

	g := &Glyph{metrics: Metrics{
		Width:   run.Advance * sx,
		Ascent:  ascent,
		Descent: descent,
	}}

	sc.segs = sc.segs[:0]
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	transform := func(p fixed.Point26_6, ox, oy float32) [2]float32 {
		x := ox + fixedToFloat(p.X)
		y := oy + fixedToFloat(p.Y)
		tx := x*sx - kx*y
		minX, maxX = math32.Min(minX, tx), math32.Max(maxX, tx)
		minY, maxY = math32.Min(minY, y), math32.Max(maxY, y)
		return [2]float32{tx, y}
	}

	for _, sg := range run.Glyphs {
		segments, err := f.LoadGlyph(&sc.buf, sfnt.GlyphIndex(sg.ID), ppem, nil)
		if err != nil {
			return nil, fmt.Errorf("glyph: load outline %d: %w", sg.ID, err)
		}
		for _, s := range segments {
			ps := pathSeg{op: s.Op}
			n := argCount(s.Op)
			for i := 0; i < n; i++ {
				ps.pts[i] = transform(s.Args[i], sg.X, sg.Y)
			}
			sc.segs = append(sc.segs, ps)
		}
	}

	if len(sc.segs) == 0 {
		return g, nil
	}

	x0 := math32.Floor(minX) - maskPadding
	y0 := math32.Floor(minY) - maskPadding
	w := int(math32.Ceil(maxX)-x0) + maskPadding
	h := int(math32.Ceil(maxY)-y0) + maskPadding
	if w <= 0 || h <= 0 {
		return g, nil
	}

	if sc.z == nil {
		sc.z = vector.NewRasterizer(w, h)
	} else {
		sc.z.Reset(w, h)
	}
	z := sc.z
	started := false
	for _, s := range sc.segs {
		p := s.pts
		switch s.op {
		case sfnt.SegmentOpMoveTo:
			if started {
				z.ClosePath()
			}
			z.MoveTo(p[0][0]-x0, p[0][1]-y0)
			started = true
		case sfnt.SegmentOpLineTo:
			z.LineTo(p[0][0]-x0, p[0][1]-y0)
		case sfnt.SegmentOpQuadTo:
			z.QuadTo(p[0][0]-x0, p[0][1]-y0, p[1][0]-x0, p[1][1]-y0)
		case sfnt.SegmentOpCubeTo:
			z.CubeTo(p[0][0]-x0, p[0][1]-y0, p[1][0]-x0, p[1][1]-y0, p[2][0]-x0, p[2][1]-y0)
		}
	}
	if started {
		z.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	g.mask = mask
	g.offset = geom.Pt(float64(x0), float64(y0))
	return g, nil
}

func argCount(op sfnt.SegmentOp) int {
	switch op {
	case sfnt.SegmentOpQuadTo:
		return 2
	case sfnt.SegmentOpCubeTo:
		return 3
	default:
		return 1
	}
}
