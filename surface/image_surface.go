// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/overlay/geom"
	"github.com/gogpu/overlay/paint"
)

// circleSegments is the polygon resolution used to approximate circles.
const circleSegments = 32

// ImageSurface is a CPU-based surface that renders to an *image.RGBA.
//
// It rasterizes lines and circles with golang.org/x/image/vector and draws
// fallback text with the 7x13 bitmap face from x/image/font/basicfont, which
// has a glyph for every rune it is asked for. It is a reference surface for
// tools and visual tests, not a production renderer.
//
// Blend modes other than BlendCopy are composited as source-over.
//
// Example:
//
//	s := surface.NewImageSurface(800, 600)
//	s.Clear(color.Black)
//	s.DrawCircle(geom.Circle{Center: geom.Pt(400, 300), Radius: 50}, key)
//	_ = s.SavePNG("frame.png")
type ImageSurface struct {
	width  int
	height int
	img    *image.RGBA

	// z is reused across draw calls; Reset is cheap compared to allocation.
	z *vector.Rasterizer
}

// NewImageSurface creates a new CPU-based surface with the given dimensions.
func NewImageSurface(width, height int) *ImageSurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	return &ImageSurface{
		width:  width,
		height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		z:      vector.NewRasterizer(width, height),
	}
}

// Width returns the surface width.
func (s *ImageSurface) Width() int {
	return s.width
}

// Height returns the surface height.
func (s *ImageSurface) Height() int {
	return s.height
}

// Image returns the backing image. It is not a copy.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// Clear fills the entire surface with the given color.
func (s *ImageSurface) Clear(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// SavePNG writes the surface contents to a PNG file.
func (s *ImageSurface) SavePNG(path string) error {
	// #nosec G304 -- output path is provided by the user
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("surface: create %s: %w", path, err)
	}
	if err := png.Encode(f, s.img); err != nil {
		_ = f.Close()
		return fmt.Errorf("surface: encode %s: %w", path, err)
	}
	return f.Close()
}

// DrawPoints implements Surface. Each point is a square of the stroke width
// (at least one pixel) centered on the point.
func (s *ImageSurface) DrawPoints(pts []geom.Point, style paint.StyleKey) {
	if len(pts) == 0 {
		return
	}
	src := uniform(style.Color)
	op := drawOp(style.Blend)
	half := math.Max(float64(style.Width()), 1) / 2
	for _, p := range pts {
		r := image.Rect(
			int(math.Floor(p.X-half)), int(math.Floor(p.Y-half)),
			int(math.Ceil(p.X+half)), int(math.Ceil(p.Y+half)),
		)
		draw.Draw(s.img, r, src, image.Point{}, op)
	}
}

// DrawLines implements Surface. All segments are rasterized in one pass.
func (s *ImageSurface) DrawLines(segs []geom.Segment, style paint.StyleKey) {
	if len(segs) == 0 {
		return
	}
	half := math.Max(float64(style.Width()), 1) / 2

	s.z.Reset(s.width, s.height)
	for _, seg := range segs {
		s.addQuad(seg, half)
	}
	s.z.DrawOp = drawOp(style.Blend)
	s.z.Draw(s.img, s.img.Bounds(), uniform(style.Color), image.Point{})
}

// DrawCircle implements Surface.
func (s *ImageSurface) DrawCircle(c geom.Circle, style paint.StyleKey) {
	if !(c.Radius > 0) {
		return
	}
	s.z.Reset(s.width, s.height)
	switch style.Mode {
	case paint.ModeFill:
		s.addPolygon(c.Center, c.Radius, false)
	default:
		half := math.Max(float64(style.Width()), 1) / 2
		s.addPolygon(c.Center, c.Radius+half, false)
		if inner := c.Radius - half; inner > 0 && style.Mode == paint.ModeStroke {
			// Opposite winding cancels coverage inside the ring.
			s.addPolygon(c.Center, inner, true)
		}
	}
	s.z.DrawOp = drawOp(style.Blend)
	s.z.Draw(s.img, s.img.Bounds(), uniform(style.Color), image.Point{})
}

// DrawMask implements Surface.
func (s *ImageSurface) DrawMask(mask *image.Alpha, at geom.Point, c color.RGBA, blend paint.BlendMode) {
	if mask == nil {
		return
	}
	b := mask.Bounds()
	origin := image.Pt(int(math.Round(at.X)), int(math.Round(at.Y)))
	r := image.Rectangle{Min: origin, Max: origin.Add(b.Size())}
	draw.DrawMask(s.img, r, uniform(c), image.Point{}, mask, b.Min, drawOp(blend))
}

// DrawImage implements Surface.
func (s *ImageSurface) DrawImage(img image.Image, at geom.Point, blend paint.BlendMode) {
	if img == nil {
		return
	}
	b := img.Bounds()
	origin := image.Pt(int(math.Round(at.X)), int(math.Round(at.Y)))
	draw.Draw(s.img, image.Rectangle{Min: origin, Max: origin.Add(b.Size())}, img, b.Min, drawOp(blend))
}

// DrawText implements Surface using the fixed-size basicfont face. The
// requested size is ignored: this is the uncached path of last resort.
func (s *ImageSurface) DrawText(text string, at geom.Point, style paint.TextStyle) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  s.img,
		Src:  uniform(style.Color),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(at.X * 64), Y: fixed.Int26_6(at.Y * 64)},
	}
	d.DrawString(text)
}

// addQuad adds the rectangle covering a thick segment.
func (s *ImageSurface) addQuad(seg geom.Segment, half float64) {
	dx := seg.B.X - seg.A.X
	dy := seg.B.Y - seg.A.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		dx, dy, l = 1, 0, 1
	}
	nx := -dy / l * half
	ny := dx / l * half

	s.z.MoveTo(float32(seg.A.X+nx), float32(seg.A.Y+ny))
	s.z.LineTo(float32(seg.B.X+nx), float32(seg.B.Y+ny))
	s.z.LineTo(float32(seg.B.X-nx), float32(seg.B.Y-ny))
	s.z.LineTo(float32(seg.A.X-nx), float32(seg.A.Y-ny))
	s.z.ClosePath()
}

// addPolygon adds a regular polygon approximating a circle.
func (s *ImageSurface) addPolygon(c geom.Point, r float64, reverse bool) {
	step := 2 * math.Pi / circleSegments
	if reverse {
		step = -step
	}
	s.z.MoveTo(float32(c.X+r), float32(c.Y))
	for i := 1; i < circleSegments; i++ {
		a := float64(i) * step
		s.z.LineTo(float32(c.X+r*math.Cos(a)), float32(c.Y+r*math.Sin(a)))
	}
	s.z.ClosePath()
}

// uniform converts a straight-alpha paint color into a source image.
func uniform(c color.RGBA) *image.Uniform {
	return image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
}

func drawOp(b paint.BlendMode) draw.Op {
	if b == paint.BlendCopy {
		return draw.Src
	}
	return draw.Over
}
