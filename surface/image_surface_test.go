package surface

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/gogpu/overlay/geom"
	"github.com/gogpu/overlay/paint"
)

var _ Surface = (*ImageSurface)(nil)

var red = color.RGBA{R: 255, A: 255}

func strokeKey(c color.RGBA, width float32) paint.StyleKey {
	return paint.StyleKey{Color: c, WidthBucket: paint.WidthBucket(width), Mode: paint.ModeStroke}
}

func TestNewImageSurfaceClampsSize(t *testing.T) {
	s := NewImageSurface(0, -5)
	if s.Width() != 1 || s.Height() != 1 {
		t.Errorf("size = %dx%d, want 1x1", s.Width(), s.Height())
	}
}

func TestImageSurfacePoints(t *testing.T) {
	s := NewImageSurface(20, 20)
	s.DrawPoints([]geom.Point{geom.Pt(10, 10)}, strokeKey(red, 4))

	if got := s.Image().RGBAAt(10, 10); got != red {
		t.Errorf("center pixel = %v, want %v", got, red)
	}
	if got := s.Image().RGBAAt(0, 0); got.A != 0 {
		t.Errorf("far pixel = %v, want transparent", got)
	}
}

func TestImageSurfaceLines(t *testing.T) {
	s := NewImageSurface(40, 20)
	s.DrawLines([]geom.Segment{{A: geom.Pt(2, 10), B: geom.Pt(38, 10)}}, strokeKey(red, 4))

	if got := s.Image().RGBAAt(20, 10); got.R < 250 || got.A < 250 {
		t.Errorf("pixel on line = %v, want red", got)
	}
	if got := s.Image().RGBAAt(20, 2); got.A != 0 {
		t.Errorf("pixel off line = %v, want transparent", got)
	}
}

func TestImageSurfaceCircleModes(t *testing.T) {
	tests := []struct {
		name       string
		mode       paint.Mode
		centerSet  bool
		ringPixelX int
	}{
		{"fill", paint.ModeFill, true, 29},
		{"stroke", paint.ModeStroke, false, 30},
		{"fill and stroke", paint.ModeFillAndStroke, true, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewImageSurface(40, 40)
			key := strokeKey(red, 4)
			key.Mode = tt.mode
			s.DrawCircle(geom.Circle{Center: geom.Pt(20, 20), Radius: 10}, key)

			center := s.Image().RGBAAt(20, 20)
			if (center.A > 0) != tt.centerSet {
				t.Errorf("center alpha = %d, want set=%v", center.A, tt.centerSet)
			}
			if ring := s.Image().RGBAAt(tt.ringPixelX, 20); ring.A == 0 {
				t.Errorf("pixel at x=%d is transparent, want covered", tt.ringPixelX)
			}
		})
	}
}

func TestImageSurfaceMaskUsesStraightAlpha(t *testing.T) {
	s := NewImageSurface(4, 4)
	mask := image.NewAlpha(image.Rect(0, 0, 2, 2))
	for i := range mask.Pix {
		mask.Pix[i] = 0xff
	}
	half := color.RGBA{R: 255, A: 128}
	s.DrawMask(mask, geom.Pt(1, 1), half, paint.BlendCopy)

	got := s.Image().RGBAAt(1, 1)
	if got.A != 128 || got.R != 128 {
		t.Errorf("pixel = %v, want premultiplied {128 0 0 128}", got)
	}
	if s.Image().RGBAAt(0, 0).A != 0 {
		t.Error("mask drawn outside its bounds")
	}
}

func TestImageSurfaceTextAndSave(t *testing.T) {
	s := NewImageSurface(64, 20)
	s.Clear(color.Black)
	s.DrawText("Hi", geom.Pt(2, 14), paint.TextStyle{Color: color.RGBA{G: 255, A: 255}})

	lit := 0
	b := s.Image().Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if s.Image().RGBAAt(x, y).G > 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("DrawText left the surface untouched")
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := s.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	if err := s.SavePNG(filepath.Join(t.TempDir(), "missing", "frame.png")); err == nil {
		t.Error("SavePNG into a missing directory should fail")
	}
}

func BenchmarkImageSurfaceLines(b *testing.B) {
	s := NewImageSurface(512, 512)
	segs := make([]geom.Segment, 256)
	for i := range segs {
		f := float64(i * 2)
		segs[i] = geom.Segment{A: geom.Pt(f, 0), B: geom.Pt(512-f, 512)}
	}
	key := strokeKey(red, 1.5)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s.DrawLines(segs, key)
	}
}
