package geom

import (
	"math"
	"testing"
)

func TestRectIntersects(t *testing.T) {
	base := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	tests := []struct {
		name string
		o    Rect
		want bool
	}{
		{"inside", Rect{2, 2, 3, 3}, true},
		{"overlap", Rect{5, 5, 15, 15}, true},
		{"touch edge", Rect{10, 0, 20, 10}, true},
		{"touch corner", Rect{10, 10, 11, 11}, true},
		{"left", Rect{-5, 0, -0.001, 10}, false},
		{"below", Rect{0, 10.5, 10, 12}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.o); got != tt.want {
				t.Errorf("Intersects(%v) = %v, want %v", tt.o, got, tt.want)
			}
			if got := tt.o.Intersects(base); got != tt.want {
				t.Errorf("symmetric Intersects(%v) = %v, want %v", tt.o, got, tt.want)
			}
		})
	}
}

func TestRectValid(t *testing.T) {
	if !(Rect{1, 1, 1, 1}).Valid() {
		t.Error("degenerate rect should be valid")
	}
	if (Rect{2, 0, 1, 1}).Valid() {
		t.Error("inverted rect should be invalid")
	}
	if (Rect{math.NaN(), 0, 1, 1}).Valid() {
		t.Error("NaN rect should be invalid")
	}
}

func TestRectExpandAndCenter(t *testing.T) {
	r := RectXYWH(0, 0, 200, 200).Expand(50)
	want := Rect{-50, -50, 250, 250}
	if r != want {
		t.Errorf("Expand = %v, want %v", r, want)
	}
	if c := r.Center(); c != Pt(100, 100) {
		t.Errorf("Center = %v, want (100,100)", c)
	}
}

func TestAffine(t *testing.T) {
	tr := Affine(2, 3, 10, 20)
	if got := tr(Pt(1, 1)); got != Pt(12, 23) {
		t.Errorf("Affine(1,1) = %v, want (12,23)", got)
	}
	if got := Identity(Pt(4, 5)); got != Pt(4, 5) {
		t.Errorf("Identity = %v", got)
	}
}

func TestPointDistance(t *testing.T) {
	if d := Pt(0, 0).Distance(Pt(3, 4)); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
	if Pt(math.Inf(1), 0).IsFinite() {
		t.Error("Inf point reported finite")
	}
}
