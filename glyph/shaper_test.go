package glyph

import (
	"errors"
	"testing"

	"github.com/gogpu/overlay/paint"
)

func TestFontBookLookupFallback(t *testing.T) {
	book, err := DefaultFontBook()
	if err != nil {
		t.Fatal(err)
	}
	if book.Len() != 8 {
		t.Errorf("Len = %d, want 8 Go faces", book.Len())
	}

	regular, _ := book.Lookup(paint.DefaultFamily, paint.WeightRegular, paint.SlantUpright)
	tests := []struct {
		name   string
		family string
		weight paint.Weight
		slant  paint.Slant
		same   bool
	}{
		{"exact", paint.DefaultFamily, paint.WeightRegular, paint.SlantUpright, true},
		{"unknown family", "Comic", paint.WeightRegular, paint.SlantUpright, true},
		{"empty family", "", paint.WeightRegular, paint.SlantUpright, true},
		{"semibold snaps to bold", paint.DefaultFamily, 650, paint.SlantUpright, false},
		{"mono", MonoFamily, paint.WeightRegular, paint.SlantUpright, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := book.Lookup(tt.family, tt.weight, tt.slant)
			if err != nil {
				t.Fatal(err)
			}
			if (src == regular) != tt.same {
				t.Errorf("Lookup(%q, %d) = %s", tt.family, tt.weight, src.Name())
			}
		})
	}

	if _, err := NewFontBook("").Lookup("Go", paint.WeightRegular, paint.SlantUpright); !errors.Is(err, ErrNoFont) {
		t.Errorf("empty book Lookup err = %v, want ErrNoFont", err)
	}
	if _, err := NewFontSource("empty", nil); !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("NewFontSource(nil) err = %v", err)
	}
}

func TestGoTextShaper(t *testing.T) {
	book, err := DefaultFontBook()
	if err != nil {
		t.Fatal(err)
	}
	s := NewGoTextShaper(book)

	run, err := s.Shape("Hello", Attributes{Size: 20, ScaleX: 1, Family: paint.DefaultFamily, Weight: paint.WeightRegular})
	if err != nil {
		t.Fatal(err)
	}
	if len(run.Glyphs) != 5 {
		t.Errorf("got %d glyphs, want 5", len(run.Glyphs))
	}
	if run.Advance <= 0 || run.Ascent <= 0 || run.Descent <= 0 {
		t.Errorf("run metrics = advance %v ascent %v descent %v", run.Advance, run.Ascent, run.Descent)
	}
	for i := 1; i < len(run.Glyphs); i++ {
		if run.Glyphs[i].X <= run.Glyphs[i-1].X {
			t.Errorf("glyph %d not advanced: %v <= %v", i, run.Glyphs[i].X, run.Glyphs[i-1].X)
		}
	}

	big, _ := s.Shape("Hello", Attributes{Size: 40, ScaleX: 1, Family: paint.DefaultFamily})
	if r := big.Advance / run.Advance; r < 1.9 || r > 2.1 {
		t.Errorf("advance ratio at double size = %v, want ~2", r)
	}
}

func TestIsRTL(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"hello", false},
		{"שלום", true},
		{"مرحبا", true},
		{"hello שלום", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isRTL(tt.text); got != tt.want {
			t.Errorf("isRTL(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestNewKeyValidation(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		attrs Attributes
		err   error
	}{
		{"ok", "a", Attributes{Size: 12}, nil},
		{"invalid utf8", "\xc3", Attributes{Size: 12}, ErrInvalidText},
		{"zero size", "a", Attributes{}, ErrInvalidSize},
		{"negative scale", "a", Attributes{Size: 12, ScaleX: -1}, ErrInvalidScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKey(tt.text, tt.attrs)
			if !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}

	a, _ := NewKey("a", Attributes{Size: 12})
	b, _ := NewKey("a", Attributes{Size: 12, ScaleX: 1, Family: paint.DefaultFamily, Weight: paint.WeightRegular})
	if a != b {
		t.Errorf("defaulted attributes must normalize equal: %+v vs %+v", a, b)
	}
	if a.flightKey() == (Key{Text: "a", Attrs: Attributes{Size: 12.5}}).flightKey() {
		t.Error("flight keys collide for different sizes")
	}
}
