package paint

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa" into an RGBA color.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	alpha := uint8(255)
	if len(s) == 9 && s[0] == '#' {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("paint: invalid alpha in color %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("paint: invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// HSV builds an opaque color from hue in degrees and saturation/value in [0, 1].
func HSV(h, s, v float64) color.RGBA {
	r, g, b := colorful.Hsv(h, s, v).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// WithAlpha returns c with its alpha replaced by a.
// The result is not premultiplied; surfaces treat paint colors as straight alpha.
func WithAlpha(c color.RGBA, a uint8) color.RGBA {
	c.A = a
	return c
}
