/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrInvalidHex = errors.New("invalid hex color")

// Color is an 8-bit RGB triple. Its text form is an upper-case #RRGGBB string.
type Color struct {
	R, G, B uint8
}

// ParseHex accepts #RRGGBB and #RGB, with or without the leading '#'.
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	if (len(s) != 4 && len(s) != 7) || strings.IndexFunc(s[1:], notHexDigit) >= 0 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	return fromColorful(c), nil
}

// MustParseHex is ParseHex for compile-time constants.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// HSL returns hue in degrees [0, 360), saturation and lightness in [0, 1].
func (c Color) HSL() (h, s, l float64) {
	return c.colorful().Hsl()
}

// Achromatic reports whether the color is a pure grey, which has no hue.
func (c Color) Achromatic() bool {
	return c.R == c.G && c.G == c.B
}

// RotateHue moves the color around the wheel by deg degrees, keeping
// saturation and lightness.
func (c Color) RotateHue(deg float64) Color {
	h, s, l := c.HSL()
	return fromColorful(colorful.Hsl(normalizeHue(h+deg), s, l))
}

// ShiftLightness adds amount to HSL lightness, clamped to [0, 1].
// Positive amounts lighten, negative amounts darken.
func (c Color) ShiftLightness(amount float64) Color {
	h, s, l := c.HSL()
	return fromColorful(colorful.Hsl(h, s, clamp(l+amount, 0, 1)))
}

func (c Color) Lighten(amount float64) Color {
	return c.ShiftLightness(amount)
}

func (c Color) Darken(amount float64) Color {
	return c.ShiftLightness(-amount)
}

// Blend interpolates linearly in RGB from c (t=0) to other (t=1).
func (c Color) Blend(other Color, t float64) Color {
	switch {
	case t <= 0:
		return c
	case t >= 1:
		return other
	}
	return fromColorful(c.colorful().BlendRgb(other.colorful(), t))
}

// Distance is the Euclidean distance between two colors in 0-255 RGB space.
func Distance(a, b Color) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// HueDistance is the shortest angular distance between two hues, in degrees.
func HueDistance(a, b float64) float64 {
	d := math.Abs(normalizeHue(a) - normalizeHue(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

func normalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func notHexDigit(r rune) bool {
	return !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F')
}

func equalColors(a, b []Color) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mapColors(colors []Color, fn func(Color) Color) []Color {
	out := make([]Color, len(colors))
	for i, c := range colors {
		out[i] = fn(c)
	}
	return out
}
