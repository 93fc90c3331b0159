package field

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

var palettes = map[Theme][]string{
	Dark:  {"#8B5CF6", "#3B82F6", "#06B6D4", "#10B981"},
	Light: {"#7C3AED", "#2563EB", "#0891B2", "#059669"},
}

var backgrounds = map[Theme]string{
	Dark:  "#0F172A",
	Light: "#F5F3FF",
}

// Background is the backdrop color behind a theme's particles, used when a
// surface has to paint its own.
func Background(t Theme) color.NRGBA {
	hex, ok := backgrounds[t]
	if !ok {
		hex = backgrounds[Dark]
	}
	return rgba(hex, 1)
}

// ParseTheme maps a theme token to a Theme.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := palettes[t]; !ok {
		return "", fmt.Errorf("%w: %q (available: dark, light)", ErrUnknownTheme, s)
	}
	return t, nil
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// Palette returns a copy of the theme's colors as hex strings. Unknown
// themes fall back to dark.
func Palette(t Theme) []string {
	p, ok := palettes[t]
	if !ok {
		p = palettes[Dark]
	}
	out := make([]string, len(p))
	copy(out, p)
	return out
}

// WithAlpha appends a two-digit alpha channel to a #RRGGBB color, the way
// the fill style of a particle is encoded.
func WithAlpha(hex string, alpha float64) string {
	a := int(alpha * 255)
	if a < 0 {
		a = 0
	}
	if a > 255 {
		a = 255
	}
	return fmt.Sprintf("%s%02x", hex, a)
}

// rgba parses a hex color and applies alpha in [0,1]. Bad input yields white.
func rgba(hex string, alpha float64) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		c = colorful.Color{R: 1, G: 1, B: 1}
	}
	r, g, b := c.RGB255()
	a := alpha * 255
	if a < 0 {
		a = 0
	}
	if a > 255 {
		a = 255
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a)}
}

// starColor picks a hue in [240,300) at 70% saturation, 60% lightness.
func starColor(hue float64) string {
	return colorful.Hsl(hue, 0.7, 0.6).Clamped().Hex()
}
