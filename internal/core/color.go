package core

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGBA colour with one byte per channel.
// Scripts pass colours as a four element array [r, g, b, a].
type Color struct {
	R, G, B, A uint8
}

// RGBA builds a Color from its channels.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Predefined colours used by the host and the instrumentation overlay.
var (
	ColorBlack  = RGBA(0, 0, 0, 255)
	ColorWhite  = RGBA(255, 255, 255, 255)
	ColorGreen  = RGBA(0, 228, 48, 255)
	ColorYellow = RGBA(253, 249, 0, 255)
	ColorRed    = RGBA(230, 41, 55, 255)
)

// Opaque reports whether the colour fully covers what is beneath it.
func (c Color) Opaque() bool {
	return c.A == 255
}

// Hex returns the colour as a "#rrggbb" string, ignoring alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Over composites c on top of dst using c's alpha channel.
// The result is always opaque.
func (c Color) Over(dst Color) Color {
	if c.A == 255 {
		return c
	}
	if c.A == 0 {
		return RGBA(dst.R, dst.G, dst.B, 255)
	}

	t := float64(c.A) / 255
	r, g, b := dst.colorful().BlendRgb(c.colorful(), t).Clamped().RGB255()
	return RGBA(r, g, b, 255)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return fmt.Sprintf("[%d, %d, %d, %d]", c.R, c.G, c.B, c.A)
}
