package math3d

import (
	"image/color"
	"math"
)

// Color is linear-space radiance per channel.
type Color struct {
	R, G, B float64
}

// RGB creates a new Color.
func RGB(r, g, b float64) Color {
	return Color{r, g, b}
}

// Black returns (0, 0, 0).
func Black() Color {
	return Color{}
}

// White returns (1, 1, 1).
func White() Color {
	return Color{1, 1, 1}
}

// Add returns the channel-wise sum.
func (c Color) Add(d Color) Color {
	return Color{c.R + d.R, c.G + d.G, c.B + d.B}
}

// Mul returns the channel-wise product, used for attenuation.
func (c Color) Mul(d Color) Color {
	return Color{c.R * d.R, c.G * d.G, c.B * d.B}
}

// Scale returns every channel multiplied by s.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Lerp blends from c to d by t.
func (c Color) Lerp(d Color, t float64) Color {
	return c.Scale(1 - t).Add(d.Scale(t))
}

// ToRGBA converts an accumulated sum of samples into an opaque 8-bit color:
// average over samples, gamma-correct with a square root, clamp to
// [0, 0.999] and scale by 256. NaN channels quantize to 0.
func (c Color) ToRGBA(samples int) color.RGBA {
	scale := 1.0
	if samples > 0 {
		scale = 1 / float64(samples)
	}
	return color.RGBA{
		R: quantize(c.R * scale),
		G: quantize(c.G * scale),
		B: quantize(c.B * scale),
		A: 255,
	}
}

func quantize(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	v = math.Sqrt(v)
	return uint8(256 * min(v, 0.999))
}
