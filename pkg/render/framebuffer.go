// Package render turns a scene and a camera into pixels: primary ray
// generation, the recursive path-tracing estimator, a parallel scanline
// renderer and the framebuffer it writes into.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
)

// Framebuffer is a row-major grid of 8-bit pixels with row 0 at the top.
type Framebuffer struct {
	Width  int          // Width in pixels
	Height int          // Height in pixels
	Pixels []color.RGBA // Row-major pixel data
}

// NewFramebuffer creates a black framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
	fb.Clear(color.RGBA{A: 255})
	return fb
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// Rows returns the pixels as rows of RGB triples, top row first.
func (fb *Framebuffer) Rows() [][][3]uint8 {
	rows := make([][][3]uint8, fb.Height)
	for y := range fb.Height {
		row := make([][3]uint8, fb.Width)
		for x := range fb.Width {
			p := fb.Pixels[y*fb.Width+x]
			row[x] = [3]uint8{p.R, p.G, p.B}
		}
		rows[y] = row
	}
	return rows
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// EncodePNG writes the framebuffer to w as a PNG.
func (fb *Framebuffer) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, fb.ToImage()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG saves the framebuffer as a PNG file. Unless overwrite is set an
// existing file at path is left untouched and an error wrapping
// os.ErrExist is returned.
func (fb *Framebuffer) SavePNG(path string, overwrite bool) (err error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return fb.EncodePNG(f)
}
