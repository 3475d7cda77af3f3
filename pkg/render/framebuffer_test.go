package render

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
)

func TestNewFramebufferIsOpaqueBlack(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	if len(fb.Pixels) != 6 {
		t.Fatalf("len(Pixels) = %d, want 6", len(fb.Pixels))
	}
	for i, p := range fb.Pixels {
		if p != (color.RGBA{A: 255}) {
			t.Fatalf("pixel %d = %v, want opaque black", i, p)
		}
	}
}

func TestFramebufferPixelAccess(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	red := color.RGBA{255, 0, 0, 255}

	fb.SetPixel(2, 1, red)
	fb.SetPixel(-1, 0, red)
	fb.SetPixel(4, 0, red)
	fb.SetPixel(0, 3, red)

	if got := fb.GetPixel(2, 1); got != red {
		t.Errorf("GetPixel(2,1) = %v, want red", got)
	}
	if got := fb.Pixels[1*4+2]; got != red {
		t.Errorf("pixel storage should be row-major, got %v", got)
	}
	if got := fb.GetPixel(10, 10); got != (color.RGBA{}) {
		t.Errorf("out of bounds read = %v, want zero", got)
	}

	count := 0
	for _, p := range fb.Pixels {
		if p == red {
			count++
		}
	}
	if count != 1 {
		t.Errorf("%d red pixels, out of bounds writes should be ignored", count)
	}
}

func TestFramebufferRows(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.SetPixel(1, 0, color.RGBA{10, 20, 30, 255})

	rows := fb.Rows()
	if len(rows) != 2 || len(rows[0]) != 2 {
		t.Fatalf("rows shape = %dx%d, want 2x2", len(rows), len(rows[0]))
	}
	if rows[0][1] != [3]uint8{10, 20, 30} {
		t.Errorf("rows[0][1] = %v, want [10 20 30]", rows[0][1])
	}
	if rows[1][0] != [3]uint8{0, 0, 0} {
		t.Errorf("rows[1][0] = %v, want black", rows[1][0])
	}
}

func TestEncodePNG(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.SetPixel(0, 1, color.RGBA{1, 2, 3, 255})

	var buf bytes.Buffer
	if err := fb.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, want 3x2", b)
	}
	r, g, b, _ := img.At(0, 1).RGBA()
	if r>>8 != 1 || g>>8 != 2 || b>>8 != 3 {
		t.Errorf("pixel (0,1) = %d,%d,%d, want 1,2,3", r>>8, g>>8, b>>8)
	}
}

func TestSavePNGOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	fb := NewFramebuffer(2, 2)

	if err := fb.SavePNG(path, false); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := fb.SavePNG(path, false); !errors.Is(err, os.ErrExist) {
		t.Errorf("second save = %v, want os.ErrExist", err)
	}
	if err := fb.SavePNG(path, true); err != nil {
		t.Errorf("forced save: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("saved file is not a png: %v", err)
	}
}

func TestFramebufferDraw(t *testing.T) {
	fb := NewFramebuffer(2, 4)
	top := color.RGBA{255, 0, 0, 255}
	bottom := color.RGBA{0, 0, 255, 255}
	fb.SetPixel(1, 2, top)
	fb.SetPixel(1, 3, bottom)

	scr := uv.NewScreenBuffer(4, 3)
	fb.Draw(scr, uv.Rect(0, 0, 4, 3))

	cell := scr.CellAt(1, 1)
	if cell == nil || cell.Content != "▀" {
		t.Fatalf("cell (1,1) = %+v, want a half block", cell)
	}
	if cell.Style.Fg != color.Color(top) {
		t.Errorf("foreground = %v, want top pixel %v", cell.Style.Fg, top)
	}
	if cell.Style.Bg != color.Color(bottom) {
		t.Errorf("background = %v, want bottom pixel %v", cell.Style.Bg, bottom)
	}

	// Cells past the framebuffer are left alone.
	if c := scr.CellAt(3, 0); c != nil && c.Content == "▀" {
		t.Error("column beyond framebuffer width should not be drawn")
	}
	if c := scr.CellAt(0, 2); c != nil && c.Content == "▀" {
		t.Error("row beyond framebuffer height should not be drawn")
	}
}

func TestTerminalSize(t *testing.T) {
	tests := []struct {
		name                string
		cols, rows, reserve int
		wantW, wantH        int
	}{
		{"full screen", 80, 24, 0, 80, 48},
		{"status line", 80, 24, 1, 80, 46},
		{"tiny", 0, 1, 1, 1, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h := TerminalSize(tc.cols, tc.rows, tc.reserve)
			if w != tc.wantW || h != tc.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tc.wantW, tc.wantH)
			}
		})
	}
}
