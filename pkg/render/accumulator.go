package render

import "github.com/taigrr/pathtrace/pkg/math3d"

// Accumulator holds linear radiance sums for every pixel across passes.
// A pass renders into a pending buffer that is folded into the sums only
// once every row has finished. Rows are written by at most one worker at a
// time, so no locking is needed while a pass runs.
type Accumulator struct {
	Width   int
	Height  int
	sums    []math3d.Color // Row-major, row 0 at the top
	pending []math3d.Color // Current pass, same layout as sums
	samples int            // Samples per pixel summed so far
	passes  int
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator(width, height int) *Accumulator {
	return &Accumulator{
		Width:  width,
		Height: height,
		sums:    make([]math3d.Color, width*height),
		pending: make([]math3d.Color, width*height),
	}
}

// Samples returns the number of samples per pixel accumulated so far.
func (a *Accumulator) Samples() int {
	return a.samples
}

// Passes returns the number of completed passes.
func (a *Accumulator) Passes() int {
	return a.passes
}

// Sum returns the accumulated radiance of pixel (x, y).
func (a *Accumulator) Sum(x, y int) math3d.Color {
	return a.sums[y*a.Width+x]
}

// Reset discards everything accumulated so far.
func (a *Accumulator) Reset() {
	clear(a.sums)
	clear(a.pending)
	a.samples = 0
	a.passes = 0
}

// Resolve averages, gamma-corrects and quantizes the sums into a framebuffer.
func (a *Accumulator) Resolve() *Framebuffer {
	fb := NewFramebuffer(a.Width, a.Height)
	a.ResolveInto(fb)
	return fb
}

// ResolveInto writes the current image into fb, which must match in size.
func (a *Accumulator) ResolveInto(fb *Framebuffer) {
	for i, c := range a.sums {
		fb.Pixels[i] = c.ToRGBA(a.samples)
	}
}

// pendingRow returns row y of the pass in progress.
func (a *Accumulator) pendingRow(y int) []math3d.Color {
	return a.pending[y*a.Width : (y+1)*a.Width]
}

// commitPass folds the pending pass into the sums.
func (a *Accumulator) commitPass(samples int) {
	for i, c := range a.pending {
		a.sums[i] = a.sums[i].Add(c)
	}
	clear(a.pending)
	a.samples += samples
	a.passes++
}

// discardPass drops whatever a failed pass left behind.
func (a *Accumulator) discardPass() {
	clear(a.pending)
}
