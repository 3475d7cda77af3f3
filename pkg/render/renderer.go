package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/pathtrace/pkg/geometry"
	"github.com/taigrr/pathtrace/pkg/math3d"
)

// ErrInvalidOptions is returned when render options fail validation.
var ErrInvalidOptions = errors.New("invalid render options")

// Options controls a render.
type Options struct {
	Width           int         // Image width in pixels
	Height          int         // Image height in pixels
	SamplesPerPixel int         // Jittered samples averaged per pixel
	MaxDepth        int         // Maximum bounces per path
	Workers         int         // Parallel scanline workers (0 = use CPU count)
	Seed            uint64      // Base seed; equal seeds give identical images
	Logger          *log.Logger // Optional; nil renders silently
}

// DefaultOptions returns a small 16:9 render.
func DefaultOptions() Options {
	return Options{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Workers:         0,
		Seed:            1,
	}
}

// Validate reports the first invalid field.
func (o Options) Validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidOptions, o.Width, o.Height)
	case o.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel %d must be positive", ErrInvalidOptions, o.SamplesPerPixel)
	case o.MaxDepth <= 0:
		return fmt.Errorf("%w: max depth %d must be positive", ErrInvalidOptions, o.MaxDepth)
	case o.Workers < 0:
		return fmt.Errorf("%w: workers %d must not be negative", ErrInvalidOptions, o.Workers)
	}
	return nil
}

// Renderer estimates per-pixel radiance for a scene seen through a camera.
// Scanlines are spread across a fixed pool of workers; each scanline owns its
// random stream and writes only its own row of the output.
type Renderer struct {
	opts    Options
	workers int
	logger  *log.Logger
}

// NewRenderer validates opts and creates a renderer.
func NewRenderer(opts Options) (*Renderer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Renderer{opts: opts, workers: workers, logger: logger}, nil
}

// Options returns the renderer options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Workers returns the size of the worker pool.
func (r *Renderer) Workers() int {
	return r.workers
}

// Render produces the final 8-bit image. It blocks until every pixel has been
// sampled or ctx is cancelled.
func (r *Renderer) Render(ctx context.Context, world geometry.Hittable, cam *Camera) (*Framebuffer, error) {
	acc := NewAccumulator(r.opts.Width, r.opts.Height)

	start := time.Now()
	r.logger.Info("render started",
		"width", r.opts.Width,
		"height", r.opts.Height,
		"samples", r.opts.SamplesPerPixel,
		"depth", r.opts.MaxDepth,
		"workers", r.workers,
	)

	if err := r.Accumulate(ctx, world, cam, acc, r.opts.SamplesPerPixel); err != nil {
		return nil, err
	}

	r.logger.Info("render finished", "elapsed", time.Since(start).Round(time.Millisecond))
	return acc.Resolve(), nil
}

// Accumulate adds samples more samples to every pixel of acc. Calling it
// repeatedly converges the image progressively; the sum of all passes
// quantizes exactly like a single pass with the same total. A pass that
// fails or is cancelled leaves acc unchanged.
func (r *Renderer) Accumulate(ctx context.Context, world geometry.Hittable, cam *Camera, acc *Accumulator, samples int) error {
	if samples <= 0 {
		return fmt.Errorf("%w: samples %d must be positive", ErrInvalidOptions, samples)
	}
	if acc.Width != r.opts.Width || acc.Height != r.opts.Height {
		return fmt.Errorf("%w: accumulator is %dx%d, renderer is %dx%d",
			ErrInvalidOptions, acc.Width, acc.Height, r.opts.Width, r.opts.Height)
	}

	pass := acc.Passes()
	var done atomic.Int64
	step := max(int64(r.opts.Height/10), 1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for row := range r.opts.Height {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(r.opts.Seed, streamID(pass, row)))
			r.renderRow(world, cam, acc, row, samples, rng)

			if n := done.Add(1); n%step == 0 {
				r.logger.Debug("scanlines done", "pass", pass, "done", n, "total", r.opts.Height)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		acc.discardPass()
		return fmt.Errorf("render pass %d: %w", pass, err)
	}

	acc.commitPass(samples)
	return nil
}

// renderRow samples one image row (0 = top) into the pending pass of acc.
func (r *Renderer) renderRow(world geometry.Hittable, cam *Camera, acc *Accumulator, row, samples int, rng *rand.Rand) {
	width, height := r.opts.Width, r.opts.Height
	// The camera's image plane has its origin at the bottom-left.
	vRow := height - row - 1
	uScale := 1 / float64(max(width-1, 1))
	vScale := 1 / float64(max(height-1, 1))

	out := acc.pendingRow(row)
	for x := range width {
		var sum math3d.Color
		for range samples {
			s := (float64(x) + rng.Float64()) * uScale
			t := (float64(vRow) + rng.Float64()) * vScale
			sum = sum.Add(RayColor(cam.GetRay(s, t, rng), world, r.opts.MaxDepth, rng))
		}
		out[x] = sum
	}
}

// streamID gives every (pass, row) pair its own PCG stream.
func streamID(pass, row int) uint64 {
	return uint64(pass)<<32 | uint64(uint32(row))
}
