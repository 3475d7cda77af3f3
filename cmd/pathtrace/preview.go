package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/pathtrace/pkg/geometry"
	"github.com/taigrr/pathtrace/pkg/models"
	"github.com/taigrr/pathtrace/pkg/render"
)

const (
	hudRows     = 1
	rotateStep  = math.Pi / 36
	zoomInStep  = 0.9
	zoomOutStep = 1 / zoomInStep
)

var (
	hudStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e28")).Foreground(lipgloss.Color("#e0e0e0"))
	titleStyle = hudStyle.Bold(true).Foreground(lipgloss.Color("#87ceeb"))
	statStyle  = hudStyle.Foreground(lipgloss.Color("#9ece6a"))
	hintStyle  = hudStyle.Faint(true)
)

type previewFlags struct {
	fps             int
	samplesPerFrame int
	maxSamples      int
	depth           int
	workers         int
	cam             cameraFlags
}

func newPreviewCmd(g *globalFlags) *cobra.Command {
	p := &previewFlags{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Progressively render a scene in the terminal",
		Long: "Render the scene in the terminal with half-block pixels. Samples accumulate " +
			"while the camera is still and restart whenever it moves.\n\n" +
			"Controls:\n" +
			"  W/S or Up/Down     orbit up/down\n" +
			"  A/D or Left/Right  orbit left/right\n" +
			"  +/-                zoom in/out\n" +
			"  R                  reset view\n" +
			"  ?                  toggle HUD\n" +
			"  Esc, Q, Ctrl+C     quit",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scene, err := loadScene(g.scene, g.seed)
			if err != nil {
				return err
			}
			return runPreview(cmd, g, p, scene)
		},
	}

	f := cmd.Flags()
	f.IntVar(&p.fps, "fps", 30, "target frames per second")
	f.IntVar(&p.samplesPerFrame, "samples", 1, "samples per pixel added each frame")
	f.IntVar(&p.maxSamples, "max-samples", 256, "stop refining after this many samples per pixel")
	f.IntVarP(&p.depth, "depth", "d", 8, "maximum bounces per path")
	f.IntVarP(&p.workers, "workers", "j", 0, "parallel workers (0 = number of CPUs)")
	p.cam.register(cmd)

	return cmd
}

// HUD renders a status line with scene info and refinement progress.
type HUD struct {
	scene     string
	objects   int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD(scene string, objects int) *HUD {
	return &HUD{
		scene:   scene,
		objects: objects,
		fpsTime: time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Line returns the styled status line for the given width.
func (h *HUD) Line(width, samples int, opts render.Options, cam render.CameraConfig) string {
	title := titleStyle.Render(" " + h.scene + " ")
	stats := statStyle.Render(fmt.Sprintf(" %d spheres  %dx%d  fov %.0f  aperture %.2f  %d spp  %.0f FPS ",
		h.objects, opts.Width, opts.Height, cam.VFOV, cam.Aperture, samples, h.fps))
	hint := hintStyle.Render(" WASD orbit  +/- zoom  R reset  ? hud  Esc quit ")

	line := lipgloss.JoinHorizontal(lipgloss.Top, title, stats, hint)
	if pad := width - lipgloss.Width(line); pad > 0 {
		line += hudStyle.Width(pad).Render("")
	}
	return line
}

// previewer owns the state of one preview session. Only the main loop
// touches it.
type previewer struct {
	p       *previewFlags
	world   geometry.Hittable
	seed    uint64
	orbit   *render.Orbit
	hud     *HUD
	showHUD bool

	renderer *render.Renderer
	camera   *render.Camera
	acc      *render.Accumulator
	fb       *render.Framebuffer
}

func runPreview(cmd *cobra.Command, g *globalFlags, p *previewFlags, scene *models.Scene) error {
	if p.fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", p.fps)
	}

	// Create terminal
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	fbWidth, fbHeight := render.TerminalSize(width, height, hudRows)
	base := p.cam.apply(cmd, scene, float64(fbWidth)/float64(fbHeight))

	pv := &previewer{
		p:       p,
		world:   scene.World,
		seed:    g.seed,
		orbit:   render.NewOrbit(base, p.fps),
		hud:     NewHUD(scene.Name, scene.World.Len()),
		showHUD: true,
	}
	if err := pv.resize(width, height); err != nil {
		return err
	}

	ctx := cmd.Context()
	targetDuration := time.Second / time.Duration(p.fps)

	for {
		now := time.Now()

		quit, err := pv.drainEvents(term)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if pv.orbit.Update() {
			if err := pv.rebuildCamera(); err != nil {
				return err
			}
		}

		if pv.acc.Samples() < p.maxSamples {
			err := pv.renderer.Accumulate(ctx, pv.world, pv.camera, pv.acc, p.samplesPerFrame)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return err
			}
			pv.acc.ResolveInto(pv.fb)
		}

		pv.hud.UpdateFPS()
		term.Draw(uv.DrawableFunc(pv.draw))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// drainEvents handles every pending terminal event without blocking.
func (pv *previewer) drainEvents(term *uv.Terminal) (quit bool, err error) {
	for {
		select {
		case ev := <-term.Events():
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				term.Erase()
				term.Resize(ev.Width, ev.Height)
				if err := pv.resize(ev.Width, ev.Height); err != nil {
					return false, err
				}
			case uv.KeyPressEvent:
				if quit, err := pv.handleKey(ev); quit || err != nil {
					return quit, err
				}
			}
		default:
			return false, nil
		}
	}
}

// handleKey applies a key press and reports whether the user asked to quit.
func (pv *previewer) handleKey(ev uv.KeyPressEvent) (bool, error) {
	switch {
	case ev.MatchString("escape", "ctrl+c", "q"):
		return true, nil
	case ev.MatchString("w", "up"):
		pv.orbit.Rotate(0, rotateStep)
	case ev.MatchString("s", "down"):
		pv.orbit.Rotate(0, -rotateStep)
	case ev.MatchString("a", "left"):
		pv.orbit.Rotate(-rotateStep, 0)
	case ev.MatchString("d", "right"):
		pv.orbit.Rotate(rotateStep, 0)
	case ev.MatchString("+", "="):
		pv.orbit.Zoom(zoomInStep)
	case ev.MatchString("-", "_"):
		pv.orbit.Zoom(zoomOutStep)
	case ev.MatchString("r"):
		pv.orbit.Reset()
		if err := pv.rebuildCamera(); err != nil {
			return false, fmt.Errorf("reset view: %w", err)
		}
	case ev.MatchString("?", "shift+/"):
		pv.showHUD = !pv.showHUD
	}
	return false, nil
}

// resize rebuilds the renderer and buffers for a new terminal size.
func (pv *previewer) resize(cols, rows int) error {
	fbWidth, fbHeight := render.TerminalSize(cols, rows, hudRows)

	opts := render.DefaultOptions()
	opts.Width = fbWidth
	opts.Height = fbHeight
	opts.SamplesPerPixel = pv.p.samplesPerFrame
	opts.MaxDepth = pv.p.depth
	opts.Workers = pv.p.workers
	opts.Seed = pv.seed

	r, err := render.NewRenderer(opts)
	if err != nil {
		return err
	}
	pv.renderer = r
	pv.acc = render.NewAccumulator(fbWidth, fbHeight)
	pv.fb = render.NewFramebuffer(fbWidth, fbHeight)
	return pv.rebuildCamera()
}

// rebuildCamera applies the current orbit and restarts accumulation.
func (pv *previewer) rebuildCamera() error {
	aspect := float64(pv.fb.Width) / float64(pv.fb.Height)
	cam, err := render.NewCamera(pv.orbit.CameraConfig(aspect))
	if err != nil {
		return err
	}
	pv.camera = cam
	pv.acc.Reset()
	return nil
}

func (pv *previewer) draw(scr uv.Screen, area uv.Rectangle) {
	view := area
	view.Max.Y -= hudRows
	pv.fb.Draw(scr, view)

	status := uv.Rect(area.Min.X, view.Max.Y, area.Dx(), hudRows)
	line := ""
	if pv.showHUD {
		line = pv.hud.Line(area.Dx(), pv.acc.Samples(), pv.renderer.Options(), pv.camera.Config())
	}
	uv.NewStyledString(line).Draw(scr, status)
}
