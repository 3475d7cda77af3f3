package render

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

const (
	maxPitch    = math.Pi/2 - 0.01
	minDistance = 0.5
	maxDistance = 200
	settleEps   = 1e-4
)

// orbitAxis eases one spherical coordinate toward its target with a
// critically damped spring.
type orbitAxis struct {
	Position float64
	Target   float64
	velocity float64
	spring   harmonica.Spring
}

func newOrbitAxis(fps int, pos float64) orbitAxis {
	return orbitAxis{
		Position: pos,
		Target:   pos,
		// Frequency 6.0 = quick response, damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// update advances the spring one frame and reports whether the axis moved.
func (a *orbitAxis) update() bool {
	prev := a.Position
	a.Position, a.velocity = a.spring.Update(a.Position, a.velocity, a.Target)
	if math.Abs(a.Target-a.Position) < settleEps && math.Abs(a.velocity) < settleEps {
		a.Position, a.velocity = a.Target, 0
	}
	return a.Position != prev
}

// Orbit moves a camera around its look-at point in spherical coordinates.
// Input changes the targets; Update eases the camera toward them.
type Orbit struct {
	Yaw, Pitch, Distance orbitAxis

	base     CameraConfig
	baseDist float64
	fps      int
}

// NewOrbit starts an orbit at the position described by base.
func NewOrbit(base CameraConfig, fps int) *Orbit {
	o := &Orbit{base: base, fps: fps}
	o.Reset()
	return o
}

// Reset snaps the camera back to its starting position.
func (o *Orbit) Reset() {
	offset := o.base.LookFrom.Sub(o.base.LookAt)
	dist := max(offset.Len(), minDistance)
	o.baseDist = dist

	o.Yaw = newOrbitAxis(o.fps, math.Atan2(offset.X, offset.Z))
	o.Pitch = newOrbitAxis(o.fps, math.Asin(clamp(offset.Y/dist, -1, 1)))
	o.Distance = newOrbitAxis(o.fps, dist)
}

// Rotate turns the target position by the given angles in radians.
func (o *Orbit) Rotate(dYaw, dPitch float64) {
	o.Yaw.Target += dYaw
	o.Pitch.Target = clamp(o.Pitch.Target+dPitch, -maxPitch, maxPitch)
}

// Zoom scales the target distance; factors below 1 move closer.
func (o *Orbit) Zoom(factor float64) {
	o.Distance.Target = clamp(o.Distance.Target*factor, minDistance, maxDistance)
}

// Update advances every spring one frame and reports whether the camera
// moved.
func (o *Orbit) Update() bool {
	moved := o.Yaw.update()
	moved = o.Pitch.update() || moved
	moved = o.Distance.update() || moved
	return moved
}

// Settled reports whether every axis has reached its target.
func (o *Orbit) Settled() bool {
	return o.Yaw.Position == o.Yaw.Target &&
		o.Pitch.Position == o.Pitch.Target &&
		o.Distance.Position == o.Distance.Target
}

// CameraConfig returns the current camera for the given aspect ratio. The
// focus distance follows the orbit so the look-at point stays sharp.
func (o *Orbit) CameraConfig(aspect float64) CameraConfig {
	yaw, pitch, dist := o.Yaw.Position, o.Pitch.Position, o.Distance.Position
	offset := math3d.V3(
		dist*math.Cos(pitch)*math.Sin(yaw),
		dist*math.Sin(pitch),
		dist*math.Cos(pitch)*math.Cos(yaw),
	)

	cfg := o.base
	cfg.LookFrom = o.base.LookAt.Add(offset)
	cfg.AspectRatio = aspect
	cfg.FocusDist = o.base.FocusDist * dist / o.baseDist
	return cfg
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
