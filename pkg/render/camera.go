package render

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

// ErrInvalidCamera is returned when a camera cannot be built from its
// configuration.
var ErrInvalidCamera = errors.New("invalid camera")

// CameraConfig describes a thin-lens camera.
type CameraConfig struct {
	LookFrom    math3d.Point3
	LookAt      math3d.Point3
	VUp         math3d.Vec3
	VFOV        float64 // Vertical field of view in degrees
	AspectRatio float64 // Width / Height
	Aperture    float64 // Lens diameter; 0 is a pinhole camera
	FocusDist   float64 // Distance to the plane in perfect focus
}

// DefaultCameraConfig looks down -Z from the origin with a pinhole lens.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		LookFrom:    math3d.Origin(),
		LookAt:      math3d.P3(0, 0, -1),
		VUp:         math3d.Up(),
		VFOV:        90,
		AspectRatio: 16.0 / 9.0,
		Aperture:    0,
		FocusDist:   1,
	}
}

// Camera maps normalized image-plane coordinates to primary rays.
// It is immutable after construction and safe for concurrent use.
type Camera struct {
	origin          math3d.Point3
	lowerLeftCorner math3d.Point3
	horizontal      math3d.Vec3
	vertical        math3d.Vec3
	u, v, w         math3d.Vec3 // Right, up and backward basis vectors
	lensRadius      float64
	config          CameraConfig
}

// NewCamera validates cfg and derives the camera basis and viewport.
func NewCamera(cfg CameraConfig) (*Camera, error) {
	switch {
	case !(cfg.VFOV > 0 && cfg.VFOV < 180):
		return nil, fmt.Errorf("%w: vertical fov %v must be in (0, 180)", ErrInvalidCamera, cfg.VFOV)
	case !(cfg.AspectRatio > 0) || math.IsInf(cfg.AspectRatio, 0):
		return nil, fmt.Errorf("%w: aspect ratio %v must be positive", ErrInvalidCamera, cfg.AspectRatio)
	case !(cfg.Aperture >= 0) || math.IsInf(cfg.Aperture, 0):
		return nil, fmt.Errorf("%w: aperture %v must be non-negative", ErrInvalidCamera, cfg.Aperture)
	case !(cfg.FocusDist > 0) || math.IsInf(cfg.FocusDist, 0):
		return nil, fmt.Errorf("%w: focus distance %v must be positive", ErrInvalidCamera, cfg.FocusDist)
	}

	theta := cfg.VFOV * math.Pi / 180
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h
	viewportWidth := cfg.AspectRatio * viewportHeight

	w, err := cfg.LookFrom.Sub(cfg.LookAt).Unit()
	if err != nil {
		return nil, fmt.Errorf("%w: look-from equals look-at: %w", ErrInvalidCamera, err)
	}
	u, err := cfg.VUp.Cross(w).Unit()
	if err != nil {
		return nil, fmt.Errorf("%w: up vector parallel to view direction: %w", ErrInvalidCamera, err)
	}
	v := w.Cross(u)

	horizontal := u.Scale(cfg.FocusDist * viewportWidth)
	vertical := v.Scale(cfg.FocusDist * viewportHeight)
	lowerLeft := cfg.LookFrom.
		Add(horizontal.Scale(-0.5)).
		Add(vertical.Scale(-0.5)).
		Add(w.Scale(-cfg.FocusDist))

	return &Camera{
		origin:          cfg.LookFrom,
		lowerLeftCorner: lowerLeft,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      cfg.Aperture / 2,
		config:          cfg,
	}, nil
}

// Config returns the configuration the camera was built from.
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Basis returns the right (u), up (v) and backward (w) unit vectors.
func (c *Camera) Basis() (u, v, w math3d.Vec3) {
	return c.u, c.v, c.w
}

// LensRadius returns half the aperture.
func (c *Camera) LensRadius() float64 {
	return c.lensRadius
}

// GetRay returns the ray through image-plane coordinates (s, t), both in
// [0, 1] with (0, 0) at the bottom-left. With a non-zero aperture the origin
// is jittered across the lens disk and aimed at the same focus-plane point,
// which blurs everything off the focal plane. rng is unused for a pinhole.
func (c *Camera) GetRay(s, t float64, rng *rand.Rand) math3d.Ray {
	var offset math3d.Vec3
	if c.lensRadius > 0 {
		rd := math3d.RandomInUnitDisk(rng).Scale(c.lensRadius)
		offset = c.u.Scale(rd.X).Add(c.v.Scale(rd.Y))
	}

	target := c.lowerLeftCorner.Add(c.horizontal.Scale(s)).Add(c.vertical.Scale(t))
	origin := c.origin.Add(offset)
	return math3d.NewRay(origin, target.Sub(origin))
}
