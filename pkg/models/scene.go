// Package models builds renderable scenes: the procedural demo scene and
// sphere scenes described in glTF files.
package models

import (
	"github.com/taigrr/pathtrace/pkg/geometry"
	"github.com/taigrr/pathtrace/pkg/render"
)

// Scene is a world plus an optional camera that came with it.
type Scene struct {
	Name   string
	World  *geometry.Scene
	Camera render.CameraConfig // Valid only when HasCamera is set
	// HasCamera reports whether the source described its own camera.
	HasCamera bool
}

// CameraOr returns the scene camera, or fallback when the scene has none.
// The aspect ratio always comes from the caller since it depends on the
// output image.
func (s *Scene) CameraOr(fallback render.CameraConfig) render.CameraConfig {
	if !s.HasCamera {
		return fallback
	}
	cfg := s.Camera
	cfg.AspectRatio = fallback.AspectRatio
	return cfg
}
