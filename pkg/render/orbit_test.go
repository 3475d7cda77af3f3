package render

import (
	"math"
	"testing"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

func orbitBase() CameraConfig {
	cfg := DefaultCameraConfig()
	cfg.LookFrom = math3d.P3(0, 0, 5)
	cfg.LookAt = math3d.Origin()
	cfg.FocusDist = 5
	return cfg
}

func settle(o *Orbit) {
	for range 600 {
		if !o.Update() && o.Settled() {
			return
		}
	}
}

func TestOrbitStartsAtBase(t *testing.T) {
	o := NewOrbit(orbitBase(), 60)
	cfg := o.CameraConfig(2)

	if cfg.LookFrom.Distance(math3d.P3(0, 0, 5)) > 1e-9 {
		t.Errorf("LookFrom = %v, want (0,0,5)", cfg.LookFrom)
	}
	if cfg.AspectRatio != 2 {
		t.Errorf("AspectRatio = %v, want 2", cfg.AspectRatio)
	}
	if !o.Settled() {
		t.Error("a fresh orbit should be settled")
	}
	if o.Update() {
		t.Error("a settled orbit should not move")
	}
}

func TestOrbitRotate(t *testing.T) {
	o := NewOrbit(orbitBase(), 60)
	o.Rotate(math.Pi/2, 0)

	if !o.Update() {
		t.Fatal("first update after input should move the camera")
	}
	settle(o)
	if !o.Settled() {
		t.Fatal("orbit did not settle")
	}

	cfg := o.CameraConfig(1)
	if cfg.LookFrom.Distance(math3d.P3(5, 0, 0)) > 1e-3 {
		t.Errorf("LookFrom = %v, want about (5,0,0)", cfg.LookFrom)
	}
	if _, err := NewCamera(cfg); err != nil {
		t.Errorf("orbit camera should be valid: %v", err)
	}
}

func TestOrbitPitchIsClamped(t *testing.T) {
	o := NewOrbit(orbitBase(), 60)
	o.Rotate(0, 10)
	if o.Pitch.Target > math.Pi/2 {
		t.Errorf("pitch target %v exceeds straight up", o.Pitch.Target)
	}
	settle(o)

	cfg := o.CameraConfig(1)
	if _, err := NewCamera(cfg); err != nil {
		t.Errorf("camera at the pitch limit should be valid: %v", err)
	}
}

func TestOrbitZoom(t *testing.T) {
	o := NewOrbit(orbitBase(), 60)
	o.Zoom(0.5)
	settle(o)

	cfg := o.CameraConfig(1)
	if d := cfg.LookFrom.Distance(cfg.LookAt); math.Abs(d-2.5) > 1e-3 {
		t.Errorf("distance = %v, want 2.5", d)
	}
	if math.Abs(cfg.FocusDist-2.5) > 1e-3 {
		t.Errorf("FocusDist = %v, want it to follow the distance", cfg.FocusDist)
	}

	o.Zoom(1e-6)
	if o.Distance.Target < minDistance {
		t.Errorf("distance target %v below minimum", o.Distance.Target)
	}
}

func TestOrbitReset(t *testing.T) {
	o := NewOrbit(orbitBase(), 60)
	o.Rotate(1, 0.5)
	o.Zoom(3)
	settle(o)
	o.Reset()

	if cfg := o.CameraConfig(1); cfg.LookFrom.Distance(math3d.P3(0, 0, 5)) > 1e-9 {
		t.Errorf("LookFrom after reset = %v, want (0,0,5)", cfg.LookFrom)
	}
}
