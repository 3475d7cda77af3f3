// Package material provides the scattering models the path tracer consults
// when a ray hits a surface.
package material

import (
	"math/rand/v2"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

// Material decides how an incoming ray leaves a surface.
// Implementations are read-only after construction so one instance can be
// shared by any number of primitives and render workers.
type Material interface {
	// Scatter returns the scattered ray and its attenuation. A false result
	// means the ray was absorbed.
	Scatter(in math3d.Ray, rec HitRecord, rng *rand.Rand) (ScatterRecord, bool)
}

// HitRecord describes a ray/surface intersection.
type HitRecord struct {
	Point     math3d.Point3 // Point of intersection
	Normal    math3d.Vec3   // Unit normal, always facing against the incoming ray
	T         float64       // Ray parameter at the intersection
	FrontFace bool          // Whether the outward normal already opposed the ray
	Material  Material      // Material at the intersection
}

// SetFaceNormal orients the normal against r and records which side was hit.
// outward must be unit length.
func (h *HitRecord) SetFaceNormal(r math3d.Ray, outward math3d.Vec3) {
	h.FrontFace = r.Direction.Dot(outward) < 0
	if h.FrontFace {
		h.Normal = outward
	} else {
		h.Normal = outward.Negate()
	}
}

// ScatterRecord is a material's response to a hit.
type ScatterRecord struct {
	Attenuation math3d.Color
	Scattered   math3d.Ray
}
