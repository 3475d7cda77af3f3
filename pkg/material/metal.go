package material

import (
	"math/rand/v2"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

// Metal is a specular reflector; Fuzz blurs the reflection.
type Metal struct {
	Albedo math3d.Color
	Fuzz   float64 // 0 = perfect mirror, 1 = very rough
}

// NewMetal creates a metal material. fuzz is clamped to [0, 1].
func NewMetal(albedo math3d.Color, fuzz float64) *Metal {
	return &Metal{Albedo: albedo, Fuzz: min(max(fuzz, 0), 1)}
}

// Scatter reflects the incoming direction and perturbs it by Fuzz. Rays
// perturbed below the surface are absorbed.
func (m *Metal) Scatter(in math3d.Ray, rec HitRecord, rng *rand.Rand) (ScatterRecord, bool) {
	reflected := in.Direction.Normalize().Reflect(rec.Normal)
	if m.Fuzz > 0 {
		reflected = reflected.Add(math3d.RandomInUnitSphere(rng).Scale(m.Fuzz))
	}

	if reflected.Dot(rec.Normal) <= 0 {
		return ScatterRecord{}, false
	}

	return ScatterRecord{
		Attenuation: m.Albedo,
		Scattered:   math3d.NewRay(rec.Point, reflected),
	}, true
}
