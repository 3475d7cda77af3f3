package material

import (
	"math"
	"math/rand/v2"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

// Dielectric is a clear refractive material such as glass or water.
//
// It reflects only on total internal reflection and otherwise always
// refracts; there is no Fresnel-weighted mixing and no absorption, so the
// attenuation is always white.
type Dielectric struct {
	RefractiveIndex float64 // e.g. 1.5 for glass
}

// NewDielectric creates a dielectric material. A refractive index that is
// not positive and finite is replaced by 1, which passes light straight
// through.
func NewDielectric(refractiveIndex float64) *Dielectric {
	if !(refractiveIndex > 0) || math.IsInf(refractiveIndex, 0) {
		refractiveIndex = 1
	}
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter implements Material.
func (d *Dielectric) Scatter(in math3d.Ray, rec HitRecord, _ *rand.Rand) (ScatterRecord, bool) {
	ratio := d.RefractiveIndex
	if rec.FrontFace {
		ratio = 1 / d.RefractiveIndex
	}

	unitDirection := in.Direction.Normalize()
	cosTheta := math.Min(unitDirection.Negate().Dot(rec.Normal), 1)
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)

	var direction math3d.Vec3
	if ratio*sinTheta > 1 {
		direction = unitDirection.Reflect(rec.Normal)
	} else {
		direction = unitDirection.Refract(rec.Normal, ratio)
	}

	return ScatterRecord{
		Attenuation: math3d.White(),
		Scattered:   math3d.NewRay(rec.Point, direction),
	}, true
}
