package material

import (
	"math/rand/v2"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

// Lambertian is an ideal diffuse reflector.
type Lambertian struct {
	Albedo math3d.Color
}

// NewLambertian creates a diffuse material.
func NewLambertian(albedo math3d.Color) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter always scatters, toward normal + a random unit vector.
func (l *Lambertian) Scatter(_ math3d.Ray, rec HitRecord, rng *rand.Rand) (ScatterRecord, bool) {
	direction := rec.Normal.Add(math3d.RandomUnitVector(rng))

	// The random vector can cancel the normal almost exactly.
	if direction.NearZero() {
		direction = rec.Normal
	}

	return ScatterRecord{
		Attenuation: l.Albedo,
		Scattered:   math3d.NewRay(rec.Point, direction),
	}, true
}
