package render

import (
	"math"
	"math/rand/v2"

	"github.com/taigrr/pathtrace/pkg/geometry"
	"github.com/taigrr/pathtrace/pkg/math3d"
)

// MinHitDistance is the lower bound of every scene query. It keeps scattered
// rays from re-hitting the surface they start on (shadow acne).
const MinHitDistance = 0.001

var skyBlue = math3d.RGB(0.5, 0.7, 1.0)

// Background is the sky seen by rays that miss everything: a vertical blend
// from white at the bottom to sky blue at the top.
func Background(r math3d.Ray) math3d.Color {
	unit := r.Direction.Normalize()
	t := 0.5 * (unit.Y + 1)
	return math3d.White().Lerp(skyBlue, t)
}

// RayColor estimates the radiance arriving along r. Each bounce multiplies
// the material attenuation into the result until the ray escapes to the sky,
// is absorbed, or depth bounces are used up.
func RayColor(r math3d.Ray, world geometry.Hittable, depth int, rng *rand.Rand) math3d.Color {
	if depth <= 0 {
		return math3d.Black()
	}

	rec, ok := world.Hit(r, MinHitDistance, math.Inf(1))
	if !ok {
		return Background(r)
	}

	sr, ok := rec.Material.Scatter(r, rec, rng)
	if !ok {
		return math3d.Black()
	}
	return sr.Attenuation.Mul(RayColor(sr.Scattered, world, depth-1, rng))
}
