package math3d

import (
	"math"
	"math/rand/v2"
)

// The samplers below use rejection sampling: candidates are drawn uniformly
// from a bounding cube or square and redrawn until they fall inside the unit
// shape. This is exact; roughly half the cube candidates are rejected.

// RandomRange returns a uniform value in [lo, hi).
func RandomRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// RandomVec returns a vector with each component uniform in [lo, hi).
func RandomVec(rng *rand.Rand, lo, hi float64) Vec3 {
	return Vec3{
		RandomRange(rng, lo, hi),
		RandomRange(rng, lo, hi),
		RandomRange(rng, lo, hi),
	}
}

// RandomInUnitSphere returns a point uniformly distributed inside the unit ball.
func RandomInUnitSphere(rng *rand.Rand) Vec3 {
	for {
		p := RandomVec(rng, -1, 1)
		if p.LenSq() < 1 {
			return p
		}
	}
}

// RandomUnitVector returns a direction uniformly distributed on the unit
// sphere surface.
func RandomUnitVector(rng *rand.Rand) Vec3 {
	for {
		p := RandomVec(rng, -1, 1)
		lensq := p.LenSq()
		// Tiny candidates would blow up when divided by their length.
		if lensq > 1e-160 && lensq < 1 {
			return p.Div(math.Sqrt(lensq))
		}
	}
}

// RandomInHemisphere returns a unit direction on the hemisphere around normal.
func RandomInHemisphere(rng *rand.Rand, normal Vec3) Vec3 {
	v := RandomUnitVector(rng)
	if v.Dot(normal) > 0 {
		return v
	}
	return v.Negate()
}

// RandomInUnitDisk returns a point uniformly distributed inside the unit disk
// in the XY plane.
func RandomInUnitDisk(rng *rand.Rand) Vec3 {
	for {
		p := Vec3{RandomRange(rng, -1, 1), RandomRange(rng, -1, 1), 0}
		if p.LenSq() < 1 {
			return p
		}
	}
}

// RandomColor returns a color with each channel uniform in [lo, hi).
func RandomColor(rng *rand.Rand, lo, hi float64) Color {
	return Color{
		RandomRange(rng, lo, hi),
		RandomRange(rng, lo, hi),
		RandomRange(rng, lo, hi),
	}
}
