// Package math3d provides the vector, point, color and ray algebra used by
// the path tracer.
package math3d

import (
	"errors"
	"math"
)

// ErrDegenerateVector is returned when a zero-length vector would have to be
// normalized.
var ErrDegenerateVector = errors.New("degenerate vector")

// nearZeroEps is the per-component threshold below which a vector is
// considered degenerate.
const nearZeroEps = 1e-8

// Vec3 is a direction or displacement in 3D space.
type Vec3 struct {
	X, Y, Z float64
}

// V3 creates a new Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Zero3 returns the zero vector.
func Zero3() Vec3 {
	return Vec3{}
}

// Up returns the world up vector (0, 1, 0).
func Up() Vec3 {
	return Vec3{0, 1, 0}
}

// Add returns the vector sum a + b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns the vector difference a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Mul returns the component-wise product a * b.
func (a Vec3) Mul(b Vec3) Vec3 {
	return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

// Scale returns the scalar product a * s.
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

// Div returns the scalar division a / s.
func (a Vec3) Div(s float64) Vec3 {
	return Vec3{a.X / s, a.Y / s, a.Z / s}
}

// Dot returns the dot product a · b.
func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the length (magnitude) of the vector.
func (a Vec3) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// LenSq returns the squared length (faster, no sqrt).
func (a Vec3) LenSq() float64 {
	return a.X*a.X + a.Y*a.Y + a.Z*a.Z
}

// Normalize returns the unit vector in the same direction.
// The zero vector normalizes to the zero vector instead of NaN; use Unit
// where a degenerate input must be reported.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}
}

// Unit returns the unit vector in the same direction, or ErrDegenerateVector
// if a has zero or non-finite length.
func (a Vec3) Unit() (Vec3, error) {
	l := a.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec3{}, ErrDegenerateVector
	}
	return a.Div(l), nil
}

// NearZero reports whether every component is below 1e-8 in magnitude.
func (a Vec3) NearZero() bool {
	return math.Abs(a.X) < nearZeroEps && math.Abs(a.Y) < nearZeroEps && math.Abs(a.Z) < nearZeroEps
}

// Negate returns the negated vector.
func (a Vec3) Negate() Vec3 {
	return Vec3{-a.X, -a.Y, -a.Z}
}

// Lerp returns the linear interpolation between a and b by t.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return Vec3{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// Reflect returns the reflection of a around normal n.
func (a Vec3) Reflect(n Vec3) Vec3 {
	return a.Sub(n.Scale(2 * a.Dot(n)))
}

// Refract bends the unit vector a through a surface with unit normal n using
// Snell's law, where etaRatio is η_incident / η_transmitted.
// Callers check for total internal reflection first.
func (a Vec3) Refract(n Vec3, etaRatio float64) Vec3 {
	cosTheta := math.Min(a.Negate().Dot(n), 1)
	perp := a.Add(n.Scale(cosTheta)).Scale(etaRatio)
	parallel := n.Scale(-math.Sqrt(math.Abs(1 - perp.LenSq())))
	return perp.Add(parallel)
}

// MaxComponent returns the largest component.
func (a Vec3) MaxComponent() float64 {
	return math.Max(a.X, math.Max(a.Y, a.Z))
}
