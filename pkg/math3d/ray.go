package math3d

// Ray is the parametric line Origin + t·Direction.
type Ray struct {
	Origin    Point3
	Direction Vec3
}

// NewRay creates a new Ray.
func NewRay(origin Point3, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Point3 {
	return r.Origin.Add(r.Direction.Scale(t))
}
