package math3d

// Point3 is a position in 3D space. It is kept apart from Vec3 so positions
// and directions cannot be mixed up: the difference of two points is a
// vector, and a point plus a vector is a point.
type Point3 struct {
	X, Y, Z float64
}

// P3 creates a new Point3.
func P3(x, y, z float64) Point3 {
	return Point3{x, y, z}
}

// Origin returns the point (0, 0, 0).
func Origin() Point3 {
	return Point3{}
}

// Add returns the point displaced by v.
func (p Point3) Add(v Vec3) Point3 {
	return Point3{p.X + v.X, p.Y + v.Y, p.Z + v.Z}
}

// Sub returns the displacement from q to p.
func (p Point3) Sub(q Point3) Vec3 {
	return Vec3{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Distance returns the distance between two points.
func (p Point3) Distance(q Point3) float64 {
	return p.Sub(q).Len()
}

// Vec returns the displacement of p from the origin.
func (p Point3) Vec() Vec3 {
	return Vec3{p.X, p.Y, p.Z}
}
