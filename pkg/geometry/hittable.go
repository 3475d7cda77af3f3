// Package geometry provides the primitives rays are intersected against.
package geometry

import (
	"github.com/taigrr/pathtrace/pkg/material"
	"github.com/taigrr/pathtrace/pkg/math3d"
)

// Hittable is anything that can report its nearest intersection with a ray
// inside the open interval (tMin, tMax).
type Hittable interface {
	Hit(r math3d.Ray, tMin, tMax float64) (material.HitRecord, bool)
}

// Scene is an ordered collection of primitives queried for the nearest hit.
// Primitives are added while building the scene and never mutated after;
// a Scene is safe for concurrent Hit calls once rendering starts.
type Scene struct {
	objects []Hittable
}

// NewScene creates a scene holding the given primitives.
func NewScene(objects ...Hittable) *Scene {
	s := &Scene{}
	for _, o := range objects {
		s.Add(o)
	}
	return s
}

// Add appends a primitive. Nil values are ignored.
func (s *Scene) Add(h Hittable) {
	if h == nil {
		return
	}
	s.objects = append(s.objects, h)
}

// Clear removes every primitive.
func (s *Scene) Clear() {
	s.objects = nil
}

// Len returns the number of primitives.
func (s *Scene) Len() int {
	return len(s.objects)
}

// Objects returns a copy of the primitive list in insertion order.
func (s *Scene) Objects() []Hittable {
	out := make([]Hittable, len(s.objects))
	copy(out, s.objects)
	return out
}

// Hit tests every primitive, shrinking the upper bound to the closest hit so
// far, and returns the nearest one. The sweep is linear in the number of
// primitives; there is no spatial index.
func (s *Scene) Hit(r math3d.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	var closest material.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for _, o := range s.objects {
		if rec, ok := o.Hit(r, tMin, closestSoFar); ok {
			hitAnything = true
			closestSoFar = rec.T
			closest = rec
		}
	}

	return closest, hitAnything
}
