package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/pathtrace/pkg/material"
	"github.com/taigrr/pathtrace/pkg/math3d"
)

var (
	// ErrInvalidRadius is returned for non-positive or non-finite radii.
	ErrInvalidRadius = errors.New("sphere radius must be positive and finite")
	// ErrNilMaterial is returned when a primitive is built without a material.
	ErrNilMaterial = errors.New("material is nil")
)

// Sphere is the only geometric primitive.
type Sphere struct {
	center   math3d.Point3
	radius   float64
	material material.Material
}

// NewSphere validates and creates a sphere. The material may be shared with
// other primitives.
func NewSphere(center math3d.Point3, radius float64, mat material.Material) (*Sphere, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("new sphere at %v: %w (got %v)", center, ErrInvalidRadius, radius)
	}
	if mat == nil {
		return nil, fmt.Errorf("new sphere at %v: %w", center, ErrNilMaterial)
	}
	return &Sphere{center: center, radius: radius, material: mat}, nil
}

// MustSphere is like NewSphere but panics on invalid input. It is meant for
// fixed scenes built in code.
func MustSphere(center math3d.Point3, radius float64, mat material.Material) *Sphere {
	s, err := NewSphere(center, radius, mat)
	if err != nil {
		panic(err)
	}
	return s
}

// Center returns the sphere center.
func (s *Sphere) Center() math3d.Point3 { return s.center }

// Radius returns the sphere radius.
func (s *Sphere) Radius() float64 { return s.radius }

// Material returns the sphere material.
func (s *Sphere) Material() material.Material { return s.material }

// Hit solves |O + tD - C|² = r² using the half-b form of the quadratic and
// returns the nearest root strictly inside (tMin, tMax).
func (s *Sphere) Hit(r math3d.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	oc := r.Origin.Sub(s.center)
	a := r.Direction.LenSq()
	if a == 0 {
		return material.HitRecord{}, false
	}
	halfB := oc.Dot(r.Direction)
	c := oc.LenSq() - s.radius*s.radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return material.HitRecord{}, false
	}

	sqrtd := math.Sqrt(discriminant)
	root := (-halfB - sqrtd) / a
	if root <= tMin || root >= tMax {
		root = (-halfB + sqrtd) / a
		if root <= tMin || root >= tMax {
			return material.HitRecord{}, false
		}
	}

	rec := material.HitRecord{
		T:        root,
		Point:    r.At(root),
		Material: s.material,
	}
	outward := rec.Point.Sub(s.center).Div(s.radius)
	rec.SetFaceNormal(r, outward)

	return rec, true
}
