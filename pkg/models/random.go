package models

import (
	"math/rand/v2"

	"github.com/taigrr/pathtrace/pkg/geometry"
	"github.com/taigrr/pathtrace/pkg/material"
	"github.com/taigrr/pathtrace/pkg/math3d"
	"github.com/taigrr/pathtrace/pkg/render"
)

// heroClearance keeps small spheres from overlapping the large metal one.
const heroClearance = 0.9

// RandomScene builds the classic cover scene: a large gray ground sphere,
// a grid of small randomly chosen spheres and three large spheres of glass,
// diffuse brown and polished metal. The layout depends only on rng.
func RandomScene(rng *rand.Rand) *Scene {
	world := geometry.NewScene()

	ground := material.NewLambertian(math3d.RGB(0.5, 0.5, 0.5))
	world.Add(geometry.MustSphere(math3d.P3(0, -1000, 0), 1000, ground))

	hero := math3d.P3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			choose := rng.Float64()
			center := math3d.P3(
				float64(a)+0.9*rng.Float64(),
				0.2,
				float64(b)+0.9*rng.Float64(),
			)
			if center.Distance(hero) <= heroClearance {
				continue
			}

			var mat material.Material
			switch {
			case choose < 0.8:
				albedo := math3d.RandomColor(rng, 0, 1).Mul(math3d.RandomColor(rng, 0, 1))
				mat = material.NewLambertian(albedo)
			case choose < 0.95:
				albedo := math3d.RandomColor(rng, 0.5, 1)
				fuzz := math3d.RandomRange(rng, 0, 0.5)
				mat = material.NewMetal(albedo, fuzz)
			default:
				mat = material.NewDielectric(1.5)
			}
			world.Add(geometry.MustSphere(center, 0.2, mat))
		}
	}

	world.Add(geometry.MustSphere(math3d.P3(0, 1, 0), 1, material.NewDielectric(1.5)))
	world.Add(geometry.MustSphere(math3d.P3(-4, 1, 0), 1, material.NewLambertian(math3d.RGB(0.4, 0.2, 0.1))))
	world.Add(geometry.MustSphere(math3d.P3(4, 1, 0), 1, material.NewMetal(math3d.RGB(0.7, 0.6, 0.5), 0)))

	return &Scene{
		Name:      "random",
		World:     world,
		Camera:    DemoCamera(16.0 / 9.0),
		HasCamera: true,
	}
}

// DemoCamera frames RandomScene from slightly above the ground.
func DemoCamera(aspect float64) render.CameraConfig {
	return render.CameraConfig{
		LookFrom:    math3d.P3(13, 2, 3),
		LookAt:      math3d.Origin(),
		VUp:         math3d.Up(),
		VFOV:        20,
		AspectRatio: aspect,
		Aperture:    0.1,
		FocusDist:   10,
	}
}
