package models

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/pathtrace/pkg/geometry"
	"github.com/taigrr/pathtrace/pkg/material"
	"github.com/taigrr/pathtrace/pkg/math3d"
	"github.com/taigrr/pathtrace/pkg/render"
)

const generator = "pathtrace"

// ToDocument describes a scene as a glTF document that FromDocument reads
// back. Spheres become mesh-less nodes with shape extras, materials are
// deduplicated, and the scene camera becomes a perspective camera node.
// Only spheres are exported.
func ToDocument(s *Scene) (*gltf.Document, error) {
	doc := &gltf.Document{
		Asset: gltf.Asset{Version: "2.0", Generator: generator},
	}
	root := &gltf.Scene{Name: s.Name}

	matIndex := make(map[material.Material]int)
	for i, obj := range s.World.Objects() {
		sphere, ok := obj.(*geometry.Sphere)
		if !ok {
			return nil, fmt.Errorf("object %d: cannot export %T", i, obj)
		}

		idx, ok := matIndex[sphere.Material()]
		if !ok {
			m, err := exportMaterial(doc, sphere.Material())
			if err != nil {
				return nil, fmt.Errorf("object %d: %w", i, err)
			}
			idx = len(doc.Materials)
			doc.Materials = append(doc.Materials, m)
			matIndex[sphere.Material()] = idx
		}

		c := sphere.Center()
		root.Nodes = append(root.Nodes, len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        fmt.Sprintf("sphere.%03d", i),
			Translation: [3]float64{c.X, c.Y, c.Z},
			Rotation:    [4]float64{0, 0, 0, 1},
			Scale:       [3]float64{1, 1, 1},
			Matrix:      [16]float64(math3d.Identity()),
			Extras: map[string]any{
				"shape":    sphereShapeName,
				"radius":   sphere.Radius(),
				"material": idx,
			},
		})
	}

	if s.HasCamera {
		node, err := exportCamera(doc, s.Camera)
		if err != nil {
			return nil, err
		}
		root.Nodes = append(root.Nodes, len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, node)
	}

	doc.Scenes = []*gltf.Scene{root}
	doc.Scene = ptr(0)
	return doc, nil
}

// SaveGLTF writes s to path, as binary glTF when path ends in .glb. An
// existing file is only replaced when overwrite is set.
func SaveGLTF(path string, s *Scene, overwrite bool) (err error) {
	doc, err := ToDocument(s)
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	enc := gltf.NewEncoder(f)
	enc.AsBinary = strings.EqualFold(filepath.Ext(path), ".glb")
	if !enc.AsBinary {
		enc.SetJSONIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode gltf: %w", err)
	}
	return nil
}

func exportMaterial(doc *gltf.Document, m material.Material) (*gltf.Material, error) {
	switch m := m.(type) {
	case *material.Lambertian:
		return pbrMaterial("lambertian", m.Albedo, 0, 1), nil
	case *material.Metal:
		return pbrMaterial("metal", m.Albedo, 1, m.Fuzz), nil
	case *material.Dielectric:
		useExtension(doc, extTransmission)
		useExtension(doc, extIOR)
		return &gltf.Material{
			Name: "dielectric",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{1, 1, 1, 1},
				MetallicFactor:  ptr(0.0),
				RoughnessFactor: ptr(0.0),
			},
			Extensions: gltf.Extensions{
				extTransmission: map[string]any{"transmissionFactor": 1.0},
				extIOR:          map[string]any{"ior": m.RefractiveIndex},
			},
		}, nil
	case material.Absorber, *material.Absorber:
		// A black diffuse surface absorbs every path just the same.
		return pbrMaterial("absorber", math3d.Black(), 0, 1), nil
	default:
		return nil, fmt.Errorf("cannot export material %T", m)
	}
}

func pbrMaterial(name string, albedo math3d.Color, metallic, roughness float64) *gltf.Material {
	return &gltf.Material{
		Name: name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{albedo.R, albedo.G, albedo.B, 1},
			MetallicFactor:  ptr(metallic),
			RoughnessFactor: ptr(roughness),
		},
	}
}

// exportCamera places a camera node whose local -Z axis looks at cfg.LookAt.
func exportCamera(doc *gltf.Document, cfg render.CameraConfig) (*gltf.Node, error) {
	cam, err := render.NewCamera(cfg)
	if err != nil {
		return nil, fmt.Errorf("export camera: %w", err)
	}
	u, v, w := cam.Basis()
	from := cfg.LookFrom

	idx := len(doc.Cameras)
	doc.Cameras = append(doc.Cameras, &gltf.Camera{
		Name: "camera",
		Perspective: &gltf.Perspective{
			Yfov:        cfg.VFOV * math.Pi / 180,
			AspectRatio: ptr(cfg.AspectRatio),
			Znear:       render.MinHitDistance,
		},
		Extras: map[string]any{
			"aperture":      cfg.Aperture,
			"focusDistance": cfg.FocusDist,
		},
	})

	return &gltf.Node{
		Name:   "camera",
		Camera: ptr(idx),
		Matrix: [16]float64{
			u.X, u.Y, u.Z, 0,
			v.X, v.Y, v.Z, 0,
			w.X, w.Y, w.Z, 0,
			from.X, from.Y, from.Z, 1,
		},
		Rotation: [4]float64{0, 0, 0, 1},
		Scale:    [3]float64{1, 1, 1},
	}, nil
}

func useExtension(doc *gltf.Document, name string) {
	for _, ext := range doc.ExtensionsUsed {
		if ext == name {
			return
		}
	}
	doc.ExtensionsUsed = append(doc.ExtensionsUsed, name)
}

func ptr[T any](v T) *T {
	return &v
}
