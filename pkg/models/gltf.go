package models

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/pathtrace/pkg/geometry"
	"github.com/taigrr/pathtrace/pkg/material"
	"github.com/taigrr/pathtrace/pkg/math3d"
	"github.com/taigrr/pathtrace/pkg/render"
)

// Extension names read from glTF materials.
const (
	extTransmission = "KHR_materials_transmission"
	extIOR          = "KHR_materials_ior"
)

const (
	defaultIOR      = 1.5
	metallicCutoff  = 0.5
	maxNodeDepth    = 64
	sphereShapeName = "sphere"
)

// ErrNoSpheres is returned when a glTF document contains nothing renderable.
var ErrNoSpheres = errors.New("gltf document contains no spheres")

// nodeExtras is the sphere description carried in node or mesh extras.
type nodeExtras struct {
	Shape    string   `json:"shape"`
	Radius   *float64 `json:"radius"`
	Material *int     `json:"material"`
}

type transmissionExt struct {
	TransmissionFactor float64 `json:"transmissionFactor"`
}

type iorExt struct {
	IOR *float64 `json:"ior"`
}

// cameraExtras carries the thin-lens settings glTF cameras have no field for.
type cameraExtras struct {
	Aperture      *float64 `json:"aperture"`
	FocusDistance *float64 `json:"focusDistance"`
}

// LoadGLTF loads a .gltf or .glb file and converts its spheres and first
// camera into a scene.
func LoadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	scene, err := FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	if scene.Name == "" {
		scene.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scene, nil
}

// sceneBuilder walks a document's node graph.
type sceneBuilder struct {
	doc       *gltf.Document
	world     *geometry.Scene
	materials map[int]material.Material
	fallback  material.Material
	camera    *render.CameraConfig
}

// FromDocument converts a decoded glTF document into a scene.
//
// A node is a sphere when its extras (or its mesh's extras) carry
// "shape": "sphere", or when its mesh name contains "sphere". The sphere is
// centered on the node's world origin; its radius is the "radius" extra, or
// else the farthest mesh vertex from the mesh origin, scaled by the largest
// world scale axis. The first camera node found becomes the scene camera.
func FromDocument(doc *gltf.Document) (*Scene, error) {
	b := &sceneBuilder{
		doc:       doc,
		world:     geometry.NewScene(),
		materials: make(map[int]material.Material),
	}

	roots, name := rootNodes(doc)
	for _, idx := range roots {
		if err := b.visit(idx, math3d.Identity(), 0); err != nil {
			return nil, err
		}
	}

	if b.world.Len() == 0 {
		return nil, ErrNoSpheres
	}

	scene := &Scene{Name: name, World: b.world}
	if b.camera != nil {
		scene.Camera = *b.camera
		scene.HasCamera = true
	}
	return scene, nil
}

// rootNodes returns the nodes of the default scene, or every parentless
// node when the document declares no scenes.
func rootNodes(doc *gltf.Document) ([]int, string) {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes, doc.Scenes[idx].Name
	}

	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots, ""
}

func (b *sceneBuilder) visit(idx int, parent math3d.Mat4, depth int) error {
	if depth > maxNodeDepth {
		return fmt.Errorf("node %d: hierarchy deeper than %d", idx, maxNodeDepth)
	}
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return fmt.Errorf("node index %d out of range", idx)
	}

	node := b.doc.Nodes[idx]
	world := parent.Mul(localTransform(node))

	if node.Camera != nil && b.camera == nil {
		cfg, err := b.cameraConfig(node, world)
		if err != nil {
			return fmt.Errorf("node %d camera: %w", idx, err)
		}
		b.camera = cfg
	}

	if err := b.addSphere(node, world); err != nil {
		return fmt.Errorf("node %d (%s): %w", idx, node.Name, err)
	}

	for _, child := range node.Children {
		if err := b.visit(child, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// addSphere adds node as a sphere if it describes one.
func (b *sceneBuilder) addSphere(node *gltf.Node, world math3d.Mat4) error {
	var extras nodeExtras
	if err := decodeJSON(node.Extras, &extras); err != nil {
		return fmt.Errorf("extras: %w", err)
	}

	var mesh *gltf.Mesh
	if node.Mesh != nil {
		if *node.Mesh < 0 || *node.Mesh >= len(b.doc.Meshes) {
			return fmt.Errorf("mesh index %d out of range", *node.Mesh)
		}
		mesh = b.doc.Meshes[*node.Mesh]
		if extras.Shape == "" {
			var meshExtras nodeExtras
			if err := decodeJSON(mesh.Extras, &meshExtras); err != nil {
				return fmt.Errorf("mesh extras: %w", err)
			}
			if extras.Radius == nil {
				extras.Radius = meshExtras.Radius
			}
			extras.Shape = meshExtras.Shape
		}
	}

	isSphere := strings.EqualFold(extras.Shape, sphereShapeName) ||
		(mesh != nil && strings.Contains(strings.ToLower(mesh.Name), sphereShapeName))
	if !isSphere {
		return nil
	}

	radius := 1.0
	switch {
	case extras.Radius != nil:
		radius = *extras.Radius
	case mesh != nil:
		r, err := b.meshRadius(mesh)
		if err != nil {
			return err
		}
		if r > 0 {
			radius = r
		}
	}
	radius *= world.ScaleFactors().MaxComponent()

	matIdx := extras.Material
	if matIdx == nil && mesh != nil {
		for _, prim := range mesh.Primitives {
			if prim.Material != nil {
				matIdx = prim.Material
				break
			}
		}
	}
	mat, err := b.lookupMaterial(matIdx)
	if err != nil {
		return err
	}

	sphere, err := geometry.NewSphere(world.Translation(), radius, mat)
	if err != nil {
		return err
	}
	b.world.Add(sphere)
	return nil
}

// meshRadius is the largest distance from the mesh origin to any vertex.
func (b *sceneBuilder) meshRadius(mesh *gltf.Mesh) (float64, error) {
	var radius float64
	for _, prim := range mesh.Primitives {
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(b.doc, posIdx)
		if err != nil {
			return 0, fmt.Errorf("read positions: %w", err)
		}
		for _, p := range positions {
			radius = math.Max(radius, p.Len())
		}
	}
	return radius, nil
}

// lookupMaterial converts and caches a glTF material so spheres that share a
// material index share one instance.
func (b *sceneBuilder) lookupMaterial(idx *int) (material.Material, error) {
	if idx == nil {
		if b.fallback == nil {
			b.fallback = material.NewLambertian(math3d.RGB(0.5, 0.5, 0.5))
		}
		return b.fallback, nil
	}
	if mat, ok := b.materials[*idx]; ok {
		return mat, nil
	}
	if *idx < 0 || *idx >= len(b.doc.Materials) {
		return nil, fmt.Errorf("material index %d out of range", *idx)
	}

	mat, err := convertMaterial(b.doc.Materials[*idx])
	if err != nil {
		return nil, fmt.Errorf("material %d: %w", *idx, err)
	}
	b.materials[*idx] = mat
	return mat, nil
}

// convertMaterial maps a PBR metallic-roughness material onto the closest
// scattering model: transmissive surfaces become dielectrics, mostly
// metallic ones become metal with roughness as fuzz, and the rest are
// diffuse.
func convertMaterial(m *gltf.Material) (material.Material, error) {
	var transmission transmissionExt
	if raw, ok := m.Extensions[extTransmission]; ok {
		if err := decodeJSON(raw, &transmission); err != nil {
			return nil, fmt.Errorf("%s: %w", extTransmission, err)
		}
	}
	if transmission.TransmissionFactor > 0 {
		ior := defaultIOR
		if raw, ok := m.Extensions[extIOR]; ok {
			var ext iorExt
			if err := decodeJSON(raw, &ext); err != nil {
				return nil, fmt.Errorf("%s: %w", extIOR, err)
			}
			if ext.IOR != nil && *ext.IOR > 0 {
				ior = *ext.IOR
			}
		}
		return material.NewDielectric(ior), nil
	}

	pbr := m.PBRMetallicRoughness
	if pbr == nil {
		pbr = &gltf.PBRMetallicRoughness{}
	}
	base := pbr.BaseColorFactorOrDefault()
	albedo := math3d.RGB(base[0], base[1], base[2])

	if pbr.MetallicFactorOrDefault() >= metallicCutoff {
		return material.NewMetal(albedo, pbr.RoughnessFactorOrDefault()), nil
	}
	return material.NewLambertian(albedo), nil
}

// cameraConfig builds a camera looking down the node's local -Z axis.
func (b *sceneBuilder) cameraConfig(node *gltf.Node, world math3d.Mat4) (*render.CameraConfig, error) {
	if *node.Camera < 0 || *node.Camera >= len(b.doc.Cameras) {
		return nil, fmt.Errorf("camera index %d out of range", *node.Camera)
	}
	cam := b.doc.Cameras[*node.Camera]

	cfg := render.DefaultCameraConfig()
	if p := cam.Perspective; p != nil {
		if p.Yfov > 0 {
			cfg.VFOV = p.Yfov * 180 / math.Pi
		}
		if p.AspectRatio != nil && *p.AspectRatio > 0 {
			cfg.AspectRatio = *p.AspectRatio
		}
	}

	var extras cameraExtras
	if err := decodeJSON(cam.Extras, &extras); err != nil {
		return nil, fmt.Errorf("extras: %w", err)
	}
	if extras.Aperture != nil {
		cfg.Aperture = *extras.Aperture
	}
	if extras.FocusDistance != nil {
		cfg.FocusDist = *extras.FocusDistance
	}

	forward, err := world.MulVec3Dir(math3d.V3(0, 0, -1)).Unit()
	if err != nil {
		return nil, fmt.Errorf("view direction: %w", err)
	}
	up, err := world.MulVec3Dir(math3d.Up()).Unit()
	if err != nil {
		return nil, fmt.Errorf("up direction: %w", err)
	}

	cfg.LookFrom = world.Translation()
	cfg.LookAt = cfg.LookFrom.Add(forward)
	cfg.VUp = up
	if _, err := render.NewCamera(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// localTransform returns the node's matrix, or its TRS properties composed
// when no matrix is set.
func localTransform(n *gltf.Node) math3d.Mat4 {
	m := math3d.Mat4(n.MatrixOrDefault())
	if m != (math3d.Mat4{}) && m != math3d.Identity() {
		return m
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	if r == ([4]float64{}) {
		r = [4]float64{0, 0, 0, 1}
	}
	s := n.ScaleOrDefault()
	if s == ([3]float64{}) {
		s = [3]float64{1, 1, 1}
	}
	return math3d.TRS(math3d.V3(t[0], t[1], t[2]), r, math3d.V3(s[0], s[1], s[2]))
}

// decodeJSON decodes glTF extras or extension payloads into out. Values read
// from a file arrive as raw JSON; values built in memory are plain Go data.
func decodeJSON(v any, out any) error {
	var data []byte
	switch v := v.(type) {
	case nil:
		return nil
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return err
		}
	}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	// Extras may be any JSON value; only objects describe spheres.
	if data[0] != '{' {
		return nil
	}
	return json.Unmarshal(data, out)
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected FLOAT components, got %v", accessor.ComponentType)
	}

	data, err := accessorBytes(doc, accessor)
	if err != nil {
		return nil, err
	}

	stride := doc.BufferViews[*accessor.BufferView].ByteStride
	if stride == 0 {
		stride = 12 // 3 floats * 4 bytes
	}
	if need := (accessor.Count-1)*stride + 12; accessor.Count > 0 && need > len(data) {
		return nil, fmt.Errorf("accessor needs %d bytes, buffer view has %d", need, len(data))
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range accessor.Count {
		offset := i * stride
		result[i] = math3d.V3(
			float64(readFloat32(data[offset:])),
			float64(readFloat32(data[offset+4:])),
			float64(readFloat32(data[offset+8:])),
		)
	}
	return result, nil
}

// accessorBytes returns the accessor's bytes, starting at its first element.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor) ([]byte, error) {
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView < 0 || *accessor.BufferView >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view index %d out of range", *accessor.BufferView)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer < 0 || bufferView.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bufferView.Buffer)
	}

	bufData := doc.Buffers[bufferView.Buffer].Data
	if bufData == nil {
		return nil, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	end := bufferView.ByteOffset + bufferView.ByteLength
	if start > end || end > len(bufData) {
		return nil, fmt.Errorf("buffer view [%d:%d] outside buffer of %d bytes", start, end, len(bufData))
	}
	return bufData[start:end], nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
