package material

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(3, 5))
}

func vecNear(a, b math3d.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// upHit is a hit on the top of a surface facing +Y.
func upHit(m Material) HitRecord {
	return HitRecord{
		Point:     math3d.P3(0, 0, -1),
		Normal:    math3d.V3(0, 1, 0),
		T:         1,
		FrontFace: true,
		Material:  m,
	}
}

func TestSetFaceNormal(t *testing.T) {
	outward := math3d.V3(0, 0, 1)

	tests := []struct {
		name       string
		dir        math3d.Vec3
		wantFront  bool
		wantNormal math3d.Vec3
	}{
		{"from outside", math3d.V3(0, 0, -1), true, outward},
		{"from inside", math3d.V3(0, 0, 1), false, outward.Negate()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var rec HitRecord
			rec.SetFaceNormal(math3d.NewRay(math3d.Origin(), tc.dir), outward)
			if rec.FrontFace != tc.wantFront {
				t.Errorf("FrontFace = %v, want %v", rec.FrontFace, tc.wantFront)
			}
			if rec.Normal != tc.wantNormal {
				t.Errorf("Normal = %v, want %v", rec.Normal, tc.wantNormal)
			}
			if rec.Normal.Dot(tc.dir) >= 0 {
				t.Error("normal should oppose the incoming ray")
			}
		})
	}
}

func TestLambertianAlwaysScatters(t *testing.T) {
	albedo := math3d.RGB(0.5, 0.3, 0.1)
	l := NewLambertian(albedo)
	rec := upHit(l)
	in := math3d.NewRay(math3d.P3(0, 1, -1), math3d.V3(0, -1, 0))
	rng := newRNG()

	for range 1000 {
		sr, ok := l.Scatter(in, rec, rng)
		if !ok {
			t.Fatal("Lambertian material should always scatter")
		}
		if sr.Attenuation != albedo {
			t.Fatalf("attenuation = %v, want %v", sr.Attenuation, albedo)
		}
		if sr.Scattered.Origin != rec.Point {
			t.Fatalf("scattered origin = %v, want hit point %v", sr.Scattered.Origin, rec.Point)
		}
		if sr.Scattered.Direction.NearZero() {
			t.Fatal("scattered direction should never be degenerate")
		}
		if sr.Scattered.Direction.Dot(rec.Normal) < 0 {
			t.Fatalf("scattered direction %v points into the surface", sr.Scattered.Direction)
		}
	}
}

func TestMetalReflection(t *testing.T) {
	albedo := math3d.RGB(0.8, 0.8, 0.8)
	m := NewMetal(albedo, 0)
	rec := upHit(m)
	in := math3d.NewRay(math3d.P3(-1, 1, -1), math3d.V3(1, -1, 0))

	sr, ok := m.Scatter(in, rec, newRNG())
	if !ok {
		t.Fatal("mirror reflection off the surface should scatter")
	}
	want := math3d.V3(1, 1, 0).Normalize()
	if !vecNear(sr.Scattered.Direction, want, 1e-12) {
		t.Errorf("reflected = %v, want %v", sr.Scattered.Direction, want)
	}
	if sr.Attenuation != albedo {
		t.Errorf("attenuation = %v, want %v", sr.Attenuation, albedo)
	}
}

func TestMetalAbsorbsReflectionIntoSurface(t *testing.T) {
	m := NewMetal(math3d.RGB(0.8, 0.8, 0.8), 0)
	rec := upHit(m)
	// Coming from below the normal: the mirror direction goes into the surface.
	in := math3d.NewRay(math3d.P3(-1, -1, -1), math3d.V3(1, 1, 0))

	if _, ok := m.Scatter(in, rec, newRNG()); ok {
		t.Error("reflection into the surface should be absorbed")
	}
}

func TestMetalFuzzClamped(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.3, 0.3},
		{2, 1},
	}
	for _, tc := range tests {
		if got := NewMetal(math3d.White(), tc.in).Fuzz; got != tc.want {
			t.Errorf("NewMetal(fuzz=%v).Fuzz = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMetalFuzzyStaysAboveSurface(t *testing.T) {
	m := NewMetal(math3d.White(), 0.9)
	rec := upHit(m)
	in := math3d.NewRay(math3d.P3(-1, 1, -1), math3d.V3(1, -1, 0))
	rng := newRNG()

	for range 500 {
		if sr, ok := m.Scatter(in, rec, rng); ok && sr.Scattered.Direction.Dot(rec.Normal) <= 0 {
			t.Fatalf("scattered ray %v below surface", sr.Scattered.Direction)
		}
	}
}

func TestDielectricNormalIncidence(t *testing.T) {
	d := NewDielectric(1.5)
	rec := HitRecord{
		Point:     math3d.P3(0, 0, -0.5),
		Normal:    math3d.V3(0, 0, 1),
		FrontFace: true,
		Material:  d,
	}
	in := math3d.NewRay(math3d.Origin(), math3d.V3(0, 0, -1))

	sr, ok := d.Scatter(in, rec, newRNG())
	if !ok {
		t.Fatal("dielectric should always scatter")
	}
	if !vecNear(sr.Scattered.Direction, in.Direction, 1e-12) {
		t.Errorf("direction = %v, want %v", sr.Scattered.Direction, in.Direction)
	}
	if sr.Attenuation != math3d.White() {
		t.Errorf("attenuation = %v, want white", sr.Attenuation)
	}
}

func TestDielectricRefractiveIndexSanitized(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.5, 1.5},
		{0.8, 0.8},
		{0, 1},
		{-1.5, 1},
		{math.NaN(), 1},
		{math.Inf(1), 1},
	}

	for _, tc := range tests {
		if got := NewDielectric(tc.in).RefractiveIndex; got != tc.want {
			t.Errorf("NewDielectric(%v).RefractiveIndex = %v, want %v", tc.in, got, tc.want)
		}
	}

	d := NewDielectric(math.NaN())
	rec := HitRecord{Point: math3d.P3(0, 0, -0.5), FrontFace: true, Material: d}
	rec.Normal = math3d.V3(0.3, 0, 1).Normalize()
	in := math3d.NewRay(math3d.Origin(), math3d.V3(0, 0, -1))
	sr, _ := d.Scatter(in, rec, newRNG())
	dir := sr.Scattered.Direction
	if math.IsNaN(dir.X) || math.IsNaN(dir.Y) || math.IsNaN(dir.Z) {
		t.Errorf("scattered direction %v contains NaN", dir)
	}
}

func TestDielectricTotalInternalReflection(t *testing.T) {
	d := NewDielectric(1.5)
	// Leaving the glass at 60 degrees: 1.5 * sin(60) > 1.
	theta := math.Pi / 3
	dir := math3d.V3(math.Sin(theta), math.Cos(theta), 0)
	rec := HitRecord{
		Point:     math3d.Origin(),
		Normal:    math3d.V3(0, -1, 0),
		FrontFace: false,
		Material:  d,
	}

	sr, ok := d.Scatter(math3d.NewRay(math3d.P3(0, -1, 0), dir), rec, newRNG())
	if !ok {
		t.Fatal("dielectric should always scatter")
	}
	want := dir.Reflect(rec.Normal)
	if !vecNear(sr.Scattered.Direction, want, 1e-12) {
		t.Errorf("direction = %v, want reflected %v", sr.Scattered.Direction, want)
	}
}

func TestDielectricRefractsEnteringGlass(t *testing.T) {
	d := NewDielectric(1.5)
	theta := math.Pi / 4
	dir := math3d.V3(math.Sin(theta), -math.Cos(theta), 0)
	rec := upHit(d)

	sr, _ := d.Scatter(math3d.NewRay(math3d.P3(-1, 1, -1), dir), rec, newRNG())
	got := sr.Scattered.Direction
	if got.Y >= 0 {
		t.Fatalf("refracted ray should continue downward, got %v", got)
	}
	if want := math.Sin(theta) / 1.5; math.Abs(got.X-want) > 1e-9 {
		t.Errorf("sin(theta_t) = %v, want %v", got.X, want)
	}
}

func TestAbsorberNeverScatters(t *testing.T) {
	var a Absorber
	if _, ok := a.Scatter(math3d.NewRay(math3d.Origin(), math3d.V3(0, -1, 0)), upHit(a), newRNG()); ok {
		t.Error("absorber should never scatter")
	}
}

func TestMaterialsShareable(t *testing.T) {
	var _ Material = (*Lambertian)(nil)
	var _ Material = (*Metal)(nil)
	var _ Material = (*Dielectric)(nil)
	var _ Material = Absorber{}
}
