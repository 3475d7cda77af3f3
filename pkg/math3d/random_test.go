package math3d

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestRandomSamplersStayInShape(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 54))
	normal := V3(0, 0, 1)

	for range 5000 {
		if p := RandomInUnitSphere(rng); p.LenSq() >= 1 {
			t.Fatalf("RandomInUnitSphere outside ball: %v", p)
		}
		if p := RandomInUnitDisk(rng); p.LenSq() >= 1 || p.Z != 0 {
			t.Fatalf("RandomInUnitDisk outside disk: %v", p)
		}
		if p := RandomUnitVector(rng); math.Abs(p.Len()-1) > 1e-9 {
			t.Fatalf("RandomUnitVector not unit: %v (len %v)", p, p.Len())
		}
		if p := RandomInHemisphere(rng, normal); p.Dot(normal) < 0 {
			t.Fatalf("RandomInHemisphere below surface: %v", p)
		}
		if v := RandomRange(rng, 0.5, 1); v < 0.5 || v >= 1 {
			t.Fatalf("RandomRange out of range: %v", v)
		}
	}
}

func TestRandomInUnitSphereCoversAllOctants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	var octants [8]int
	for range 4000 {
		p := RandomInUnitSphere(rng)
		i := 0
		if p.X < 0 {
			i |= 1
		}
		if p.Y < 0 {
			i |= 2
		}
		if p.Z < 0 {
			i |= 4
		}
		octants[i]++
	}
	for i, n := range octants {
		if n == 0 {
			t.Errorf("octant %d never sampled", i)
		}
	}
}

func TestRandomIsReproducible(t *testing.T) {
	a := rand.New(rand.NewPCG(9, 9))
	b := rand.New(rand.NewPCG(9, 9))
	for range 100 {
		if RandomUnitVector(a) != RandomUnitVector(b) {
			t.Fatal("same seed produced different samples")
		}
	}
}
