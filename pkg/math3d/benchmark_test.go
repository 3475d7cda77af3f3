package math3d

import (
	"math/rand/v2"
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateQuat(0, 0.2474, 0, 0.9689)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulPoint(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(Scale(V3(2, 2, 2)))
	p := P3(1, 2, 3)

	for b.Loop() {
		_ = m.MulPoint(p)
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	v1 := V3(1, 2, 3)
	v2 := V3(4, 5, 6)

	for b.Loop() {
		_ = v1.Cross(v2)
	}
}

func BenchmarkVec3Refract(b *testing.B) {
	v := V3(1, -1, 0).Normalize()
	n := V3(0, 1, 0)

	for b.Loop() {
		_ = v.Refract(n, 1/1.5)
	}
}

func BenchmarkRandomInUnitSphere(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))

	for b.Loop() {
		_ = RandomInUnitSphere(rng)
	}
}

func BenchmarkRandomUnitVector(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))

	for b.Loop() {
		_ = RandomUnitVector(rng)
	}
}
