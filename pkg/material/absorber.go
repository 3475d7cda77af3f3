package material

import (
	"math/rand/v2"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

// Absorber swallows every ray. Surfaces using it render black.
type Absorber struct{}

// Scatter implements Material.
func (Absorber) Scatter(math3d.Ray, HitRecord, *rand.Rand) (ScatterRecord, bool) {
	return ScatterRecord{}, false
}
