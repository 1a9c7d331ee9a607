package layout

import (
	"math"
	"math/rand"

	"github.com/coreman2200/funtimes-evergreen/internal/geom"
)

// Particle is one immutable foliage record.
type Particle struct {
	Chaos  geom.Vec3
	Target geom.Vec3
	Seed   float64 // [0,1)
}

// Foliage builds n particles: chaos inside the chaos sphere, target on a golden-angle
// spiral cone. Heights rise and radii shrink monotonically with the index.
func Foliage(t Tree, n int, rng *rand.Rand) []Particle {
	if n <= 0 {
		return nil
	}
	out := make([]Particle, n)
	for i := range out {
		out[i] = Particle{
			Chaos:  inSphere(rng, t.ChaosCenter, t.ChaosRadius),
			Target: SpiralTarget(t, i, n),
			Seed:   rng.Float64(),
		}
	}
	return out
}

// SpiralTarget is the formed position of particle i of n.
func SpiralTarget(t Tree, i, n int) geom.Vec3 {
	frac := float64(i) / float64(max(n-1, 1))
	y := frac * t.Height
	r := t.RadiusAt(y)
	a := float64(i) * GoldenAngle
	return geom.V(r*math.Cos(a), y, r*math.Sin(a))
}
