package layout

import (
	"math"
	"math/rand"

	"github.com/coreman2200/funtimes-evergreen/internal/geom"
)

// GoldenAngle spaces consecutive spiral points without visible banding.
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

// Tree describes the cone every formed layout is fitted to. The base sits at y=0.
type Tree struct {
	Height float64
	Radius float64

	// ChaosRadius bounds the scattered arrangement around ChaosCenter.
	ChaosRadius float64
	ChaosCenter geom.Vec3

	// OrnamentLift offsets the ornament chaos shell above the tree centre.
	OrnamentLift float64
	// CardOffset pushes photo rings outside the foliage surface.
	CardOffset float64
}

func DefaultTree() Tree {
	return Tree{
		Height:       14,
		Radius:       5.5,
		ChaosRadius:  15,
		ChaosCenter:  geom.V(0, 6, 0),
		OrnamentLift: 3,
		CardOffset:   1.2,
	}
}

// Center is the fixed point particles expand away from.
func (t Tree) Center() geom.Vec3 { return geom.V(0, t.Height/2, 0) }

// Top is the apex of the cone.
func (t Tree) Top() geom.Vec3 { return geom.V(0, t.Height, 0) }

// RadiusAt returns the cone radius at height y, clamped to the cone.
func (t Tree) RadiusAt(y float64) float64 {
	if t.Height <= 0 {
		return 0
	}
	return t.Radius * (1 - geom.Clamp01(y/t.Height))
}

// inSphere samples uniformly inside a sphere; the cube root keeps volumetric density flat.
func inSphere(rng *rand.Rand, center geom.Vec3, radius float64) geom.Vec3 {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)
	r := radius * math.Cbrt(rng.Float64())
	return center.Add(geom.V(
		r*math.Sin(phi)*math.Cos(theta),
		r*math.Cos(phi),
		r*math.Sin(phi)*math.Sin(theta),
	))
}

// onShell samples a random direction at a radius in [inner, outer).
func onShell(rng *rand.Rand, center geom.Vec3, inner, outer float64) geom.Vec3 {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)
	r := inner + (outer-inner)*rng.Float64()
	return center.Add(geom.V(
		r*math.Sin(phi)*math.Cos(theta),
		r*math.Cos(phi),
		r*math.Sin(phi)*math.Sin(theta),
	))
}
