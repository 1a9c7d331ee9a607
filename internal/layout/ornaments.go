package layout

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-evergreen/internal/geom"
)

// Kind selects an ornament family.
type Kind int

const (
	Ball Kind = iota
	Gift
	Light
)

func (k Kind) String() string {
	switch k {
	case Ball:
		return "ball"
	case Gift:
		return "gift"
	case Light:
		return "light"
	default:
		return "unknown"
	}
}

// BottomBias is the exponent applied to a uniform height sample.
const BottomBias = 2.5

// Ornament is the static descriptor of one instance.
type Ornament struct {
	Chaos          geom.Vec3
	Target         geom.Vec3
	Kind           Kind
	Color          colorful.Color
	Scale          float64
	Speed          float64
	RotationOffset float64
	Seed           float64 // per-instance expand factor, [0,1)
}

type family struct {
	surface            float64 // fraction of the cone radius
	scaleMin, scaleMax float64
	speedMin, speedMax float64
	palette            []colorful.Color
}

var families = map[Kind]family{
	Ball: {
		surface: 0.95, scaleMin: 0.25, scaleMax: 0.45, speedMin: 0.6, speedMax: 1.6,
		palette: []colorful.Color{
			{R: 0.80, G: 0.05, B: 0.08}, // red
			{R: 0.95, G: 0.72, B: 0.20}, // gold
			{R: 0.78, G: 0.80, B: 0.84}, // silver
			{R: 0.08, G: 0.20, B: 0.58}, // deep blue
		},
	},
	Gift: {
		surface: 0.82, scaleMin: 0.35, scaleMax: 0.6, speedMin: 0.4, speedMax: 0.9,
		palette: []colorful.Color{
			{R: 0.75, G: 0.06, B: 0.10},
			{R: 0.05, G: 0.45, B: 0.18},
			{R: 0.92, G: 0.70, B: 0.22},
			{R: 0.95, G: 0.95, B: 0.93},
		},
	},
	Light: {
		surface: 1.02, scaleMin: 0.08, scaleMax: 0.12, speedMin: 1.2, speedMax: 3.0,
		palette: []colorful.Color{
			{R: 1.00, G: 0.86, B: 0.60}, // warm white
			{R: 1.00, G: 0.70, B: 0.25},
			{R: 1.00, G: 0.25, B: 0.20},
			{R: 0.35, G: 0.55, B: 1.00},
		},
	},
}

// Ornaments builds n instances of one kind. Heights follow H*u^BottomBias so density
// grows toward the base; chaos positions sit in a shell above the tree centre.
func Ornaments(t Tree, kind Kind, n int, rng *rand.Rand) []Ornament {
	if n <= 0 {
		return nil
	}
	fam, ok := families[kind]
	if !ok {
		fam = families[Ball]
	}
	shell := t.Center().Add(geom.V(0, t.OrnamentLift, 0))
	out := make([]Ornament, n)
	for i := range out {
		y := t.Height * 0.92 * math.Pow(rng.Float64(), BottomBias)
		r := t.RadiusAt(y) * fam.surface
		a := rng.Float64() * 2 * math.Pi
		out[i] = Ornament{
			Chaos:          onShell(rng, shell, t.ChaosRadius*0.6, t.ChaosRadius),
			Target:         geom.V(r*math.Cos(a), y, r*math.Sin(a)),
			Kind:           kind,
			Color:          fam.palette[rng.Intn(len(fam.palette))],
			Scale:          fam.scaleMin + (fam.scaleMax-fam.scaleMin)*rng.Float64(),
			Speed:          fam.speedMin + (fam.speedMax-fam.speedMin)*rng.Float64(),
			RotationOffset: rng.Float64() * 2 * math.Pi,
			Seed:           rng.Float64(),
		}
	}
	return out
}
