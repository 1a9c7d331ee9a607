package foliage

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-evergreen/internal/geom"
	"github.com/coreman2200/funtimes-evergreen/internal/layout"
)

// Uniforms are the per-frame scalars shared by every particle.
type Uniforms struct {
	Progress float64 // 0 chaos .. 1 formed, linear
	Expand   float64 // 0..1
	Time     float64
}

// Params tune the particle program.
type Params struct {
	Stagger      float64 // how much the seed delays a particle's own progress
	ExpandBase   float64 // world units pushed out at Expand=1
	ExpandJitter float64 // extra push scaled by seed
	BreathAmp    float64
	DriftAmp     float64
	SparkleSpeed float64
	SparkleSharp float64
	Size         float64

	Center geom.Vec3

	ChaosColor colorful.Color
	DeepGreen  colorful.Color
	LightGreen colorful.Color
	Sparkle    colorful.Color
}

func DefaultParams(center geom.Vec3) Params {
	return Params{
		Stagger:      0.4,
		ExpandBase:   3.0,
		ExpandJitter: 4.0,
		BreathAmp:    0.05,
		DriftAmp:     0.3,
		SparkleSpeed: 3.0,
		SparkleSharp: 12,
		Size:         0.06,
		Center:       center,
		ChaosColor:   colorful.Color{R: 0.95, G: 0.78, B: 0.35},
		DeepGreen:    colorful.Color{R: 0.01, G: 0.25, B: 0.08},
		LightGreen:   colorful.Color{R: 0.20, G: 0.62, B: 0.25},
		Sparkle:      colorful.Color{R: 1, G: 1, B: 0.95},
	}
}

// Output is what the program produces for one particle.
type Output struct {
	Pos   geom.Vec3
	Color colorful.Color
	Size  float64
}

// LocalProgress delays each particle by its seed so the cloud does not move in lockstep.
func LocalProgress(progress, seed, stagger float64) float64 {
	return geom.Clamp01(progress*(1+stagger) - seed*stagger)
}

// Shade evaluates one particle. It is a pure function of its inputs: nothing is read
// back from a previous frame.
func Shade(p layout.Particle, u Uniforms, prm Params) Output {
	e := geom.EaseInOutCubic(LocalProgress(u.Progress, p.Seed, prm.Stagger))
	pos := geom.Lerp(p.Chaos, p.Target, e)

	phase := p.Seed * 2 * math.Pi
	pos.Y += math.Sin(u.Time*1.5+phase) * prm.BreathAmp * e
	drift := prm.DriftAmp * (1 - e)
	pos.X += math.Sin(u.Time*0.5+p.Seed*10) * drift
	pos.Z += math.Cos(u.Time*0.4+p.Seed*7) * drift

	if u.Expand > 0 {
		dir := pos.Sub(prm.Center).Normalize()
		pos = pos.Add(dir.Scale(u.Expand * (prm.ExpandBase + p.Seed*prm.ExpandJitter)))
	}

	green := prm.DeepGreen.BlendLab(prm.LightGreen, p.Seed)
	c := prm.ChaosColor.BlendLab(green, e)
	sparkle := math.Pow(0.5+0.5*math.Sin(u.Time*prm.SparkleSpeed+p.Seed*100), prm.SparkleSharp)
	c = c.BlendRgb(prm.Sparkle, sparkle*0.8)

	return Output{
		Pos:   pos,
		Color: c.Clamped(),
		Size:  prm.Size * (0.6 + 0.8*p.Seed) * (1 + sparkle*0.5),
	}
}
