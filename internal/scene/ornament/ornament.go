package ornament

import (
	"math"

	"github.com/coreman2200/funtimes-evergreen/internal/geom"
	"github.com/coreman2200/funtimes-evergreen/internal/layout"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
	"github.com/coreman2200/funtimes-evergreen/internal/scene"
)

// Params tune the instanced animator.
type Params struct {
	Rate         float64 // base progress rate (1/s), multiplied by instance speed
	ExpandBase   float64
	ExpandJitter float64
	Center       geom.Vec3
}

func DefaultParams(center geom.Vec3) Params {
	return Params{Rate: 1.2, ExpandBase: 2.5, ExpandJitter: 3.5, Center: center}
}

// Transform is the live per-instance state written each frame.
type Transform struct {
	Pos   geom.Vec3
	Rot   geom.Euler
	Scale float64
	Glow  float64 // lights only, 0..1
}

// System animates a batch of ornaments. Progress is kept per instance in a parallel
// slice so the curve is reproducible and never drifts with the rendered transform.
type System struct {
	name     string
	items    []layout.Ornament
	progress []float64
	xf       []Transform
	params   Params
}

// New starts every instance at its chaos position.
func New(name string, items []layout.Ornament, p Params) *System {
	s := &System{
		name:     name,
		items:    items,
		progress: make([]float64, len(items)),
		xf:       make([]Transform, len(items)),
		params:   p,
	}
	for i, it := range items {
		s.xf[i] = Transform{Pos: it.Chaos, Rot: geom.Euler{Y: it.RotationOffset}, Scale: it.Scale * 0.6}
	}
	return s
}

func (s *System) Name() string { return s.name }

func (s *System) Len() int { return len(s.items) }

func (s *System) Progress(i int) float64 { return s.progress[i] }

func (s *System) Transform(i int) Transform { return s.xf[i] }

// Update advances every instance toward the mode target by exponential decay at its
// own speed, then derives the transform from the eased progress.
func (s *System) Update(sig scene.Signals) {
	target := sig.Mode.Target()
	for i := range s.items {
		it := &s.items[i]
		s.progress[i] = geom.DampF(s.progress[i], target, s.params.Rate*it.Speed, sig.Dt)
		e := geom.Smoothstep(s.progress[i])

		pos := geom.Lerp(it.Chaos, it.Target, e)
		if sig.Expand > 0 {
			dir := pos.Sub(s.params.Center).Normalize()
			pos = pos.Add(dir.Scale(sig.Expand * (s.params.ExpandBase + it.Seed*s.params.ExpandJitter)))
		}

		xf := &s.xf[i]
		xf.Pos = pos
		xf.Scale = it.Scale * (0.6 + 0.4*e)
		switch it.Kind {
		case layout.Gift:
			// tumble hard while scattered, settle to a slow spin when formed
			spin := sig.Dt * it.Speed * (0.2 + (1 - e))
			xf.Rot = xf.Rot.Add(geom.Euler{X: 0.8 * spin, Y: 0.5 * spin, Z: 0.3 * spin})
		case layout.Ball:
			xf.Rot = geom.Euler{
				X: 0.15 * math.Sin(sig.Time*it.Speed+it.RotationOffset),
				Y: it.RotationOffset + sig.Time*0.3*it.Speed,
			}
		case layout.Light:
			xf.Glow = 0.6 + 0.4*math.Sin(sig.Time*it.Speed*3+it.RotationOffset)
		}
	}
}

func (s *System) Render(f *render.Frame) {
	for i, it := range s.items {
		xf := s.xf[i]
		c := render.FromColorful(it.Color)
		if it.Kind == layout.Light {
			c = c.Scale(float32(0.5 + xf.Glow))
			f.Lights = append(f.Lights, c)
		}
		f.Points = append(f.Points, render.Point{Pos: xf.Pos, Color: c, Size: float32(xf.Scale)})
	}
}
