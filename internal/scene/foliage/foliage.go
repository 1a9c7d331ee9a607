package foliage

import (
	"github.com/coreman2200/funtimes-evergreen/internal/layout"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
	"github.com/coreman2200/funtimes-evergreen/internal/scene"
)

// System is the foliage cloud. It holds the static attribute buffer and the current
// uniforms only.
type System struct {
	particles []layout.Particle
	params    Params
	u         Uniforms
}

func New(particles []layout.Particle, p Params) *System {
	return &System{particles: particles, params: p}
}

func (s *System) Name() string { return "foliage" }

func (s *System) Len() int { return len(s.particles) }

// Update latches this frame's uniforms.
func (s *System) Update(sig scene.Signals) {
	s.u = Uniforms{Progress: sig.Progress, Expand: sig.Expand, Time: sig.Time}
}

func (s *System) Uniforms() Uniforms { return s.u }

func (s *System) Render(f *render.Frame) {
	for _, p := range s.particles {
		o := Shade(p, s.u, s.params)
		f.Points = append(f.Points, render.Point{
			Pos:   o.Pos,
			Color: render.FromColorful(o.Color),
			Size:  float32(o.Size),
		})
	}
}
