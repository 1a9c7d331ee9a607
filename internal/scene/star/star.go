package star

import (
	"math"

	"github.com/coreman2200/funtimes-evergreen/internal/geom"
	"github.com/coreman2200/funtimes-evergreen/internal/layout"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
	"github.com/coreman2200/funtimes-evergreen/internal/scene"
)

const (
	points     = 5
	outerR     = 0.9
	innerR     = 0.4
	perEdge    = 4
	riseRate   = 0.8
	expandLift = 2.0
)

// Star sits on the apex when formed and floats above the chaos cloud otherwise.
type Star struct {
	top, away geom.Vec3
	progress  float64
	pos       geom.Vec3
	spin      float64
	scale     float64
	color     render.Color
}

func New(tree layout.Tree) *Star {
	top := tree.Top().Add(geom.V(0, 0.5, 0))
	away := tree.ChaosCenter.Add(geom.V(0, tree.ChaosRadius*0.6, 0))
	return &Star{top: top, away: away, pos: away, scale: 1, color: render.Color{R: 1.6, G: 1.25, B: 0.45}}
}

func (s *Star) Name() string { return "star" }

func (s *Star) Position() geom.Vec3 { return s.pos }

func (s *Star) Update(sig scene.Signals) {
	s.progress = geom.DampF(s.progress, sig.Mode.Target(), riseRate, sig.Dt)
	e := geom.Smootherstep(s.progress)
	s.pos = geom.Lerp(s.away, s.top, e).Add(geom.V(0, sig.Expand*expandLift, 0))
	s.spin += sig.Dt * (0.6 + 2*(1-e))
	s.scale = 1 + 0.1*math.Sin(sig.Time*2)
}

// Render samples the outline of a five-pointed star facing the viewer, spun about Y.
func (s *Star) Render(f *render.Frame) {
	n := points * 2
	cos, sin := math.Cos(s.spin), math.Sin(s.spin)
	vertex := func(k int) geom.Vec3 {
		r := outerR
		if k%2 == 1 {
			r = innerR
		}
		a := math.Pi/2 + float64(k)*math.Pi/float64(points)
		x, y := r*math.Cos(a)*s.scale, r*math.Sin(a)*s.scale
		return geom.V(x*cos, y, x*sin)
	}
	for k := 0; k < n; k++ {
		a, b := vertex(k), vertex((k+1)%n)
		for j := 0; j < perEdge; j++ {
			p := geom.Lerp(a, b, float64(j)/perEdge)
			f.Points = append(f.Points, render.Point{Pos: s.pos.Add(p), Color: s.color, Size: 0.12})
		}
	}
	f.Points = append(f.Points, render.Point{Pos: s.pos, Color: s.color.Scale(1.5), Size: 0.35})
}
