package polaroid

import (
	"math"

	"github.com/coreman2200/funtimes-evergreen/internal/geom"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
	"github.com/coreman2200/funtimes-evergreen/internal/scene"
	"github.com/coreman2200/funtimes-evergreen/internal/texture"
)

// Data is the static description of one card for the current layout.
type Data struct {
	ID      int
	URL     string
	Message string
	Chaos   geom.Vec3
	Target  geom.Vec3
	Speed   float64
}

// Dest names which destination a card is heading to this frame.
type Dest int

const (
	DestChaos Dest = iota
	DestTree
	DestScatter
	DestFocus
)

func (d Dest) String() string {
	switch d {
	case DestTree:
		return "tree"
	case DestScatter:
		return "scatter"
	case DestFocus:
		return "focus"
	default:
		return "chaos"
	}
}

// Destination picks where a card goes this frame. The highlighted card of an active focus
// sequence always wins, then every other card scatters, then the mode decides.
func Destination(d Data, scatter geom.Vec3, sig scene.Signals, display geom.Vec3) (geom.Vec3, Dest) {
	switch {
	case sig.Focusing && sig.IsHighlighted(d.ID):
		return display, DestFocus
	case sig.Focusing:
		return scatter, DestScatter
	case sig.Mode == scene.Formed:
		return d.Target, DestTree
	default:
		return d.Chaos, DestChaos
	}
}

// Scale breakpoints, inclusive upper bounds on the photo count.
var scaleSteps = []struct {
	upTo  int
	scale float64
}{
	{5, 1.6},
	{10, 1.4},
	{15, 1.2},
	{20, 1.05},
	{30, 0.9},
	{50, 0.75},
}

const minScale = 0.6

// BaseScale shrinks cards as the wall fills up.
func BaseScale(total int) float64 {
	for _, s := range scaleSteps {
		if total <= s.upTo {
			return s.scale
		}
	}
	return minScale
}

// Params tune card motion.
type Params struct {
	DisplayPosition geom.Vec3
	FocusScale      float64 // multiplier for the highlighted card
	FocusRate       float64 // pop-in rate for the highlighted card (1/s)
	Rate            float64 // everyone else, times the card speed
	SnapRate        float64 // residual rotation decay while highlighted
	ScaleRate       float64

	// scatter ring around Center, outside +-ScatterWedge of +Z
	Center       geom.Vec3
	ScatterMin   float64
	ScatterMax   float64
	ScatterWedge float64

	Placeholder render.Color
}

func DefaultParams(display, center geom.Vec3) Params {
	return Params{
		DisplayPosition: display,
		FocusScale:      3,
		FocusRate:       8,
		Rate:            2,
		SnapRate:        12,
		ScaleRate:       6,
		Center:          center,
		ScatterMin:      9,
		ScatterMax:      14,
		ScatterWedge:    math.Pi / 3,
		Placeholder:     render.Color{R: 0.86, G: 0.83, B: 0.77},
	}
}

// Card is the live state of one photo.
type Card struct {
	Data

	pos     geom.Vec3
	rot     geom.Euler
	scale   float64
	scatter geom.Vec3
	phase   float64
	dest    Dest
	tex     *texture.Handle
}

func (c *Card) Position() geom.Vec3 { return c.pos }
func (c *Card) Rotation() geom.Euler { return c.rot }
func (c *Card) Scale() float64       { return c.scale }
func (c *Card) Scatter() geom.Vec3   { return c.scatter }
func (c *Card) Dest() Dest           { return c.dest }

// Texture is nil when no loader is attached.
func (c *Card) Texture() *texture.Handle { return c.tex }

// Aspect is width/height, square until the image has loaded.
func (c *Card) Aspect() float64 {
	if c.tex == nil {
		return 1
	}
	return c.tex.Aspect()
}

func (c *Card) update(sig scene.Signals, base float64, p Params) {
	dest, kind := Destination(c.Data, c.scatter, sig, p.DisplayPosition)
	c.dest = kind

	rate := p.Rate * c.Speed
	wantScale := base
	if kind == DestFocus {
		rate = p.FocusRate
		wantScale = base * p.FocusScale
	}
	c.pos = geom.Damp(c.pos, dest, rate, sig.Dt)
	c.scale = geom.DampF(c.scale, wantScale, p.ScaleRate, sig.Dt)

	switch kind {
	case DestFocus:
		// flat to the camera, which frames the display position from +Z
		c.rot = c.rot.Scale(math.Exp(-p.SnapRate * sig.Dt))
	case DestTree:
		t := sig.Time
		want := geom.Euler{
			X: 0.06 * math.Sin(t*0.5+c.phase),
			Y: math.Atan2(c.pos.X, c.pos.Z) + 0.05*math.Cos(t*0.35+c.phase),
			Z: 0.04 * math.Cos(t*0.7+c.phase),
		}
		c.rot = geom.DampEuler(c.rot, want, 3, sig.Dt)
	default:
		spin := sig.Dt * c.Speed
		c.rot = c.rot.Add(geom.Euler{X: 0.5 * spin, Y: 0.7 * spin, Z: 0.3 * spin})
	}
}

func (c *Card) quad(p Params) render.Quad {
	q := render.Quad{
		ID:          c.ID,
		Center:      c.pos,
		Rot:         c.rot,
		Width:       c.scale * c.Aspect(),
		Height:      c.scale,
		Tint:        p.Placeholder,
		Highlighted: c.dest == DestFocus,
		Message:     c.Message,
	}
	if c.tex != nil {
		if img, ok := c.tex.Image(); ok {
			q.Image = img
		}
	}
	return q
}
