package render

import (
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-evergreen/internal/camera"
	"github.com/coreman2200/funtimes-evergreen/internal/geom"
)

// Color is linear RGB, nominally 0..1 but may exceed 1 before tone mapping.
type Color struct{ R, G, B float32 }

func FromColorful(c colorful.Color) Color {
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}
}

func (c Color) Scale(s float32) Color { return Color{c.R * s, c.G * s, c.B * s} }

// Point is one splat: a foliage particle, an ornament, a star vertex.
type Point struct {
	Pos   geom.Vec3
	Color Color
	Size  float32 // world units
}

// Quad is a photo card.
type Quad struct {
	ID          int
	Center      geom.Vec3
	Rot         geom.Euler
	Width       float64
	Height      float64
	Image       image.Image // nil while loading or after a failed load
	Tint        Color       // placeholder colour
	Highlighted bool
	Message     string
}

// Frame is everything the layers produced this tick plus the shared view state.
type Frame struct {
	ID   uint64
	T    float64
	View camera.View

	Mode         string
	Focus        string
	Expand       float64
	Highlighted  int // valid when HasHighlight
	HasHighlight bool

	Points []Point
	Quads  []Quad
	Lights []Color // ornament lights in instance order
}

// Reset empties the buffers, keeping capacity.
func (f *Frame) Reset() {
	f.Points = f.Points[:0]
	f.Quads = f.Quads[:0]
	f.Lights = f.Lights[:0]
}

// Layer contributes geometry to a frame.
type Layer interface {
	Name() string
	Render(f *Frame)
}

// Driver consumes finished frames (websocket, terminal, LEDs, snapshots).
type Driver interface {
	Write(f *Frame) error
}

// Registry holds layers in draw order; layers can be switched off by name.
type Registry struct {
	order    []string
	m        map[string]Layer
	disabled map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{m: map[string]Layer{}, disabled: map[string]bool{}}
}

func (r *Registry) Register(l Layer) {
	if l == nil {
		return
	}
	if _, ok := r.m[l.Name()]; !ok {
		r.order = append(r.order, l.Name())
	}
	r.m[l.Name()] = l
}

func (r *Registry) Get(name string) (Layer, bool) { l, ok := r.m[name]; return l, ok }

// SetEnabled reports false for an unknown layer.
func (r *Registry) SetEnabled(name string, on bool) bool {
	if _, ok := r.m[name]; !ok {
		return false
	}
	if on {
		delete(r.disabled, name)
	} else {
		r.disabled[name] = true
	}
	return true
}

func (r *Registry) List() []string {
	out := append([]string(nil), r.order...)
	sort.Strings(out)
	return out
}

// Active returns the enabled layers in registration order.
func (r *Registry) Active() []Layer {
	out := make([]Layer, 0, len(r.order))
	for _, name := range r.order {
		if !r.disabled[name] {
			out = append(out, r.m[name])
		}
	}
	return out
}
