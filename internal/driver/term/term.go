package term

import (
	"context"
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/coreman2200/funtimes-evergreen/internal/render"
)

// Screen is the subset of tcell.Screen the driver draws with.
type Screen interface {
	Init() error
	Fini()
	Clear()
	Show()
	Size() (int, int)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	PollEvent() tcell.Event
}

// Action is a key command from the terminal.
type Action int

const (
	Toggle Action = iota + 1
	Quit
	OrbitLeft
	OrbitRight
	OrbitUp
	OrbitDown
	FocusNext
)

var background = tcell.NewRGBColor(4, 8, 20)

// Driver draws frames as coloured glyphs with a per-cell depth buffer. Cells are about
// twice as tall as wide, so projection runs at double vertical resolution.
type Driver struct {
	scr   Screen
	depth []float64
	w, h  int
}

func New(scr Screen) *Driver { return &Driver{scr: scr} }

// Open initialises the real terminal.
func Open() (*Driver, error) {
	scr, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("term: %w", err)
	}
	if err := scr.Init(); err != nil {
		return nil, fmt.Errorf("term: init: %w", err)
	}
	return New(scr), nil
}

func (d *Driver) Close() error {
	d.scr.Fini()
	return nil
}

func glyph(size, scale float64) rune {
	px := size * scale
	switch {
	case px > 3:
		return '@'
	case px > 1.5:
		return '*'
	case px > 0.6:
		return '+'
	default:
		return '.'
	}
}

func rgb(c render.Color) tcell.Color {
	return tcell.NewRGBColor(int32(render.To8(c.R)), int32(render.To8(c.G)), int32(render.To8(c.B)))
}

func (d *Driver) plot(x, y int, z float64, r rune, st tcell.Style) {
	if x < 0 || y < 0 || x >= d.w || y >= d.h {
		return
	}
	i := y*d.w + x
	if z >= d.depth[i] {
		return
	}
	d.depth[i] = z
	d.scr.SetContent(x, y, r, nil, st)
}

func (d *Driver) Write(f *render.Frame) error {
	d.w, d.h = d.scr.Size()
	if d.w <= 0 || d.h <= 0 {
		return nil
	}
	if n := d.w * d.h; cap(d.depth) < n {
		d.depth = make([]float64, n)
	} else {
		d.depth = d.depth[:n]
	}
	for i := range d.depth {
		d.depth[i] = math.Inf(1)
	}
	d.scr.Clear()
	base := tcell.StyleDefault.Background(background)
	for y := 0; y < d.h; y++ {
		for x := 0; x < d.w; x++ {
			d.scr.SetContent(x, y, ' ', nil, base)
		}
	}

	vh := d.h * 2
	for _, p := range f.Points {
		x, y, z, ok := f.View.Project(p.Pos, d.w, vh)
		if !ok {
			continue
		}
		g := glyph(float64(p.Size), f.View.PixelScale(z, vh))
		d.plot(int(x), int(y/2), z, g, base.Foreground(rgb(p.Color)))
	}

	for _, q := range f.Quads {
		x, y, z, ok := f.View.Project(q.Center, d.w, vh)
		if !ok {
			continue
		}
		s := f.View.PixelScale(z, vh)
		hw := max(int(q.Width*s/2), 0)
		hh := max(int(q.Height*s/4), 0)
		fill := q.Tint
		r := '▒'
		if q.Image != nil {
			r = '█'
			fill = averageColor(q)
		}
		st := base.Foreground(rgb(fill))
		if q.Highlighted {
			st = st.Bold(true)
		}
		cx, cy := int(x), int(y/2)
		for yy := cy - hh; yy <= cy+hh; yy++ {
			for xx := cx - hw; xx <= cx+hw; xx++ {
				d.plot(xx, yy, z-0.01, r, st)
			}
		}
	}

	status := fmt.Sprintf(" %s | %s | photos %d | space: toggle  q: quit ", f.Mode, f.Focus, len(f.Quads))
	st := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkGreen)
	for i, r := range status {
		if i >= d.w {
			break
		}
		d.scr.SetContent(i, d.h-1, r, nil, st)
	}
	d.scr.Show()
	return nil
}

// averageColor samples the centre of a loaded card so it reads as its photo.
func averageColor(q render.Quad) render.Color {
	b := q.Image.Bounds()
	var r, g, bl float64
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y += max(b.Dy()/8, 1) {
		for x := b.Min.X; x < b.Max.X; x += max(b.Dx()/8, 1) {
			cr, cg, cb, _ := q.Image.At(x, y).RGBA()
			r += float64(cr)
			g += float64(cg)
			bl += float64(cb)
			n++
		}
	}
	if n == 0 {
		return q.Tint
	}
	k := float64(n) * 0xffff
	return render.Color{R: float32(r / k), G: float32(g / k), B: float32(bl / k)}
}

// Keys maps a key event to an action; ok is false for keys that mean nothing.
func Keys(ev *tcell.EventKey) (Action, bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return Quit, true
	case tcell.KeyLeft:
		return OrbitLeft, true
	case tcell.KeyRight:
		return OrbitRight, true
	case tcell.KeyUp:
		return OrbitUp, true
	case tcell.KeyDown:
		return OrbitDown, true
	case tcell.KeyTab:
		return FocusNext, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			return Toggle, true
		case 'q':
			return Quit, true
		}
	}
	return 0, false
}

// Run polls terminal events until ctx ends or Quit is pressed, handing actions to fn.
// PollEvent blocks, so Run is meant for its own goroutine.
func (d *Driver) Run(ctx context.Context, fn func(Action)) {
	for ctx.Err() == nil {
		ev := d.scr.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventKey:
			if a, ok := Keys(ev); ok {
				fn(a)
				if a == Quit {
					return
				}
			}
		}
	}
}
