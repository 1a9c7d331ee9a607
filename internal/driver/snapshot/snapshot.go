package snapshot

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"net/http"
	"sort"
	"sync"

	"github.com/HugoSmits86/nativewebp"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"

	"github.com/coreman2200/funtimes-evergreen/internal/camera"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
)

var sky = render.Color{R: 0.01, G: 0.02, B: 0.06}

// Driver keeps the latest frame and rasterises it on demand. Rendering happens on the
// HTTP goroutine, so the frame loop only pays for a copy.
type Driver struct {
	W, H int

	mu     sync.Mutex
	view   camera.View
	points []render.Point
	quads  []render.Quad
	id     uint64
}

func New(w, h int) *Driver {
	return &Driver{W: max(w, 1), H: max(h, 1)}
}

func (d *Driver) Write(f *render.Frame) error {
	d.mu.Lock()
	d.view = f.View
	d.points = append(d.points[:0], f.Points...)
	d.quads = append(d.quads[:0], f.Quads...)
	d.id = f.ID
	d.mu.Unlock()
	return nil
}

// Snapshot renders the last frame.
func (d *Driver) Snapshot() (*image.NRGBA, uint64) {
	d.mu.Lock()
	view := d.view
	points := append([]render.Point(nil), d.points...)
	quads := append([]render.Quad(nil), d.quads...)
	id := d.id
	d.mu.Unlock()
	return Rasterize(view, points, quads, d.W, d.H), id
}

// ServeHTTP answers with the last frame as a lossless WebP.
func (d *Driver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	img, _ := d.Snapshot()
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		log.Error().Err(err).Msg("snapshot encode")
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// Rasterize splats points additively, then paints cards far to near on top.
func Rasterize(v camera.View, points []render.Point, quads []render.Quad, w, h int) *image.NRGBA {
	acc := make([]render.Color, w*h)
	for i := range acc {
		acc[i] = sky
	}
	for _, p := range points {
		x, y, z, ok := v.Project(p.Pos, w, h)
		if !ok {
			continue
		}
		r := float64(p.Size) * v.PixelScale(z, h) / 2
		splat(acc, w, h, x, y, math.Max(r, 0.5), p.Color)
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, c := range acc {
		img.Pix[i*4+0] = render.To8(c.R)
		img.Pix[i*4+1] = render.To8(c.G)
		img.Pix[i*4+2] = render.To8(c.B)
		img.Pix[i*4+3] = 255
	}

	type placed struct {
		q    render.Quad
		rect image.Rectangle
		z    float64
	}
	var cards []placed
	for _, q := range quads {
		x, y, z, ok := v.Project(q.Center, w, h)
		if !ok {
			continue
		}
		s := v.PixelScale(z, h)
		// cards turned edge-on to the camera get thin
		hw := q.Width * s / 2 * math.Max(math.Abs(math.Cos(q.Rot.Y)), 0.1)
		hh := q.Height * s / 2
		rect := image.Rect(int(x-hw), int(y-hh), int(x+hw), int(y+hh))
		if rect.Empty() || !rect.Overlaps(img.Bounds()) {
			continue
		}
		cards = append(cards, placed{q, rect, z})
	}
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].z > cards[j].z })
	for _, c := range cards {
		paintCard(img, c.q, c.rect)
	}
	return img
}

func splat(acc []render.Color, w, h int, cx, cy, r float64, c render.Color) {
	x0, x1 := max(int(cx-r), 0), min(int(cx+r)+1, w)
	y0, y1 := max(int(cy-r), 0), min(int(cy+r)+1, h)
	r2 := r * r
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			d2 := dx*dx + dy*dy
			if d2 > r2 {
				continue
			}
			k := float32(1 - d2/r2)
			i := y*w + x
			acc[i].R += c.R * k
			acc[i].G += c.G * k
			acc[i].B += c.B * k
		}
	}
}

func nrgba(c render.Color) color.NRGBA {
	return color.NRGBA{R: render.To8(c.R), G: render.To8(c.G), B: render.To8(c.B), A: 255}
}

// paintCard draws a polaroid: white frame, photo (or placeholder) inset, thicker bottom.
func paintCard(img *image.NRGBA, q render.Quad, rect image.Rectangle) {
	frame := color.NRGBA{R: 245, G: 242, B: 235, A: 255}
	if q.Highlighted {
		frame = color.NRGBA{R: 255, G: 250, B: 220, A: 255}
	}
	draw.Draw(img, rect, image.NewUniform(frame), image.Point{}, draw.Src)

	pad := max(rect.Dx()/14, 1)
	inner := image.Rect(rect.Min.X+pad, rect.Min.Y+pad, rect.Max.X-pad, rect.Max.Y-pad*3)
	if inner.Empty() {
		return
	}
	if q.Image == nil {
		draw.Draw(img, inner, image.NewUniform(nrgba(q.Tint.Scale(0.8))), image.Point{}, draw.Src)
		return
	}
	draw.ApproxBiLinear.Scale(img, inner, q.Image, q.Image.Bounds(), draw.Over, nil)
}
