package polaroid

import (
	"context"
	"math"
	"math/rand"

	"github.com/coreman2200/funtimes-evergreen/internal/feed"
	"github.com/coreman2200/funtimes-evergreen/internal/geom"
	"github.com/coreman2200/funtimes-evergreen/internal/layout"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
	"github.com/coreman2200/funtimes-evergreen/internal/scene"
	"github.com/coreman2200/funtimes-evergreen/internal/texture"
)

// TextureSource starts an asynchronous image load.
type TextureSource interface {
	Load(ctx context.Context, url string) *texture.Handle
}

// Deck owns every photo card, in feed order.
type Deck struct {
	ctx    context.Context
	tree   layout.Tree
	params Params
	rng    *rand.Rand
	tex    TextureSource

	cards []*Card
	byID  map[int]*Card
	base  float64

	focusing bool

	// OnClick receives clicks that are allowed through (idle only).
	OnClick func(id int)
}

// NewDeck builds an empty deck. tex may be nil, in which case every card shows the
// placeholder.
func NewDeck(ctx context.Context, tree layout.Tree, p Params, tex TextureSource, rng *rand.Rand) *Deck {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Deck{ctx: ctx, tree: tree, params: p, rng: rng, tex: tex, byID: map[int]*Card{}, base: BaseScale(0)}
}

func (d *Deck) Name() string { return "polaroids" }

func (d *Deck) Len() int { return len(d.cards) }

func (d *Deck) Exists(id int) bool { _, ok := d.byID[id]; return ok }

func (d *Deck) Card(id int) (*Card, bool) { c, ok := d.byID[id]; return c, ok }

// Cards returns the cards in layout order.
func (d *Deck) Cards() []*Card { return d.cards }

func (d *Deck) BaseScale() float64 { return d.base }

// Sync reconciles the deck with the photo list. Every ring target is recomputed from the
// new total; chaos, speed, scatter and texture stay with the id.
func (d *Deck) Sync(photos []feed.Photo) {
	total := len(photos)
	next := make([]*Card, 0, total)
	seen := make(map[int]*Card, total)
	for i, ph := range photos {
		if _, dup := seen[ph.ID]; dup {
			continue
		}
		c, ok := d.byID[ph.ID]
		if !ok {
			c = d.mount(ph)
		} else if c.URL != ph.URL {
			c.URL = ph.URL
			c.tex = d.load(ph.URL)
		}
		c.Message = ph.Message
		c.Target = layout.Ring(d.tree, i, total)
		next = append(next, c)
		seen[ph.ID] = c
	}
	d.cards, d.byID = next, seen
	d.base = BaseScale(len(next))
}

func (d *Deck) mount(ph feed.Photo) *Card {
	chaos := layout.PhotoChaos(d.tree, d.rng)
	c := &Card{
		Data: Data{
			ID:      ph.ID,
			URL:     ph.URL,
			Message: ph.Message,
			Chaos:   chaos,
			Speed:   0.6 + d.rng.Float64()*0.8,
		},
		pos:     chaos,
		scale:   BaseScale(0) * 0.5,
		scatter: d.scatterPoint(),
		phase:   d.rng.Float64() * 2 * math.Pi,
		rot:     geom.Euler{X: d.rng.Float64(), Y: d.rng.Float64() * 2 * math.Pi},
		tex:     d.load(ph.URL),
	}
	return c
}

func (d *Deck) load(url string) *texture.Handle {
	if d.tex == nil {
		return nil
	}
	return d.tex.Load(d.ctx, url)
}

// scatterPoint picks a spot on a band around the tree, clear of the wedge in front of
// the display position so scattered cards never block the focused one.
func (d *Deck) scatterPoint() geom.Vec3 {
	p := d.params
	w := p.ScatterWedge
	a := w + d.rng.Float64()*(2*math.Pi-2*w)
	r := p.ScatterMin + d.rng.Float64()*(p.ScatterMax-p.ScatterMin)
	y := p.Center.Y + (d.rng.Float64()-0.5)*d.tree.Height*0.6
	return geom.V(p.Center.X+r*math.Sin(a), y, p.Center.Z+r*math.Cos(a))
}

// Click forwards a card click to OnClick unless a focus sequence is running.
func (d *Deck) Click(id int) bool {
	if d.focusing || !d.Exists(id) {
		return false
	}
	if d.OnClick != nil {
		d.OnClick(id)
	}
	return true
}

func (d *Deck) Update(sig scene.Signals) {
	d.focusing = sig.Focusing
	for _, c := range d.cards {
		c.update(sig, d.base, d.params)
	}
}

func (d *Deck) Render(f *render.Frame) {
	for _, c := range d.cards {
		f.Quads = append(f.Quads, c.quad(d.params))
	}
}
