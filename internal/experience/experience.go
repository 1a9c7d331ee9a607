package experience

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-evergreen/internal/camera"
	"github.com/coreman2200/funtimes-evergreen/internal/feed"
	"github.com/coreman2200/funtimes-evergreen/internal/focus"
	"github.com/coreman2200/funtimes-evergreen/internal/geom"
	"github.com/coreman2200/funtimes-evergreen/internal/layout"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
	"github.com/coreman2200/funtimes-evergreen/internal/scene"
	"github.com/coreman2200/funtimes-evergreen/internal/scene/foliage"
	"github.com/coreman2200/funtimes-evergreen/internal/scene/ornament"
	"github.com/coreman2200/funtimes-evergreen/internal/scene/polaroid"
	"github.com/coreman2200/funtimes-evergreen/internal/scene/star"
)

// Config sizes the scene.
type Config struct {
	Tree    layout.Tree
	Foliage int
	Balls   int
	Gifts   int
	Lights  int

	// TransitionS is how long a full formed<->chaos sweep of the global progress takes.
	TransitionS float64

	Camera camera.Pose
	FOV    float64
	Focus  focus.Config
	Seed   int64
}

func DefaultConfig() Config {
	return Config{
		Tree:        layout.DefaultTree(),
		Foliage:     6000,
		Balls:       140,
		Gifts:       60,
		Lights:      240,
		TransitionS: 2.5,
		Camera:      camera.Pose{Position: geom.V(0, 7, 26), LookAt: geom.V(0, 7, 0)},
		FOV:         45,
		Focus:       focus.DefaultConfig(),
		Seed:        1,
	}
}

// Hooks let the host observe the scene without reaching into it.
type Hooks struct {
	Transition    func(from, to focus.State, id int)
	FocusComplete func(id int)
	FeedStatus    func(ev feed.Event)
}

// Experience is the whole tree. Every method except Do must be called from the frame
// loop goroutine.
type Experience struct {
	cfg   Config
	hooks Hooks

	mode     scene.Mode
	progress float64
	time     float64
	frameID  uint64

	cam     *camera.Camera
	machine *focus.Machine

	foliage *foliage.System
	balls   *ornament.System
	gifts   *ornament.System
	lights  *ornament.System
	star    *star.Star
	deck    *polaroid.Deck

	photos  []feed.Photo
	index   map[int]int
	dirty   bool
	clickOK bool

	uploading bool
	connected bool

	feed <-chan feed.Event
	cmds chan func(*Experience)
	sig  scene.Signals
}

// New builds the scene in FORMED mode with every element still scattered, so the first
// seconds assemble the tree.
func New(ctx context.Context, cfg Config, tex polaroid.TextureSource, h Hooks) *Experience {
	rng := rand.New(rand.NewSource(cfg.Seed))
	tree := cfg.Tree
	center := tree.Center()

	e := &Experience{
		cfg:      cfg,
		hooks:    h,
		mode:     scene.Formed,
		cam:      camera.New(cfg.Camera, cfg.FOV),
		index:    map[int]int{},
		cmds:     make(chan func(*Experience), 64),
	}
	e.machine = focus.NewMachine(cfg.Focus, focus.Hooks{
		Exists:        e.deckHas,
		FocusComplete: e.focusComplete,
		Transition:    e.transition,
		Superseded:    e.clearNew,
	})

	orn := ornament.DefaultParams(center)
	e.foliage = foliage.New(layout.Foliage(tree, cfg.Foliage, rng), foliage.DefaultParams(center))
	e.balls = ornament.New("balls", layout.Ornaments(tree, layout.Ball, cfg.Balls, rng), orn)
	e.gifts = ornament.New("gifts", layout.Ornaments(tree, layout.Gift, cfg.Gifts, rng), orn)
	e.lights = ornament.New("lights", layout.Ornaments(tree, layout.Light, cfg.Lights, rng), orn)
	e.star = star.New(tree)
	e.deck = polaroid.NewDeck(ctx, tree, polaroid.DefaultParams(cfg.Focus.DisplayPosition, center), tex, rng)
	e.deck.OnClick = func(id int) { e.clickOK = e.machine.Click(id, e.cam) }
	return e
}

// Layers returns the render layers in draw order.
func (e *Experience) Layers() []render.Layer {
	return []render.Layer{e.foliage, e.balls, e.gifts, e.lights, e.star, e.deck}
}

// AttachFeed sets the channel drained at the start of every tick.
func (e *Experience) AttachFeed(ch <-chan feed.Event) { e.feed = ch }

// Do queues fn to run at the start of the next tick. It is safe from any goroutine and
// reports false when the queue is full.
func (e *Experience) Do(fn func(*Experience)) bool {
	select {
	case e.cmds <- fn:
		return true
	default:
		return false
	}
}

func (e *Experience) Mode() scene.Mode { return e.mode }
func (e *Experience) Progress() float64 { return e.progress }
func (e *Experience) Camera() *camera.Camera { return e.cam }
func (e *Experience) Focus() *focus.Machine { return e.machine }
func (e *Experience) Deck() *polaroid.Deck { return e.deck }
func (e *Experience) Signals() scene.Signals { return e.sig }
func (e *Experience) Uploading() bool { return e.uploading }
func (e *Experience) Connected() bool { return e.connected }
func (e *Experience) Time() float64 { return e.time }
func (e *Experience) Star() *star.Star { return e.star }
func (e *Experience) Foliage() *foliage.System { return e.foliage }

// Ornaments returns the balls, gifts and lights systems.
func (e *Experience) Ornaments() []*ornament.System {
	return []*ornament.System{e.balls, e.gifts, e.lights}
}

// Photos is the current list in feed order.
func (e *Experience) Photos() []feed.Photo { return e.photos }

// Photo looks a photo up by id.
func (e *Experience) Photo(id int) (feed.Photo, bool) {
	i, ok := e.index[id]
	if !ok {
		return feed.Photo{}, false
	}
	return e.photos[i], true
}

// SetMode switches the arrangement; progress then sweeps toward the new end.
func (e *Experience) SetMode(m scene.Mode) {
	if m != e.mode {
		log.Info().Str("mode", m.String()).Msg("mode")
	}
	e.mode = m
}

func (e *Experience) Toggle() { e.SetMode(e.mode.Toggle()) }

// Click focuses a card. Ignored unless the choreography is idle.
func (e *Experience) Click(id int) bool {
	e.clickOK = false
	if !e.deck.Click(id) {
		return false
	}
	return e.clickOK
}

// Orbit forwards free camera input; dropped while a focus sequence owns the camera.
func (e *Experience) Orbit(yaw, pitch float64) { e.cam.Orbit(yaw, pitch) }

// SetPhotos merges a full list, e.g. the initial fetch, into the session. Photos are
// never removed: known ids refresh their url and message and keep their new flag,
// unknown ids are appended in list order.
func (e *Experience) SetPhotos(list []feed.Photo) {
	for _, p := range list {
		if i, ok := e.index[p.ID]; ok {
			p.IsNew = e.photos[i].IsNew
			e.photos[i] = p
			continue
		}
		e.index[p.ID] = len(e.photos)
		e.photos = append(e.photos, p)
	}
	e.dirty = true
}

// AddPhoto appends a pushed photo and schedules its arrival focus. A known id only
// refreshes the entry.
func (e *Experience) AddPhoto(p feed.Photo) {
	e.dirty = true
	if i, ok := e.index[p.ID]; ok {
		p.IsNew = e.photos[i].IsNew
		e.photos[i] = p
		return
	}
	e.index[p.ID] = len(e.photos)
	e.photos = append(e.photos, p)
	if p.IsNew {
		e.machine.NotifyArrival(p.ID)
	}
}

func (e *Experience) deckHas(id int) bool { return e.deck.Exists(id) }

// clearNew consumes the one-shot new flag.
func (e *Experience) clearNew(id int) {
	if i, ok := e.index[id]; ok {
		e.photos[i].IsNew = false
	}
}

func (e *Experience) focusComplete(id int) {
	e.clearNew(id)
	if e.hooks.FocusComplete != nil {
		e.hooks.FocusComplete(id)
	}
}

func (e *Experience) transition(from, to focus.State, id int) {
	log.Debug().Str("from", string(from)).Str("to", string(to)).Int("photo", id).Msg("focus")
	if e.hooks.Transition != nil {
		e.hooks.Transition(from, to, id)
	}
}

func (e *Experience) drain() {
	// commands queued while these run wait for the next tick
	for n := len(e.cmds); n > 0; n-- {
		(<-e.cmds)(e)
	}
	if e.feed == nil {
		return
	}
	for {
		select {
		case ev, ok := <-e.feed:
			if !ok {
				e.feed = nil
				return
			}
			e.handle(ev)
		default:
			return
		}
	}
}

func (e *Experience) handle(ev feed.Event) {
	switch ev.Kind {
	case feed.NewPhoto:
		log.Info().Int("photo", ev.Photo.ID).Msg("new photo")
		e.AddPhoto(ev.Photo)
	case feed.UploadProgress:
		e.uploading = ev.Uploading
	case feed.Connectivity:
		e.connected = ev.Connected
	}
	if e.hooks.FeedStatus != nil {
		e.hooks.FeedStatus(ev)
	}
}

// Tick advances the scene by dt seconds in a fixed order: commands and feed, reflow,
// mode progress, choreography, camera, then every animator with the same signals.
func (e *Experience) Tick(dt float64) {
	if dt < 0 {
		dt = 0
	}
	e.time += dt
	e.frameID++

	e.drain()

	if e.dirty {
		e.deck.Sync(e.photos)
		e.dirty = false
	}

	step := dt / max(e.cfg.TransitionS, 1e-6)
	if goal := e.mode.Target(); e.progress < goal {
		e.progress = min(goal, e.progress+step)
	} else {
		e.progress = max(goal, e.progress-step)
	}

	e.machine.Tick(dt, e.cam)
	e.cam.Update(dt)

	hl, has := e.machine.Highlighted()
	e.sig = scene.Signals{
		Dt:          dt,
		Time:        e.time,
		Mode:        e.mode,
		Progress:    e.progress,
		Expand:      e.machine.Expand(),
		Focusing:    e.machine.Active(),
		Highlighted:  hl,
		HasHighlight: has,
		Camera:       e.cam.Pose(),
	}

	e.foliage.Update(e.sig)
	e.balls.Update(e.sig)
	e.gifts.Update(e.sig)
	e.lights.Update(e.sig)
	e.star.Update(e.sig)
	e.deck.Update(e.sig)
}

// Stamp copies the frame-level state into f before the layers draw.
func (e *Experience) Stamp(f *render.Frame) {
	f.ID = e.frameID
	f.T = e.time
	f.View = e.cam.View()
	f.Mode = e.mode.String()
	f.Focus = string(e.machine.State())
	f.Expand = e.sig.Expand
	f.Highlighted, f.HasHighlight = e.sig.Highlighted, e.sig.HasHighlight
}
