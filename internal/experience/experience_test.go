package experience

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-evergreen/internal/feed"
	"github.com/coreman2200/funtimes-evergreen/internal/focus"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
	"github.com/coreman2200/funtimes-evergreen/internal/scene"
	"github.com/coreman2200/funtimes-evergreen/internal/scene/polaroid"
)

const dt = 1.0 / 60

func small() Config {
	cfg := DefaultConfig()
	cfg.Foliage, cfg.Balls, cfg.Gifts, cfg.Lights = 200, 10, 5, 12
	return cfg
}

type observed struct {
	transitions []string
	completed   []int
	feed        []feed.Kind
}

func newExperience(t *testing.T) (*Experience, *observed) {
	t.Helper()
	o := &observed{}
	e := New(context.Background(), small(), nil, Hooks{
		Transition:    func(from, to focus.State, id int) { o.transitions = append(o.transitions, string(to)) },
		FocusComplete: func(id int) { o.completed = append(o.completed, id) },
		FeedStatus:    func(ev feed.Event) { o.feed = append(o.feed, ev.Kind) },
	})
	e.SetPhotos([]feed.Photo{{ID: 1, URL: "a.jpg"}, {ID: 2, URL: "b.jpg"}, {ID: 3, URL: "c.jpg"}})
	return e, o
}

func tickUntil(e *Experience, s focus.State, maxFrames int) bool {
	for i := 0; i < maxFrames; i++ {
		if e.Focus().State() == s {
			return true
		}
		e.Tick(dt)
	}
	return false
}

func TestToggleSweepsProgressLinearly(t *testing.T) {
	e, _ := newExperience(t)
	assert.Equal(t, scene.Formed, e.Mode())
	assert.Equal(t, 0.0, e.Progress(), "starts scattered and assembles")

	e.Tick(dt)
	assert.InDelta(t, dt/e.cfg.TransitionS, e.Progress(), 1e-9)
	n := int(e.cfg.TransitionS*60) + 2
	for i := 0; i < n; i++ {
		e.Tick(dt)
	}
	assert.Equal(t, 1.0, e.Progress())

	e.Toggle()
	e.Tick(dt)
	assert.InDelta(t, 1-dt/e.cfg.TransitionS, e.Progress(), 1e-9)
	for i := 0; i < n; i++ {
		e.Tick(dt)
	}
	assert.Equal(t, scene.Chaos, e.Mode())
	assert.Equal(t, 0.0, e.Progress())

	for _, orn := range e.Ornaments() {
		for i := 0; i < orn.Len(); i++ {
			assert.Less(t, orn.Progress(i), 0.5, "%s follows the mode", orn.Name())
		}
	}
}

func TestCommandsRunOnTheLoop(t *testing.T) {
	e, _ := newExperience(t)
	require.True(t, e.Do(func(x *Experience) { x.SetMode(scene.Chaos) }))
	assert.Equal(t, scene.Formed, e.Mode(), "queued until the next tick")
	e.Tick(dt)
	assert.Equal(t, scene.Chaos, e.Mode())
}

func TestSetPhotosSyncsDeckOnTick(t *testing.T) {
	e, _ := newExperience(t)
	assert.Equal(t, 0, e.Deck().Len())
	e.Tick(dt)
	assert.Equal(t, 3, e.Deck().Len())
	assert.True(t, e.Deck().Exists(2))
}

func TestClickCycleScattersOthers(t *testing.T) {
	e, o := newExperience(t)
	e.Tick(dt)

	require.True(t, e.Click(2))
	assert.False(t, e.Click(3), "busy")
	assert.False(t, e.Camera().ControlsEnabled())

	require.True(t, tickUntil(e, focus.Focused, 60*10))
	c2, _ := e.Deck().Card(2)
	c3, _ := e.Deck().Card(3)
	assert.Equal(t, polaroid.DestFocus, c2.Dest())
	assert.Equal(t, polaroid.DestScatter, c3.Dest())
	assert.Greater(t, e.Signals().Expand, 0.5)

	require.True(t, tickUntil(e, focus.Idle, 60*20))
	assert.True(t, e.Camera().ControlsEnabled())
	assert.Equal(t, []int{2}, o.completed)
	assert.Equal(t, []string{"zooming_in", "focused", "zooming_out", "idle"}, o.transitions)

	e.Tick(dt)
	assert.False(t, e.Signals().HasHighlight)
	assert.Equal(t, polaroid.DestTree, c2.Dest())
}

func TestArrivalFromFeedEndToEnd(t *testing.T) {
	e, o := newExperience(t)
	ch := make(chan feed.Event, 4)
	e.AttachFeed(ch)
	e.Tick(dt)

	ch <- feed.Event{Kind: feed.Connectivity, Connected: true}
	ch <- feed.Event{Kind: feed.NewPhoto, Photo: feed.Photo{ID: 42, URL: "x.jpg", IsNew: true}}
	e.Tick(dt)
	assert.True(t, e.Connected())
	assert.True(t, e.Deck().Exists(42), "the card mounts on the tick it arrives")
	p, ok := e.Photo(42)
	require.True(t, ok)
	assert.True(t, p.IsNew)
	assert.Equal(t, focus.Idle, e.Focus().State(), "waits for the settle delay")

	require.True(t, tickUntil(e, focus.ZoomingIn, 60*2))
	id, ok := e.Focus().Highlighted()
	require.True(t, ok)
	assert.Equal(t, 42, id)

	require.True(t, tickUntil(e, focus.Focused, 60*10))
	require.True(t, tickUntil(e, focus.ZoomingOut, 60*40))
	require.True(t, tickUntil(e, focus.Idle, 60*10))

	_, ok = e.Focus().Highlighted()
	assert.False(t, ok)
	p, _ = e.Photo(42)
	assert.False(t, p.IsNew, "new flag lasts one focus cycle")
	assert.Equal(t, []int{42}, o.completed)
	assert.Equal(t, []feed.Kind{feed.Connectivity, feed.NewPhoto}, o.feed)
}

func TestDuplicatePushDoesNotRefocus(t *testing.T) {
	e, _ := newExperience(t)
	e.Tick(dt)
	e.AddPhoto(feed.Photo{ID: 2, URL: "b2.jpg", IsNew: true})
	_, pending := e.Focus().Pending()
	assert.False(t, pending)
	assert.Len(t, e.Photos(), 3)
}

func TestLateInitialFetchKeepsPushedPhotos(t *testing.T) {
	o := &observed{}
	e := New(context.Background(), small(), nil, Hooks{
		FocusComplete: func(id int) { o.completed = append(o.completed, id) },
	})
	e.Tick(dt)
	e.AddPhoto(feed.Photo{ID: 9, URL: "new.jpg", IsNew: true})
	require.True(t, tickUntil(e, focus.ZoomingIn, 60*2))

	e.SetPhotos([]feed.Photo{{ID: 1, URL: "a.jpg"}, {ID: 9, URL: "new2.jpg"}, {ID: 2, URL: "b.jpg"}})
	e.Tick(dt)

	ids := []int{}
	for _, p := range e.Photos() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int{9, 1, 2}, ids)
	p, ok := e.Photo(9)
	require.True(t, ok)
	assert.True(t, p.IsNew, "the fetch does not consume the new flag")
	assert.Equal(t, "new2.jpg", p.URL)
	assert.True(t, e.Deck().Exists(9), "the focused card stays mounted")
	id, ok := e.Focus().Highlighted()
	require.True(t, ok)
	assert.Equal(t, 9, id)

	require.True(t, tickUntil(e, focus.Idle, 60*60))
	assert.Equal(t, []int{9}, o.completed)
}

func TestSupersededArrivalLosesNewFlag(t *testing.T) {
	e, o := newExperience(t)
	e.Tick(dt)
	e.AddPhoto(feed.Photo{ID: 10, URL: "ten.jpg", IsNew: true})
	require.True(t, tickUntil(e, focus.ZoomingIn, 60*2))
	e.AddPhoto(feed.Photo{ID: 11, URL: "eleven.jpg", IsNew: true})
	require.True(t, tickUntil(e, focus.Idle, 60*60))

	p10, _ := e.Photo(10)
	p11, _ := e.Photo(11)
	assert.False(t, p10.IsNew)
	assert.False(t, p11.IsNew)
	assert.Equal(t, []int{11}, o.completed)
}

func TestStampAndLayers(t *testing.T) {
	e, _ := newExperience(t)
	e.Tick(dt)

	reg := render.NewRegistry()
	for _, l := range e.Layers() {
		reg.Register(l)
	}
	assert.Equal(t, []string{"balls", "foliage", "gifts", "lights", "polaroids", "star"}, reg.List())

	eng, err := render.NewEngine(reg)
	require.NoError(t, err)
	f := &render.Frame{}
	e.Stamp(f)
	require.NoError(t, eng.RenderOnce(f))

	assert.Equal(t, uint64(1), f.ID)
	assert.Equal(t, "formed", f.Mode)
	assert.Equal(t, "idle", f.Focus)
	assert.False(t, f.HasHighlight)
	assert.Len(t, f.Quads, 3)
	assert.Len(t, f.Lights, 12)
	assert.GreaterOrEqual(t, len(f.Points), 200+10+5+12)
}
