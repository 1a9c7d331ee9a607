package term

import (
	"context"
	"image"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-evergreen/internal/camera"
	"github.com/coreman2200/funtimes-evergreen/internal/geom"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
)

type cell struct {
	r  rune
	st tcell.Style
}

type fakeScreen struct {
	w, h   int
	cells  map[[2]int]cell
	shown  int
	events []tcell.Event
}

func newFake(w, h int) *fakeScreen { return &fakeScreen{w: w, h: h, cells: map[[2]int]cell{}} }

func (s *fakeScreen) Init() error { return nil }
func (s *fakeScreen) Fini() {}
func (s *fakeScreen) Clear() { s.cells = map[[2]int]cell{} }
func (s *fakeScreen) Show() { s.shown++ }
func (s *fakeScreen) Size() (int, int) { return s.w, s.h }
func (s *fakeScreen) SetContent(x, y int, r rune, _ []rune, st tcell.Style) {
	s.cells[[2]int{x, y}] = cell{r, st}
}

func (s *fakeScreen) PollEvent() tcell.Event {
	if len(s.events) == 0 {
		return nil
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev
}

func view() camera.View {
	return camera.View{Pose: camera.Pose{Position: geom.V(0, 0, 10), LookAt: geom.V(0, 0, 0)}, FOV: 45}
}

func TestWriteProjectsWithDepth(t *testing.T) {
	scr := newFake(40, 20)
	d := New(scr)
	f := &render.Frame{
		Mode:  "formed",
		Focus: "idle",
		View:  view(),
		Points: []render.Point{
			{Pos: geom.V(0, 0, 0), Color: render.Color{R: 1}, Size: 0.05},
			{Pos: geom.V(0, 0, 2), Color: render.Color{G: 1}, Size: 0.05}, // nearer, same cell
			{Pos: geom.V(0, 0, 20), Color: render.Color{B: 1}, Size: 1},   // behind the camera
		},
	}
	require.NoError(t, d.Write(f))
	assert.Equal(t, 1, scr.shown)

	c := scr.cells[[2]int{20, 10}]
	assert.Equal(t, '.', c.r)
	fg, _, _ := c.st.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0, 255, 0), fg, "nearest point wins the cell")

	var status []rune
	for x := 0; x < 7; x++ {
		status = append(status, scr.cells[[2]int{x, 19}].r)
	}
	assert.Equal(t, " formed", string(status))
}

func TestQuadsFillWithPlaceholderOrImage(t *testing.T) {
	scr := newFake(40, 20)
	d := New(scr)
	f := &render.Frame{View: view(), Quads: []render.Quad{
		{ID: 1, Center: geom.V(0, 0, 0), Width: 2, Height: 2, Tint: render.Color{R: 1, G: 1, B: 1}},
	}}
	require.NoError(t, d.Write(f))
	assert.Equal(t, '▒', scr.cells[[2]int{20, 10}].r)

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	f.Quads[0].Image = img
	require.NoError(t, d.Write(f))
	assert.Equal(t, '█', scr.cells[[2]int{20, 10}].r)
}

func TestKeys(t *testing.T) {
	cases := map[*tcell.EventKey]Action{
		tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone): Toggle,
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone): Quit,
		tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone): Quit,
		tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone):   OrbitLeft,
		tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone):    FocusNext,
	}
	for ev, want := range cases {
		got, ok := Keys(ev)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := Keys(tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone))
	assert.False(t, ok)
}

func TestRunStopsOnQuit(t *testing.T) {
	scr := newFake(10, 5)
	scr.events = []tcell.Event{
		tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone),
	}
	var got []Action
	New(scr).Run(context.Background(), func(a Action) { got = append(got, a) })
	assert.Equal(t, []Action{Toggle, Quit}, got)
}
