package snapshot

import (
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"

	"github.com/coreman2200/funtimes-evergreen/internal/camera"
	"github.com/coreman2200/funtimes-evergreen/internal/geom"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
)

// 90 degree FOV puts one world unit at 3.2px for a 64px surface at depth 10.
func view() camera.View {
	return camera.View{Pose: camera.Pose{Position: geom.V(0, 0, 10), LookAt: geom.V(0, 0, 0)}, FOV: 90}
}

func TestPointsSplatAdditively(t *testing.T) {
	white := render.Color{R: 1, G: 1, B: 1}
	one := Rasterize(view(), []render.Point{{Pos: geom.V(0, 0, 0), Color: white.Scale(0.3), Size: 1}}, nil, 64, 64)
	two := Rasterize(view(), []render.Point{
		{Pos: geom.V(0, 0, 0), Color: white.Scale(0.3), Size: 1},
		{Pos: geom.V(0, 0, 0), Color: white.Scale(0.3), Size: 1},
	}, nil, 64, 64)

	corner := one.NRGBAAt(0, 0)
	assert.Equal(t, render.To8(sky.B), corner.B)
	assert.Greater(t, one.NRGBAAt(32, 32).R, corner.R)
	assert.Greater(t, two.NRGBAAt(32, 32).R, one.NRGBAAt(32, 32).R)
}

func TestPointsBehindCameraSkipped(t *testing.T) {
	img := Rasterize(view(), []render.Point{{Pos: geom.V(0, 0, 20), Color: render.Color{R: 1}, Size: 5}}, nil, 16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			require.Equal(t, render.To8(sky.R), img.NRGBAAt(x, y).R)
		}
	}
}

func TestQuadsPaintPlaceholderAndImage(t *testing.T) {
	photo := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		photo.Set(i%2, i/2, color.NRGBA{B: 255, A: 255})
	}
	quad := func(img image.Image) render.Quad {
		return render.Quad{ID: 1, Center: geom.V(0, 0, 0), Width: 2, Height: 2, Image: img, Tint: render.Color{R: 1}}
	}

	img := Rasterize(view(), nil, []render.Quad{quad(nil)}, 64, 64)
	assert.Equal(t, color.NRGBA{R: 204, A: 255}, img.NRGBAAt(31, 30))
	assert.Equal(t, uint8(245), img.NRGBAAt(28, 28).R, "frame border")

	img = Rasterize(view(), nil, []render.Quad{quad(photo)}, 64, 64)
	px := img.NRGBAAt(31, 30)
	assert.InDelta(t, 255, int(px.B), 2)
	assert.InDelta(t, 0, int(px.R), 2)
}

func TestNearerCardOnTop(t *testing.T) {
	far := render.Quad{ID: 1, Center: geom.V(0, 0, -5), Width: 4, Height: 4, Tint: render.Color{G: 1}}
	near := render.Quad{ID: 2, Center: geom.V(0, 0, 0), Width: 2, Height: 2, Tint: render.Color{R: 1}}
	img := Rasterize(view(), nil, []render.Quad{near, far}, 64, 64)
	assert.Equal(t, color.NRGBA{R: 204, A: 255}, img.NRGBAAt(31, 30))
}

func TestServeWebP(t *testing.T) {
	d := New(64, 48)
	require.NoError(t, d.Write(&render.Frame{
		ID:     3,
		View:   view(),
		Points: []render.Point{{Pos: geom.V(0, 0, 0), Color: render.Color{R: 1}, Size: 1}},
	}))
	_, id := d.Snapshot()
	assert.Equal(t, uint64(3), id)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshot.webp", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/webp", rec.Header().Get("Content-Type"))

	img, err := webp.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
}
