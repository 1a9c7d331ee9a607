package texture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func wait(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("load did not settle")
	}
}

func TestLoadOverHTTPResolvesRelativeURLs(t *testing.T) {
	body := pngBytes(t, 40, 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uploads/a.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	l, err := NewLoader(srv.URL, 16)
	require.NoError(t, err)

	h := l.Load(context.Background(), "/uploads/a.png")
	wait(t, h)
	require.Equal(t, Ready, h.Status())
	assert.InDelta(t, 2.0, h.Aspect(), 1e-9)
	img, ok := h.Image()
	require.True(t, ok)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestFailedLoadKeepsPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	l, err := NewLoader(srv.URL, 0)
	require.NoError(t, err)
	var failed []string
	l.OnError = func(url string, _ error) { failed = append(failed, url) }

	h := l.Load(context.Background(), "/missing.png")
	assert.Equal(t, 1.0, h.Aspect(), "placeholder aspect while loading")
	wait(t, h)
	assert.Equal(t, Failed, h.Status())
	assert.Equal(t, 1.0, h.Aspect())
	_, ok := h.Image()
	assert.False(t, ok)
	require.Error(t, h.Err())
	assert.Contains(t, h.Err().Error(), "status 404")
	assert.Equal(t, []string{"/missing.png"}, failed)
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tall.png")
	require.NoError(t, os.WriteFile(p, pngBytes(t, 10, 30), 0o644))

	l, err := NewLoader("", 0)
	require.NoError(t, err)
	h := l.Load(context.Background(), p)
	wait(t, h)
	require.Equal(t, Ready, h.Status())
	assert.InDelta(t, 1.0/3, h.Aspect(), 1e-9)
}

func TestEmptyURLAndGarbage(t *testing.T) {
	l, err := NewLoader("", 0)
	require.NoError(t, err)
	h := l.Load(context.Background(), "")
	wait(t, h)
	assert.ErrorIs(t, h.Err(), errEmptyURL)

	_, _, err = Decode(bytes.NewReader([]byte("not an image")), 0)
	require.Error(t, err)
}

func TestFitLeavesSmallImages(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	assert.Same(t, image.Image(img), Fit(img, 64))
	assert.Equal(t, image.Rect(0, 0, 4, 2), Fit(img, 4).Bounds())
}

func TestDecodeFormatsAlongsideTGA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 24, 12))
	for i := range src.Pix {
		src.Pix[i] = 200
	}
	encoders := map[string]func(io.Writer, image.Image) error{
		"png":  png.Encode,
		"jpeg": func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) },
		"gif":  func(w io.Writer, m image.Image) error { return gif.Encode(w, m, nil) },
		"tga":  tga.Encode,
	}
	for name, enc := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, enc(&buf, src))
			img, aspect, err := Decode(&buf, 0)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 24, 12), img.Bounds())
			assert.InDelta(t, 2.0, aspect, 1e-9)
		})
	}
}
