package texture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/ftrvxmtrx/tga"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Status of a texture load.
type Status int

const (
	Loading Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

var errEmptyURL = errors.New("texture: empty url")

// Handle is the card-local result of one load. A failed handle stays failed; loads
// are never retried.
type Handle struct {
	URL string

	mu     sync.RWMutex
	status Status
	img    image.Image
	aspect float64
	err    error
	done   chan struct{}
}

func (h *Handle) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Image returns the decoded (possibly downscaled) texture once ready.
func (h *Handle) Image() (image.Image, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.img, h.status == Ready
}

// Aspect is width/height of the source image, 1 until it is known.
func (h *Handle) Aspect() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.status != Ready || h.aspect <= 0 {
		return 1
	}
	return h.aspect
}

func (h *Handle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Done is closed when the load settles either way.
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) settle(img image.Image, aspect float64, err error) {
	h.mu.Lock()
	if err != nil {
		h.status, h.err = Failed, err
	} else {
		h.status, h.img, h.aspect = Ready, img, aspect
	}
	h.mu.Unlock()
	close(h.done)
}

// Loader fetches card images off the frame loop.
type Loader struct {
	Client  *http.Client
	Base    *url.URL // relative photo urls resolve against this
	MaxDim  int      // longest side kept in memory; 0 keeps the original
	OnError func(url string, err error)
}

func NewLoader(base string, maxDim int) (*Loader, error) {
	l := &Loader{Client: &http.Client{Timeout: 15 * time.Second}, MaxDim: maxDim}
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("texture: base url: %w", err)
		}
		l.Base = u
	}
	return l, nil
}

// Load starts an asynchronous load and returns immediately. In-flight loads are not
// cancelled when the card goes away.
func (l *Loader) Load(ctx context.Context, raw string) *Handle {
	h := &Handle{URL: raw, done: make(chan struct{})}
	go func() {
		img, aspect, err := l.fetch(ctx, raw)
		if err != nil {
			log.Warn().Err(err).Str("url", raw).Msg("texture load failed; using placeholder")
			if l.OnError != nil {
				l.OnError(raw, err)
			}
		}
		h.settle(img, aspect, err)
	}()
	return h
}

func (l *Loader) fetch(ctx context.Context, raw string) (image.Image, float64, error) {
	rc, err := l.open(ctx, raw)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()
	return Decode(rc, l.MaxDim)
}

func (l *Loader) open(ctx context.Context, raw string) (io.ReadCloser, error) {
	if raw == "" {
		return nil, errEmptyURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("texture: parse %s: %w", raw, err)
	}
	// "/uploads/a.jpg" from the backend is relative to the api host; without a base
	// it is read from disk.
	if l.Base != nil && u.Scheme == "" {
		u = l.Base.ResolveReference(u)
	}
	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("texture: request %s: %w", u, err)
		}
		client := l.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("texture: get %s: %w", u, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("texture: get %s: status %d", u, resp.StatusCode)
		}
		return resp.Body, nil
	case "file", "":
		f, err := os.Open(u.Path)
		if err != nil {
			return nil, fmt.Errorf("texture: open %s: %w", u.Path, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("texture: unsupported scheme %q", u.Scheme)
	}
}

// maxBytes bounds a single photo read into memory.
const maxBytes = 64 << 20

// Decode reads png, jpeg, gif or webp, then tga. tga has no magic bytes, so it is not
// registered with image and only gets input the registered formats rejected. The aspect
// ratio is taken from the native size; the returned image is downscaled to maxDim.
func Decode(r io.Reader, maxDim int) (image.Image, float64, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("texture: read: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		if timg, terr := tga.Decode(bytes.NewReader(data)); terr == nil {
			img, err = timg, nil
		}
	}
	if err != nil {
		return nil, 0, fmt.Errorf("texture: decode: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, 0, fmt.Errorf("texture: empty image %dx%d", b.Dx(), b.Dy())
	}
	aspect := float64(b.Dx()) / float64(b.Dy())
	return Fit(img, maxDim), aspect, nil
}

// Fit downscales img so its longest side is at most maxDim.
func Fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if maxDim <= 0 || longest <= maxDim {
		return img
	}
	w := max(1, b.Dx()*maxDim/longest)
	h := max(1, b.Dy()*maxDim/longest)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
