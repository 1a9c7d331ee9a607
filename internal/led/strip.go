package led

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-evergreen/internal/render"
)

// Sink takes raw RGB bytes, three per pixel. *nrzled.Dev satisfies it.
type Sink interface {
	Write(rgb []byte) (int, error)
	Halt() error
}

// Strip maps the ornament lights of each frame onto a physical string.
type Strip struct {
	Name       string
	sink       Sink
	count      int
	brightness float32
	power      Power

	buf []render.Color
	rgb []byte

	closer func() error
}

func NewStrip(name string, sink Sink, count int, brightness float64, p Power) (*Strip, error) {
	if count <= 0 {
		return nil, fmt.Errorf("led: invalid pixel count %d", count)
	}
	return &Strip{
		Name:       name,
		sink:       sink,
		count:      count,
		brightness: float32(brightness),
		power:      p,
		buf:        make([]render.Color, count),
		rgb:        make([]byte, count*3),
	}, nil
}

func (s *Strip) Count() int { return s.count }

// Write resamples f.Lights onto the string. With no lights in the frame the string is
// dark.
func (s *Strip) Write(f *render.Frame) error {
	n := len(f.Lights)
	for j := range s.buf {
		if n == 0 {
			s.buf[j] = render.Color{}
			continue
		}
		s.buf[j] = f.Lights[j*n/s.count].Scale(s.brightness)
	}
	return s.flush()
}

// flush limits s.buf and sends it.
func (s *Strip) flush() error {
	DefaultLimiter(s.buf, s.power)
	for j, c := range s.buf {
		s.rgb[j*3+0] = render.To8(c.R)
		s.rgb[j*3+1] = render.To8(c.G)
		s.rgb[j*3+2] = render.To8(c.B)
	}
	if _, err := s.sink.Write(s.rgb); err != nil {
		return fmt.Errorf("led: %s write: %w", s.Name, err)
	}
	return nil
}

// Close blanks the string and releases the port.
func (s *Strip) Close() error {
	if err := s.sink.Halt(); err != nil {
		log.Warn().Err(err).Str("driver", s.Name).Msg("led halt")
	}
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

// Sim stands in for the hardware: it logs a summary of what would be sent.
type Sim struct {
	Every  int // log one frame in Every
	frames int
	Last   []byte
}

func (s *Sim) Write(rgb []byte) (int, error) {
	s.Last = append(s.Last[:0], rgb...)
	s.frames++
	every := max(s.Every, 1)
	if s.frames%every == 0 {
		var r, g, b int
		for i := 0; i+2 < len(rgb); i += 3 {
			r += int(rgb[i])
			g += int(rgb[i+1])
			b += int(rgb[i+2])
		}
		px := max(len(rgb)/3, 1)
		log.Debug().Int("frame", s.frames).Int("pixels", len(rgb)/3).
			Int("r", r/px).Int("g", g/px).Int("b", b/px).Msg("led sim")
	}
	return len(rgb), nil
}

func (s *Sim) Halt() error {
	for i := range s.Last {
		s.Last[i] = 0
	}
	return nil
}
