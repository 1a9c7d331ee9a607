package led

import (
	"context"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-evergreen/internal/render"
)

// PatternKind names a bring-up pattern for checking a freshly wired string.
type PatternKind string

const (
	IndexSweep  PatternKind = "index_sweep"  // one white pixel walks the string
	RGBChannels PatternKind = "rgb_channels" // whole string red, green, blue
	Segments    PatternKind = "segments"     // each tenth of the string in turn, cyan
)

const segmentCount = 10

// Pattern steps through a bring-up sequence.
type Pattern struct {
	Kind PatternKind
	step int
}

// Step fills buf with the next image; false when the pattern has finished.
func (p *Pattern) Step(buf []render.Color) bool {
	n := len(buf)
	for i := range buf {
		buf[i] = render.Color{}
	}
	switch p.Kind {
	case IndexSweep:
		if p.step >= n {
			return false
		}
		buf[p.step] = render.Color{R: 1, G: 1, B: 1}
	case RGBChannels:
		if p.step >= 3 {
			return false
		}
		c := [3]render.Color{{R: 1}, {G: 1}, {B: 1}}[p.step]
		for i := range buf {
			buf[i] = c
		}
	case Segments:
		if p.step >= segmentCount {
			return false
		}
		lo, hi := p.step*n/segmentCount, (p.step+1)*n/segmentCount
		for i := lo; i < hi; i++ {
			buf[i] = render.Color{G: 1, B: 1}
		}
	default:
		return false
	}
	p.step++
	return true
}

// RunPattern plays kind on the string, one step per interval, then blanks it. The
// power limiter still applies.
func (s *Strip) RunPattern(ctx context.Context, kind PatternKind, interval time.Duration) error {
	switch kind {
	case IndexSweep, RGBChannels, Segments:
	default:
		return fmt.Errorf("led: unknown pattern %q", kind)
	}
	p := &Pattern{Kind: kind}
	t := time.NewTicker(interval)
	defer t.Stop()
	for p.Step(s.buf) {
		for i := range s.buf {
			s.buf[i] = s.buf[i].Scale(s.brightness)
		}
		if err := s.flush(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	clear(s.buf)
	return s.flush()
}
