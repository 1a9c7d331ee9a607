package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/funtimes-evergreen/internal/diagnostics"
	"github.com/coreman2200/funtimes-evergreen/internal/driver/term"
	"github.com/coreman2200/funtimes-evergreen/internal/experience"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
)

const (
	maxStep     = 0.1 // seconds; a stalled loop does not teleport the scene
	orbitStep   = 0.08
	errInterval = 5 * time.Second
)

// Conductor owns the frame loop goroutine.
type Conductor struct {
	Core *Core
	FPS  int

	frame   render.Frame
	lastErr time.Time
	cursor  int // last card focused from the keyboard
}

func NewConductor(c *Core) *Conductor {
	return &Conductor{Core: c, FPS: c.Cfg.FPS, cursor: -1}
}

// Step advances the scene by dt and pushes one frame through every driver.
func (c *Conductor) Step(dt float64) error {
	c.Core.Exp.Tick(min(dt, maxStep))
	c.Core.Exp.Stamp(&c.frame)
	err := c.Core.Eng.RenderOnce(&c.frame)
	if err != nil && time.Since(c.lastErr) > errInterval {
		c.lastErr = time.Now()
		log.Warn().Err(err).Msg("driver write")
		c.Core.State.Push(diag.Diagnostic{Severity: diag.Warn, Code: diag.DriverWrite,
			Summary: "an output failed to take a frame", Detail: err.Error()})
	}
	return err
}

// Frame is the last rendered frame. Only valid on the loop goroutine.
func (c *Conductor) Frame() *render.Frame { return &c.frame }

// Run starts the photo feed and terminal input, then ticks until ctx is done or the
// terminal asks to quit.
func (c *Conductor) Run(ctx context.Context) error {
	fps := c.FPS
	if fps <= 0 {
		fps = 60
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if fc := c.Core.Feed; fc != nil {
		go c.loadPhotos(ctx)
		go func() { _ = fc.Run(ctx) }()
	}
	if td := c.Core.Term; td != nil {
		go func() {
			td.Run(ctx, func(a term.Action) {
				if a == term.Quit {
					cancel()
					return
				}
				c.Core.Exp.Do(func(e *experience.Experience) { c.apply(e, a) })
			})
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	last := time.Now()
	log.Info().Int("fps", fps).Msg("frame loop running")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			_ = c.Step(dt)
		}
	}
}

// loadPhotos fetches the initial list, retrying until the server answers.
func (c *Conductor) loadPhotos(ctx context.Context) {
	backoff := time.Second
	for {
		list, err := c.Core.Feed.Photos(ctx)
		if err == nil {
			log.Info().Int("photos", len(list)).Msg("photo list loaded")
			c.Core.Exp.Do(func(e *experience.Experience) { e.SetPhotos(list) })
			return
		}
		log.Warn().Err(err).Dur("retry_in", backoff).Msg("photo list fetch failed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, 30*time.Second)
	}
}

func (c *Conductor) apply(e *experience.Experience, a term.Action) {
	switch a {
	case term.Toggle:
		e.Toggle()
	case term.OrbitLeft:
		e.Orbit(-orbitStep, 0)
	case term.OrbitRight:
		e.Orbit(orbitStep, 0)
	case term.OrbitUp:
		e.Orbit(0, orbitStep)
	case term.OrbitDown:
		e.Orbit(0, -orbitStep)
	case term.FocusNext:
		photos := e.Photos()
		if len(photos) == 0 {
			return
		}
		next := (c.cursor + 1) % len(photos)
		if e.Click(photos[next].ID) {
			c.cursor = next
		}
	}
}
