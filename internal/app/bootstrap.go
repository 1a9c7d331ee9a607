package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-evergreen/internal/camera"
	"github.com/coreman2200/funtimes-evergreen/internal/config"
	diag "github.com/coreman2200/funtimes-evergreen/internal/diagnostics"
	"github.com/coreman2200/funtimes-evergreen/internal/driver/fake"
	"github.com/coreman2200/funtimes-evergreen/internal/driver/snapshot"
	"github.com/coreman2200/funtimes-evergreen/internal/driver/term"
	"github.com/coreman2200/funtimes-evergreen/internal/experience"
	"github.com/coreman2200/funtimes-evergreen/internal/feed"
	"github.com/coreman2200/funtimes-evergreen/internal/focus"
	"github.com/coreman2200/funtimes-evergreen/internal/geom"
	"github.com/coreman2200/funtimes-evergreen/internal/layout"
	"github.com/coreman2200/funtimes-evergreen/internal/led"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
	"github.com/coreman2200/funtimes-evergreen/internal/texture"
	"github.com/coreman2200/funtimes-evergreen/internal/ws"
)

// Core is everything the frame loop needs, wired together.
type Core struct {
	Cfg   *config.Config
	Exp   *experience.Experience
	Reg   *render.Registry
	Eng   *render.Engine
	State *ws.State
	Snap  *snapshot.Driver
	Strip *led.Strip
	Term  *term.Driver
	Feed  *feed.Client
	Tex   *texture.Loader

	closers []func() error
}

// Options are runtime switches that do not belong in config.yaml.
type Options struct {
	Fake   bool        // print a frame summary every second
	Screen term.Screen // overrides the real terminal when set
}

func vec(v config.Vec) geom.Vec3 { return geom.V(v.X, v.Y, v.Z) }

// ExperienceConfig maps the file layout onto the scene's own config.
func ExperienceConfig(c *config.Config) experience.Config {
	tree := layout.DefaultTree()
	tree.Height, tree.Radius = c.Scene.Height, c.Scene.Radius

	seed := c.Scene.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := c.Focus
	return experience.Config{
		Tree:        tree,
		Foliage:     c.Scene.Foliage,
		Balls:       c.Scene.Balls,
		Gifts:       c.Scene.Gifts,
		Lights:      c.Scene.Lights,
		TransitionS: c.Scene.TransitionS,
		Camera:      camera.Pose{Position: vec(c.Camera.Position), LookAt: vec(c.Camera.LookAt)},
		FOV:         c.Camera.FOV,
		Focus: focus.Config{
			Click:           focus.Profile{Distance: f.Click.Distance, DwellS: f.Click.DwellS},
			Arrival:         focus.Profile{Distance: f.Arrival.Distance, DwellS: f.Arrival.DwellS},
			SettleS:         f.SettleS,
			DisplayPosition: vec(f.Display),
			MoveRate:        f.MoveRate,
			InThreshold:     f.InThreshold,
			OutThreshold:    f.OutThreshold,
			ExpandRate:      f.ExpandRate,
		},
		Seed: seed,
	}
}

// LEDOptions maps the led section onto the string driver.
func LEDOptions(c *config.Config) led.Options {
	p := led.DefaultPower()
	p.WhiteCap = c.LED.Power.WhiteCap
	p.LEDChanMA = c.LED.Power.LEDChanMA
	p.BudgetMA = c.LED.Power.BudgetMA
	return led.Options{
		Port:       c.LED.SPI,
		Count:      c.LED.Count,
		SpeedHz:    c.LED.SpeedHz,
		Brightness: c.LED.Brightness,
		Power:      p,
	}
}

// InitCore builds the scene and its outputs. Hardware that cannot be opened falls back
// to simulation and is reported on /diag; nothing here fails because a board is absent.
func InitCore(ctx context.Context, cfg *config.Config, opts Options) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Core{Cfg: cfg, Reg: render.NewRegistry()}

	var cmd commander
	c.State = ws.NewState(&cmd, cfg.WSFPS)
	c.State.Reg = c.Reg

	tex, err := texture.NewLoader(cfg.Feed.URL, cfg.Feed.TexSize)
	if err != nil {
		return nil, err
	}
	tex.OnError = func(url string, err error) { c.State.Push(diag.Texture(url, err)) }
	c.Tex = tex

	c.Exp = experience.New(ctx, ExperienceConfig(cfg), tex, experience.Hooks{
		Transition: func(from, to focus.State, id int) {
			c.State.Push(diag.Transition(string(from), string(to), id))
		},
		FocusComplete: func(id int) {
			c.State.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.FocusComplete,
				Summary: "focus complete", Evidence: map[string]any{"photo": id}})
		},
		FeedStatus: func(ev feed.Event) {
			switch ev.Kind {
			case feed.Connectivity:
				c.State.Push(diag.Feed(ev.Connected))
			case feed.UploadProgress:
				c.State.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.FeedUploading,
					Summary: "upload in progress", Evidence: map[string]any{"uploading": ev.Uploading}})
			}
		},
	})
	cmd.exp = c.Exp
	for _, l := range c.Exp.Layers() {
		c.Reg.Register(l)
	}

	c.Eng, err = render.NewEngine(c.Reg, c.State)
	if err != nil {
		return nil, err
	}
	names := []string{"ws"}

	c.Snap = snapshot.New(cfg.Snapshot.Width, cfg.Snapshot.Height)
	c.Eng.AddDriver(c.Snap)
	names = append(names, "snapshot")

	if cfg.LED.Driver != "off" {
		strip, fallback, err := led.Open(cfg.LED.Driver, LEDOptions(cfg))
		if err != nil {
			return nil, err
		}
		if fallback != nil {
			c.State.Push(diag.Fallback(cfg.LED.Driver, "sim", fallback))
		}
		c.Strip = strip
		c.Eng.AddDriver(strip)
		c.closers = append(c.closers, strip.Close)
		names = append(names, "led")
	}

	if cfg.Terminal || opts.Screen != nil {
		var td *term.Driver
		if opts.Screen != nil {
			td = term.New(opts.Screen)
			if err := opts.Screen.Init(); err != nil {
				return nil, fmt.Errorf("terminal: %w", err)
			}
		} else if td, err = term.Open(); err != nil {
			return nil, fmt.Errorf("terminal: %w", err)
		}
		c.Term = td
		c.Eng.AddDriver(td)
		c.closers = append(c.closers, td.Close)
		names = append(names, "term")
	}

	if opts.Fake {
		c.Eng.AddDriver(&fake.Driver{Every: max(cfg.FPS, 1)})
		names = append(names, "fake")
	}
	c.State.CurrentDrivers = names

	if cfg.Feed.URL != "" {
		fc, err := feed.New(cfg.Feed.URL)
		if err != nil {
			return nil, err
		}
		c.Feed = fc
		c.Exp.AttachFeed(fc.Events())
	}

	log.Info().Strs("drivers", names).Int("layers", len(c.Reg.List())).Msg("core ready")
	return c, nil
}

// Close releases outputs in reverse order of opening.
func (c *Core) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// commander lets the preview server queue onto an experience built after it.
type commander struct{ exp *experience.Experience }

func (c *commander) Do(fn func(*experience.Experience)) bool {
	if c.exp == nil {
		return false
	}
	return c.exp.Do(fn)
}
