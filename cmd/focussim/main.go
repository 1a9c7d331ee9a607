package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-evergreen/internal/app"
	"github.com/coreman2200/funtimes-evergreen/internal/config"
	"github.com/coreman2200/funtimes-evergreen/internal/driver/fake"
	"github.com/coreman2200/funtimes-evergreen/internal/experience"
	"github.com/coreman2200/funtimes-evergreen/internal/feed"
	"github.com/coreman2200/funtimes-evergreen/internal/focus"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
)

// focussim replays a click and a photo arrival at a fixed step, faster than real time,
// and logs the choreography.
func main() {
	var (
		configPath = flag.String("config", "", "optional config.yaml for focus tuning")
		fps        = flag.Int("fps", 60, "simulation frames per second")
		photos     = flag.Int("photos", 6, "photos on the tree")
		clickAt    = flag.Duration("click-at", 4*time.Second, "when the first card is clicked")
		arriveAt   = flag.Duration("arrive-at", 20*time.Second, "when a new photo is pushed")
		duration   = flag.Duration("for", 70*time.Second, "simulated time")
		frames     = flag.Bool("frames", false, "print a frame summary every simulated second")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("config")
		}
		cfg = c
	}
	if *fps <= 0 {
		log.Fatal().Int("fps", *fps).Msg("fps must be positive")
	}
	cfg.Scene.Foliage, cfg.Scene.Balls, cfg.Scene.Gifts, cfg.Scene.Lights = 200, 12, 6, 24

	dt := 1.0 / float64(*fps)
	var now float64
	transitions, completed := 0, 0
	e := experience.New(context.Background(), app.ExperienceConfig(cfg), nil, experience.Hooks{
		Transition: func(from, to focus.State, id int) {
			transitions++
			fmt.Printf("[t=%6.2fs] %-11s -> %-11s photo=%d\n", now, from, to, id)
		},
		FocusComplete: func(id int) {
			completed++
			fmt.Printf("[t=%6.2fs] focus complete photo=%d\n", now, id)
		},
	})

	list := make([]feed.Photo, *photos)
	for i := range list {
		list[i] = feed.Photo{ID: i + 1, URL: fmt.Sprintf("/uploads/%d.jpg", i+1)}
	}
	e.SetPhotos(list)

	events := make(chan feed.Event, 1)
	e.AttachFeed(events)

	reg := render.NewRegistry()
	for _, l := range e.Layers() {
		reg.Register(l)
	}
	eng, err := render.NewEngine(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("engine")
	}
	if *frames {
		eng.AddDriver(&fake.Driver{Every: *fps})
	}

	clicked, arrived := false, false
	var f render.Frame
	for now < duration.Seconds() {
		if !clicked && now >= clickAt.Seconds() && *photos > 0 {
			clicked = true
			fmt.Printf("[t=%6.2fs] click photo=1 accepted=%v\n", now, e.Click(1))
		}
		if !arrived && now >= arriveAt.Seconds() {
			arrived = true
			id := *photos + 1
			events <- feed.Event{Kind: feed.NewPhoto, Photo: feed.Photo{ID: id, URL: fmt.Sprintf("/uploads/%d.jpg", id), IsNew: true}}
			fmt.Printf("[t=%6.2fs] pushed photo=%d\n", now, id)
		}
		e.Tick(dt)
		e.Stamp(&f)
		if err := eng.RenderOnce(&f); err != nil {
			log.Warn().Err(err).Msg("render")
		}
		now += dt
	}
	fmt.Printf("Done at t=%.2fs: %d transitions, %d completed, state=%s\n", now, transitions, completed, e.Focus().State())
}
