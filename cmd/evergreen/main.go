package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-evergreen/internal/app"
	"github.com/coreman2200/funtimes-evergreen/internal/config"
	"github.com/coreman2200/funtimes-evergreen/internal/led"
)

func main() {
	// ---- Flags (explicitly set flags win over config.yaml) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		fps        = flag.Int("fps", 60, "target frames per second")
		wsFPS      = flag.Int("ws-fps", 20, "preview broadcast rate")
		ledDriver  = flag.String("led", "sim", "led driver: spi | sim | off")
		feedURL    = flag.String("feed", "", "photo server root, e.g. http://localhost:3000")
		terminal   = flag.Bool("term", false, "draw the tree in this terminal")
		fakeOut    = flag.Bool("fake", false, "print a frame summary once a second")
		seed       = flag.Int64("seed", 0, "layout seed, 0 picks one")
		debug      = flag.Bool("debug", false, "debug logging")
		saveConfig = flag.Bool("save-config", false, "write the effective config to -config and exit")
		ledTest    = flag.String("led-test", "", "play a bring-up pattern on the string and exit: index_sweep | rgb_channels | segments")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config invalid")
		}
		log.Warn().Str("path", *configPath).Msg("no config file; using defaults and flags")
		cfg = config.Default()
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Listen = *addr
		case "fps":
			cfg.FPS = *fps
		case "ws-fps":
			cfg.WSFPS = *wsFPS
		case "led":
			cfg.LED.Driver = *ledDriver
		case "feed":
			cfg.Feed.URL = *feedURL
		case "term":
			cfg.Terminal = *terminal
		case "seed":
			cfg.Scene.Seed = *seed
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config invalid")
	}
	if cfg.Terminal {
		// the screen owns stdout
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen, NoColor: true})
	}
	if *saveConfig {
		if err := config.Save(*configPath, cfg); err != nil {
			log.Fatal().Err(err).Msg("config save failed")
		}
		log.Info().Str("path", *configPath).Msg("config written")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *ledTest != "" {
		runLEDTest(ctx, cfg, led.PatternKind(*ledTest))
		return
	}

	core, err := app.InitCore(ctx, cfg, app.Options{Fake: *fakeOut})
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", core.State.HandleFramesWS)
	mux.HandleFunc("/diag", core.State.HandleDiagWS)
	mux.HandleFunc("/control", core.State.HandleControlWS)
	mux.HandleFunc("/health", core.State.HandleHealth)
	mux.Handle("/snapshot.webp", core.Snap)

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Listen).Strs("drivers", core.State.CurrentDrivers).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Frame loop until a signal or the terminal quits ----
	if err := app.NewConductor(core).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("frame loop stopped")
	}
	log.Info().Msg("shutting down")

	shutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdown)
	if err := core.Close(); err != nil {
		log.Warn().Err(err).Msg("closing outputs")
	}
}

func runLEDTest(ctx context.Context, cfg *config.Config, kind led.PatternKind) {
	strip, fallback, err := led.Open(cfg.LED.Driver, app.LEDOptions(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("led open")
	}
	if fallback != nil {
		log.Warn().Err(fallback).Msg("testing against the simulator")
	}
	defer strip.Close()
	log.Info().Str("pattern", string(kind)).Int("pixels", strip.Count()).Msg("led test")
	if err := strip.RunPattern(ctx, kind, 50*time.Millisecond); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("led test")
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
