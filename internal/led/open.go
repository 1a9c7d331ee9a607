package led

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// Options for the hardware string.
type Options struct {
	Port       string // spireg name, "" for the first port
	Count      int
	SpeedHz    int
	Brightness float64
	Power      Power
}

// NewNRZ drives a WS2812-style string over an already opened SPI port.
func NewNRZ(port spi.Port, o Options) (*Strip, error) {
	hz := o.SpeedHz
	if hz <= 0 {
		hz = 2_500_000
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: o.Count,
		Channels:  3,
		Freq:      physic.Frequency(hz) * physic.Hertz,
	})
	if err != nil {
		return nil, fmt.Errorf("led: nrzled: %w", err)
	}
	return NewStrip("spi", dev, o.Count, o.Brightness, o.Power)
}

// OpenSPI initialises the host and opens the named port.
func OpenSPI(o Options) (*Strip, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("led: host init: %w", err)
	}
	port, err := spireg.Open(o.Port)
	if err != nil {
		return nil, fmt.Errorf("led: open spi %q: %w", o.Port, err)
	}
	s, err := NewNRZ(port, o)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	s.closer = port.Close
	log.Info().Str("port", port.String()).Int("pixels", o.Count).Msg("led string ready")
	return s, nil
}

// OpenSim returns a logging stand-in with the same mapping and limiter.
func OpenSim(o Options) (*Strip, error) {
	return NewStrip("sim", &Sim{Every: 120}, o.Count, o.Brightness, o.Power)
}

// Open picks the driver by name. A failing "spi" falls back to the simulator and
// reports the cause so the caller can surface it.
func Open(driver string, o Options) (s *Strip, fallback error, err error) {
	switch driver {
	case "spi":
		s, err := OpenSPI(o)
		if err == nil {
			return s, nil, nil
		}
		log.Warn().Err(err).Msg("SPI LED driver unavailable, falling back to SIM")
		sim, simErr := OpenSim(o)
		return sim, err, simErr
	case "sim", "":
		s, err := OpenSim(o)
		return s, nil, err
	default:
		return nil, nil, fmt.Errorf("led: unknown driver %q", driver)
	}
}
