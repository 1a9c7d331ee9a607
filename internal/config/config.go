package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type Profile struct {
	Distance float64 `yaml:"distance"`
	DwellS   float64 `yaml:"dwell_s"`
}

type Focus struct {
	Click        Profile `yaml:"click"`
	Arrival      Profile `yaml:"arrival"`
	SettleS      float64 `yaml:"settle_s"`
	Display      Vec     `yaml:"display"`
	MoveRate     float64 `yaml:"move_rate"`
	InThreshold  float64 `yaml:"in_threshold"`
	OutThreshold float64 `yaml:"out_threshold"`
	ExpandRate   float64 `yaml:"expand_rate"`
}

type Camera struct {
	Position   Vec     `yaml:"position"`
	LookAt     Vec     `yaml:"look_at"`
	FOV        float64 `yaml:"fov"`
	AutoRotate float64 `yaml:"auto_rotate"` // rad/s while idle
}

type Scene struct {
	Height      float64 `yaml:"height"`
	Radius      float64 `yaml:"radius"`
	Foliage     int     `yaml:"foliage"`
	Balls       int     `yaml:"balls"`
	Gifts       int     `yaml:"gifts"`
	Lights      int     `yaml:"lights"`
	TransitionS float64 `yaml:"transition_s"`
	Seed        int64   `yaml:"seed"` // 0 picks one at startup
}

type Feed struct {
	URL     string `yaml:"url"` // photo server root, "" runs without photos
	TexSize int    `yaml:"tex_size"`
}

type PowerCfg struct {
	BudgetMA  float64 `yaml:"budget_ma"`
	LEDChanMA float64 `yaml:"led_chan_ma"`
	WhiteCap  float64 `yaml:"white_cap"`
}

// LED is the physical string of tree lights.
type LED struct {
	Driver     string   `yaml:"driver"` // "spi" | "sim" | "off"
	SPI        string   `yaml:"spi"`    // periph port name, "" for the first
	Count      int      `yaml:"count"`
	SpeedHz    int      `yaml:"speed_hz"`
	Brightness float64  `yaml:"brightness"`
	Power      PowerCfg `yaml:"power"`
}

type Snapshot struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Config struct {
	Listen string `yaml:"listen"`
	FPS    int    `yaml:"fps"`
	WSFPS  int    `yaml:"ws_fps"` // preview broadcast rate

	Scene    Scene    `yaml:"scene"`
	Camera   Camera   `yaml:"camera"`
	Focus    Focus    `yaml:"focus"`
	Feed     Feed     `yaml:"feed"`
	LED      LED      `yaml:"led"`
	Snapshot Snapshot `yaml:"snapshot"`
	Terminal bool     `yaml:"terminal"`
}

// Default is a complete working configuration; Load overlays a file on top of it.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		FPS:    60,
		WSFPS:  20,
		Scene: Scene{
			Height:      14,
			Radius:      5.5,
			Foliage:     6000,
			Balls:       140,
			Gifts:       60,
			Lights:      240,
			TransitionS: 2.5,
		},
		Camera: Camera{
			Position:   Vec{0, 7, 26},
			LookAt:     Vec{0, 7, 0},
			FOV:        45,
			AutoRotate: 0.08,
		},
		Focus: Focus{
			Click:        Profile{Distance: 6, DwellS: 5},
			Arrival:      Profile{Distance: 8, DwellS: 30},
			SettleS:      1.2,
			Display:      Vec{0, 7.5, 12},
			MoveRate:     3,
			InThreshold:  0.3,
			OutThreshold: 0.5,
			ExpandRate:   2.5,
		},
		Feed: Feed{TexSize: 512},
		LED: LED{
			Driver:     "sim",
			Count:      240,
			SpeedHz:    2_500_000,
			Brightness: 0.6,
			Power:      PowerCfg{BudgetMA: 3000, LEDChanMA: 20, WhiteCap: 0.85},
		},
		Snapshot: Snapshot{Width: 480, Height: 640},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate rejects values the scene cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.FPS <= 0:
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	case c.Scene.Height <= 0 || c.Scene.Radius <= 0:
		return fmt.Errorf("scene height and radius must be positive")
	case c.Scene.Foliage < 0 || c.Scene.Balls < 0 || c.Scene.Gifts < 0 || c.Scene.Lights < 0:
		return fmt.Errorf("scene counts must not be negative")
	case c.Focus.InThreshold <= 0 || c.Focus.OutThreshold <= 0:
		return fmt.Errorf("focus thresholds must be positive")
	}
	switch c.LED.Driver {
	case "spi", "sim", "off", "":
	default:
		return fmt.Errorf("unknown led driver %q", c.LED.Driver)
	}
	return nil
}
