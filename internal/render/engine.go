package render

import (
	"errors"
	"time"
)

// Engine renders frames from the registered layers, applies post-processing, then
// hands the frame to every driver.
type Engine struct {
	Reg     *Registry
	Drivers []Driver

	post PostPipeline

	// metrics (last durations in ms)
	Last struct {
		RenderMS float64
		PostMS   float64
		TotalMS  float64
	}
}

// PostPipeline groups post stages; all are optional.
type PostPipeline struct {
	ToneMap func([]Point)
}

// NewEngine returns an Engine with the default tone map wired.
func NewEngine(reg *Registry, drivers ...Driver) (*Engine, error) {
	if reg == nil {
		return nil, errors.New("render: registry is nil")
	}
	return &Engine{
		Reg:     reg,
		Drivers: drivers,
		post:    PostPipeline{ToneMap: DefaultToneMap},
	}, nil
}

func (e *Engine) SetPost(p PostPipeline) { e.post = p }

// AddDriver attaches another output.
func (e *Engine) AddDriver(d Driver) {
	if d != nil {
		e.Drivers = append(e.Drivers, d)
	}
}

// RenderOnce draws all active layers into f and writes it to every driver. A failing
// driver does not stop the others; their errors are joined.
func (e *Engine) RenderOnce(f *Frame) error {
	start := time.Now()
	f.Reset()
	for _, l := range e.Reg.Active() {
		l.Render(f)
	}
	e.Last.RenderMS = float64(time.Since(start).Microseconds()) / 1000.0

	postStart := time.Now()
	if e.post.ToneMap != nil {
		e.post.ToneMap(f.Points)
	}
	e.Last.PostMS = float64(time.Since(postStart).Microseconds()) / 1000.0

	var errs []error
	for _, d := range e.Drivers {
		if err := d.Write(f); err != nil {
			errs = append(errs, err)
		}
	}
	e.Last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	return errors.Join(errs...)
}
