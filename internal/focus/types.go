package focus

import (
	"github.com/coreman2200/funtimes-evergreen/internal/camera"
	"github.com/coreman2200/funtimes-evergreen/internal/geom"
)

// State enumerates the choreography states.
type State string

const (
	Idle       State = "idle"
	ZoomingIn  State = "zooming_in"
	Focused    State = "focused"
	ZoomingOut State = "zooming_out"
)

// Event drives the transition table.
type Event string

const (
	Click        Event = "click"     // user selected a card
	Arrival      Event = "arrival"   // a new photo finished its settle delay
	Converged    Event = "converged" // camera reached the focus pose
	DwellElapsed Event = "dwell_elapsed"
	Returned     Event = "returned" // camera is back at the original pose
)

// Next is the pure transition table. ok is false when ev does not apply in s.
// A click is only honoured from idle; an arrival supersedes whatever is in flight.
func Next(s State, ev Event) (State, bool) {
	switch s {
	case Idle:
		switch ev {
		case Click, Arrival:
			return ZoomingIn, true
		}
	case ZoomingIn:
		switch ev {
		case Converged:
			return Focused, true
		case Arrival:
			return ZoomingIn, true
		}
	case Focused:
		switch ev {
		case DwellElapsed:
			return ZoomingOut, true
		case Arrival:
			return ZoomingIn, true
		}
	case ZoomingOut:
		switch ev {
		case Returned:
			return Idle, true
		case Arrival:
			return ZoomingIn, true
		}
	}
	return s, false
}

// Profile is the framing for one trigger kind.
type Profile struct {
	Distance float64 // camera distance in front of the display position
	DwellS   float64 // seconds spent in Focused
}

// Config holds every tuning value of the choreography.
type Config struct {
	Click   Profile
	Arrival Profile

	SettleS float64 // delay between a new photo arriving and the zoom starting

	// DisplayPosition is where the highlighted card is shown; the camera frames it
	// from +Z.
	DisplayPosition geom.Vec3

	MoveRate     float64 // camera follow rate (1/s)
	InThreshold  float64 // zooming_in -> focused
	OutThreshold float64 // zooming_out -> idle
	ExpandRate   float64 // smoothing of the expand signal (1/s)
}

func DefaultConfig() Config {
	return Config{
		Click:           Profile{Distance: 6, DwellS: 5},
		Arrival:         Profile{Distance: 8, DwellS: 30},
		SettleS:         1.2,
		DisplayPosition: geom.V(0, 7.5, 12),
		MoveRate:        3,
		InThreshold:     0.3,
		OutThreshold:    0.5,
		ExpandRate:      2.5,
	}
}

// Camera is what the machine drives. A nil Camera means the controls are not mounted
// yet; camera work is skipped for that frame and retried on the next.
type Camera interface {
	Pose() camera.Pose
	MoveToward(target camera.Pose, rate, dt float64)
	SetControlsEnabled(on bool)
}

// Hooks are dependency-injected callbacks into the rest of the scene.
type Hooks struct {
	// Exists reports whether a photo id can be focused. Unknown ids are ignored.
	Exists func(id int) bool
	// FocusComplete fires once per cycle, when the camera is back and controls are free.
	FocusComplete func(id int)
	// Transition observes every state change.
	Transition func(from, to State, id int)
	// Superseded fires for a photo whose cycle was cut short by a later arrival, either
	// while it was highlighted or while it was still settling.
	Superseded func(id int)
}

// Trigger records which profile the current sequence uses.
type Trigger string

const (
	ByClick   Trigger = "click"
	ByArrival Trigger = "arrival"
)
