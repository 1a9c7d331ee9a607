package scene

import "github.com/coreman2200/funtimes-evergreen/internal/camera"

// Mode is the top-level arrangement the tree is heading toward.
type Mode int

const (
	Formed Mode = iota
	Chaos
)

func (m Mode) String() string {
	if m == Chaos {
		return "chaos"
	}
	return "formed"
}

// Target is the progress value that animators converge on in this mode.
func (m Mode) Target() float64 {
	if m == Chaos {
		return 0
	}
	return 1
}

// Toggle flips between the two modes.
func (m Mode) Toggle() Mode {
	if m == Chaos {
		return Formed
	}
	return Chaos
}

// ParseMode accepts "formed" or "chaos".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "formed":
		return Formed, true
	case "chaos":
		return Chaos, true
	}
	return Formed, false
}

// Signals is the per-frame input every animator receives. Nothing reads mode, focus or
// expand from shared state; a frame is consistent because everyone gets the same value.
type Signals struct {
	Dt   float64 // seconds since last frame
	Time float64 // seconds since start

	Mode     Mode
	Progress float64 // global 0..1, linear toward Mode.Target()
	Expand   float64 // smoothed 0..1, non-zero during focus sequences

	Focusing     bool
	Highlighted  int // photo id, valid when HasHighlight
	HasHighlight bool

	Camera camera.Pose
}

// IsHighlighted reports whether id is the card currently selected for display.
func (s Signals) IsHighlighted(id int) bool {
	return s.Focusing && s.HasHighlight && s.Highlighted == id
}
