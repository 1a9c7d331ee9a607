package focus

import (
	"github.com/coreman2200/funtimes-evergreen/internal/camera"
	"github.com/coreman2200/funtimes-evergreen/internal/geom"
)

// countdown is a dt-driven one-shot timer. Arming it again overwrites the old deadline,
// so a superseding trigger never leaves two schedules running.
type countdown struct {
	remaining float64
	armed     bool
}

func (c *countdown) arm(s float64) { c.remaining, c.armed = s, true }
func (c *countdown) stop()         { c.remaining, c.armed = 0, false }

// tick reports true exactly once, on the frame the countdown runs out.
func (c *countdown) tick(dt float64) bool {
	if !c.armed {
		return false
	}
	c.remaining -= dt
	if c.remaining > 0 {
		return false
	}
	c.stop()
	return true
}

// Machine owns the focus state. The highlighted id and the camera targets are set
// together on entering zooming_in and cleared together on reaching idle.
type Machine struct {
	cfg   Config
	hooks Hooks

	state       State
	trigger     Trigger
	highlighted int
	has         bool

	original camera.Pose
	target   camera.Pose

	dwell  countdown
	settle countdown
	// pending arrival waiting out the settle delay
	pendingID int

	expand float64
}

func NewMachine(cfg Config, h Hooks) *Machine {
	return &Machine{cfg: cfg, hooks: h, state: Idle}
}

func (m *Machine) State() State { return m.state }

// Highlighted returns the focused photo id, if any.
func (m *Machine) Highlighted() (int, bool) { return m.highlighted, m.has }

// Active is true for every state but idle.
func (m *Machine) Active() bool { return m.state != Idle }

func (m *Machine) Trigger() Trigger { return m.trigger }

// Original is the camera pose captured when the sequence began.
func (m *Machine) Original() camera.Pose { return m.original }

// Target is the pose the camera is heading to in zooming_in/focused.
func (m *Machine) Target() camera.Pose { return m.target }

// Expand is the smoothed 0..1 signal fed to the particle systems.
func (m *Machine) Expand() float64 { return m.expand }

// Pending reports an arrival still inside its settle delay.
func (m *Machine) Pending() (int, bool) { return m.pendingID, m.settle.armed }

// DwellRemaining is the time left in focused.
func (m *Machine) DwellRemaining() float64 { return m.dwell.remaining }

func (m *Machine) profile(t Trigger) Profile {
	if t == ByArrival {
		return m.cfg.Arrival
	}
	return m.cfg.Click
}

func (m *Machine) exists(id int) bool {
	return m.hooks.Exists == nil || m.hooks.Exists(id)
}

// Click focuses id from idle. It is a no-op (false) while a sequence is running, for
// unknown ids and while the camera is not mounted.
func (m *Machine) Click(id int, cam Camera) bool {
	if _, ok := Next(m.state, Click); !ok {
		return false
	}
	if !m.exists(id) || cam == nil {
		return false
	}
	m.begin(id, ByClick, cam)
	return true
}

// NotifyArrival schedules an auto-focus on id after the settle delay. A later arrival
// overwrites an earlier one that has not settled yet.
func (m *Machine) NotifyArrival(id int) {
	if m.settle.armed && m.pendingID != id {
		m.supersede(m.pendingID)
	}
	m.pendingID = id
	m.settle.arm(m.cfg.SettleS)
}

// Tick advances timers and camera interpolation by dt seconds.
func (m *Machine) Tick(dt float64, cam Camera) {
	if dt < 0 {
		dt = 0
	}

	if m.settle.tick(dt) {
		m.arrive(cam)
	}

	switch m.state {
	case ZoomingIn:
		if cam == nil {
			break
		}
		cam.MoveToward(m.target, m.cfg.MoveRate, dt)
		if cam.Pose().Position.Dist(m.target.Position) < m.cfg.InThreshold {
			m.apply(Converged)
			m.dwell.arm(m.profile(m.trigger).DwellS)
		}
	case Focused:
		if cam != nil {
			cam.MoveToward(m.target, m.cfg.MoveRate, dt)
		}
		if m.dwell.tick(dt) {
			m.apply(DwellElapsed)
		}
	case ZoomingOut:
		if cam == nil {
			break
		}
		cam.MoveToward(m.original, m.cfg.MoveRate, dt)
		if cam.Pose().Position.Dist(m.original.Position) < m.cfg.OutThreshold {
			m.finish(cam)
		}
	}

	goal := 0.0
	if m.state != Idle {
		goal = 1
	}
	m.expand = geom.DampF(m.expand, goal, m.cfg.ExpandRate, dt)
}

// arrive runs when a settle delay elapses. Without a camera the arrival is kept and
// retried next frame; an id that vanished from the list is dropped.
func (m *Machine) arrive(cam Camera) {
	id := m.pendingID
	if cam == nil {
		m.settle.arm(0)
		return
	}
	if !m.exists(id) {
		return
	}
	if _, ok := Next(m.state, Arrival); !ok {
		return
	}
	m.begin(id, ByArrival, cam)
}

func (m *Machine) begin(id int, t Trigger, cam Camera) {
	if m.state == Idle {
		m.original = cam.Pose()
	} else if m.has && m.highlighted != id {
		m.supersede(m.highlighted)
	}
	d := m.profile(t).Distance
	m.target = camera.Pose{
		Position: m.cfg.DisplayPosition.Add(geom.V(0, 0, d)),
		LookAt:   m.cfg.DisplayPosition,
	}
	m.trigger = t
	m.highlighted, m.has = id, true
	m.dwell.stop()
	cam.SetControlsEnabled(false)
	if t == ByClick {
		m.apply(Click)
	} else {
		m.apply(Arrival)
	}
}

func (m *Machine) finish(cam Camera) {
	id := m.highlighted
	m.apply(Returned)
	cam.SetControlsEnabled(true)
	m.highlighted, m.has = 0, false
	m.target = camera.Pose{}
	if m.hooks.FocusComplete != nil {
		m.hooks.FocusComplete(id)
	}
}

func (m *Machine) supersede(id int) {
	if m.hooks.Superseded != nil {
		m.hooks.Superseded(id)
	}
}

func (m *Machine) apply(ev Event) {
	next, ok := Next(m.state, ev)
	if !ok {
		return
	}
	prev := m.state
	m.state = next
	if m.hooks.Transition != nil {
		m.hooks.Transition(prev, next, m.highlighted)
	}
}
