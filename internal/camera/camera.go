package camera

import (
	"math"

	"github.com/coreman2200/funtimes-evergreen/internal/geom"
)

// Pose is a camera position and the point it looks at.
type Pose struct {
	Position geom.Vec3 `json:"position"`
	LookAt   geom.Vec3 `json:"lookAt"`
}

// Lerp blends two poses component-wise.
func (p Pose) Lerp(o Pose, t float64) Pose {
	return Pose{Position: geom.Lerp(p.Position, o.Position, t), LookAt: geom.Lerp(p.LookAt, o.LookAt, t)}
}

// Controls is the free (user) camera input. It only acts while Enabled.
type Controls struct {
	Enabled    bool
	AutoRotate float64 // rad/s around the look-at point
	MinPolar   float64
	MaxPolar   float64

	yaw, pitch float64 // pending orbit input
}

// Camera owns the live pose and the free controls.
type Camera struct {
	pose     Pose
	FOV      float64 // vertical, degrees
	controls Controls
}

func New(p Pose, fov float64) *Camera {
	if fov <= 0 {
		fov = 45
	}
	return &Camera{
		pose: p,
		FOV:  fov,
		controls: Controls{
			Enabled:    true,
			AutoRotate: 0.08,
			MinPolar:   0.35,
			MaxPolar:   math.Pi / 1.8,
		},
	}
}

func (c *Camera) Pose() Pose { return c.pose }

func (c *Camera) SetPose(p Pose) { c.pose = p }

func (c *Camera) View() View { return View{Pose: c.pose, FOV: c.FOV} }

// SetAutoRotate changes the idle orbit speed.
func (c *Camera) SetAutoRotate(rad float64) { c.controls.AutoRotate = rad }

// SetControlsEnabled is toggled by the focus choreography. Disabling drops any queued input.
func (c *Camera) SetControlsEnabled(on bool) {
	c.controls.Enabled = on
	if !on {
		c.controls.yaw, c.controls.pitch = 0, 0
	}
}

func (c *Camera) ControlsEnabled() bool { return c.controls.Enabled }

// Orbit queues user orbit input; it is ignored while controls are disabled.
func (c *Camera) Orbit(yaw, pitch float64) {
	if !c.controls.Enabled {
		return
	}
	c.controls.yaw += yaw
	c.controls.pitch += pitch
}

// MoveToward eases the pose toward target at rate (1/s).
func (c *Camera) MoveToward(target Pose, rate, dt float64) {
	c.pose = c.pose.Lerp(target, geom.DampFactor(rate, dt))
}

// Update applies free controls for one frame.
func (c *Camera) Update(dt float64) {
	if !c.controls.Enabled {
		return
	}
	yaw := c.controls.yaw + c.controls.AutoRotate*dt
	pitch := c.controls.pitch
	c.controls.yaw, c.controls.pitch = 0, 0
	if yaw == 0 && pitch == 0 {
		return
	}

	off := c.pose.Position.Sub(c.pose.LookAt)
	r := off.Len()
	if r < 1e-9 {
		return
	}
	theta := math.Atan2(off.X, off.Z) + yaw
	polar := math.Acos(off.Y/r) + pitch
	polar = math.Max(c.controls.MinPolar, math.Min(c.controls.MaxPolar, polar))
	c.pose.Position = c.pose.LookAt.Add(geom.V(
		r*math.Sin(polar)*math.Sin(theta),
		r*math.Cos(polar),
		r*math.Sin(polar)*math.Cos(theta),
	))
}
