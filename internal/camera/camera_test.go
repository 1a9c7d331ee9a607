package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-evergreen/internal/geom"
)

func homePose() Pose {
	return Pose{Position: geom.V(0, 7, 26), LookAt: geom.V(0, 7, 0)}
}

func TestProjectCentersLookAt(t *testing.T) {
	v := View{Pose: homePose(), FOV: 45}
	x, y, depth, ok := v.Project(geom.V(0, 7, 0), 200, 100)
	assert.True(t, ok)
	assert.InDelta(t, 100, x, 1e-9)
	assert.InDelta(t, 50, y, 1e-9)
	assert.InDelta(t, 26, depth, 1e-9)

	// Up in world is up on screen, right is right.
	_, yUp, _, _ := v.Project(geom.V(0, 8, 0), 200, 100)
	assert.Less(t, yUp, y)
	xR, _, _, _ := v.Project(geom.V(1, 7, 0), 200, 100)
	assert.Greater(t, xR, x)

	_, _, _, ok = v.Project(geom.V(0, 7, 30), 200, 100)
	assert.False(t, ok, "points behind the camera are culled")
}

func TestControlsOnlyWhileEnabled(t *testing.T) {
	c := New(homePose(), 45)
	c.SetAutoRotate(0)

	c.SetControlsEnabled(false)
	c.Orbit(1, 0)
	c.Update(0.1)
	assert.Equal(t, homePose(), c.Pose())

	c.SetControlsEnabled(true)
	c.Orbit(0.5, 0)
	c.Update(0.1)
	p := c.Pose()
	assert.NotEqual(t, homePose().Position, p.Position)
	assert.InDelta(t, 26, p.Position.Dist(p.LookAt), 1e-9, "orbit keeps the radius")
}

func TestMoveTowardConverges(t *testing.T) {
	c := New(homePose(), 45)
	target := Pose{Position: geom.V(0, 7.5, 18), LookAt: geom.V(0, 7.5, 12)}
	for i := 0; i < 600; i++ {
		c.MoveToward(target, 3, 1.0/60)
	}
	assert.Less(t, c.Pose().Position.Dist(target.Position), 1e-3)
}
