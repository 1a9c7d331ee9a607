package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEasingEndpoints(t *testing.T) {
	for name, f := range map[string]func(float64) float64{
		"smoothstep":   Smoothstep,
		"smootherstep": Smootherstep,
		"cubic":        EaseInOutCubic,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 0.0, f(-1))
			assert.Equal(t, 0.0, f(0))
			assert.InDelta(t, 0.5, f(0.5), 1e-9)
			assert.Equal(t, 1.0, f(1))
			assert.Equal(t, 1.0, f(2))
		})
	}
}

func TestDampNeverOvershoots(t *testing.T) {
	got := Damp(V(0, 0, 0), V(10, 0, 0), 5, 1)
	assert.Equal(t, V(10, 0, 0), got)

	got = Damp(V(0, 0, 0), V(10, 0, 0), 2, 0.1)
	assert.InDelta(t, 2.0, got.X, 1e-9)

	assert.Equal(t, 3.0, DampF(3, 9, 4, 0))
}

func TestAngleDiffShortestArc(t *testing.T) {
	assert.InDelta(t, 0.2, AngleDiff(math.Pi-0.1, -math.Pi+0.1), 1e-9)
	assert.InDelta(t, -0.5, AngleDiff(0.5, 0), 1e-9)
	assert.InDelta(t, math.Pi, AngleDiff(0, math.Pi), 1e-9)
}

func TestNormalizeDegenerate(t *testing.T) {
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
	assert.InDelta(t, 1.0, V(3, 4, 0).Normalize().Len(), 1e-12)
}
