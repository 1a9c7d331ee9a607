package foliage

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-evergreen/internal/layout"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
	"github.com/coreman2200/funtimes-evergreen/internal/scene"
)

func quietParams(tree layout.Tree) Params {
	p := DefaultParams(tree.Center())
	p.BreathAmp = 0
	p.DriftAmp = 0
	return p
}

func TestShadeEndpoints(t *testing.T) {
	tree := layout.DefaultTree()
	prm := quietParams(tree)
	for _, p := range layout.Foliage(tree, 50, rand.New(rand.NewSource(2))) {
		chaos := Shade(p, Uniforms{Progress: 0}, prm)
		formed := Shade(p, Uniforms{Progress: 1}, prm)
		assert.InDelta(t, 0, chaos.Pos.Dist(p.Chaos), 1e-9)
		assert.InDelta(t, 0, formed.Pos.Dist(p.Target), 1e-9)
	}
}

func TestLocalProgressStaggersBySeed(t *testing.T) {
	early := LocalProgress(0.5, 0.0, 0.4)
	late := LocalProgress(0.5, 0.9, 0.4)
	assert.Greater(t, early, late)
	assert.Equal(t, 1.0, LocalProgress(1, 0.99, 0.4), "every particle arrives at full progress")
	assert.Equal(t, 0.0, LocalProgress(0, 0, 0.4))
}

func TestExpandPushesAwayFromCenter(t *testing.T) {
	tree := layout.DefaultTree()
	prm := quietParams(tree)
	p := layout.Particle{Target: tree.Center().Add(layout.SpiralTarget(tree, 0, 10)), Seed: 0.5}
	rest := Shade(p, Uniforms{Progress: 1}, prm)
	out := Shade(p, Uniforms{Progress: 1, Expand: 1}, prm)

	gain := out.Pos.Dist(prm.Center) - rest.Pos.Dist(prm.Center)
	assert.InDelta(t, prm.ExpandBase+0.5*prm.ExpandJitter, gain, 1e-9)
}

func TestSystemRendersOnePointPerParticle(t *testing.T) {
	tree := layout.DefaultTree()
	sys := New(layout.Foliage(tree, 64, rand.New(rand.NewSource(4))), DefaultParams(tree.Center()))
	sys.Update(scene.Signals{Progress: 0.3, Expand: 0.2, Time: 1.5})
	assert.Equal(t, Uniforms{Progress: 0.3, Expand: 0.2, Time: 1.5}, sys.Uniforms())

	f := &render.Frame{}
	sys.Render(f)
	require.Len(t, f.Points, 64)
	for _, pt := range f.Points {
		assert.Greater(t, pt.Size, float32(0))
		assert.LessOrEqual(t, pt.Color.G, float32(1))
	}
}
