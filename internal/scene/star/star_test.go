package star

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-evergreen/internal/layout"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
	"github.com/coreman2200/funtimes-evergreen/internal/scene"
)

func TestStarSettlesOnApexAndLiftsWithExpand(t *testing.T) {
	tree := layout.DefaultTree()
	s := New(tree)
	for i := 0; i < 60*30; i++ {
		s.Update(scene.Signals{Dt: 1.0 / 60, Mode: scene.Formed})
	}
	assert.InDelta(t, tree.Height+0.5, s.Position().Y, 1e-3)

	s.Update(scene.Signals{Dt: 1.0 / 60, Mode: scene.Formed, Expand: 1})
	assert.InDelta(t, tree.Height+0.5+expandLift, s.Position().Y, 1e-2)

	f := &render.Frame{}
	s.Render(f)
	assert.Len(t, f.Points, points*2*perEdge+1)
}
