package fake

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-evergreen/internal/render"
)

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	d := &Driver{Out: &buf, Every: 2}
	f := &render.Frame{
		ID: 9, Mode: "chaos", Focus: "idle",
		Points: []render.Point{{Color: render.Color{R: 1}}, {Color: render.Color{G: 1}}},
		Quads:  []render.Quad{{ID: 1}},
	}
	require.NoError(t, d.Write(f))
	assert.Empty(t, buf.String(), "first frame skipped")
	require.NoError(t, d.Write(f))

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "[frame 0009] chaos/idle"))
	assert.Contains(t, line, "points=2 cards=1 avg=(0.50,0.50,0.00) hl=-")
	assert.Equal(t, 2, d.Count)
}

func TestAverageEmpty(t *testing.T) {
	assert.Equal(t, render.Color{}, Average(nil))
}
