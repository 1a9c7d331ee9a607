package led

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-evergreen/internal/render"
)

func white(n int) []render.Color {
	buf := make([]render.Color, n)
	for i := range buf {
		buf[i] = render.Color{R: 1, G: 1, B: 1}
	}
	return buf
}

func TestDefaultLimiterBudgetClamp(t *testing.T) {
	// 10 pixels at 60mA each is 600mA before limiting
	buf := white(10)
	DefaultLimiter(buf, Power{LEDChanMA: 20, BudgetMA: 300, WhiteCap: 3, Knee: 0.9})
	assert.LessOrEqual(t, EstimateMA(buf, 20), 300.1)
}

func TestWhiteCap(t *testing.T) {
	buf := white(1)
	DefaultLimiter(buf, Power{WhiteCap: 1.5})
	assert.LessOrEqual(t, buf[0].R+buf[0].G+buf[0].B, float32(1.5001))
}

func TestUnderKneeUntouched(t *testing.T) {
	buf := []render.Color{{R: 0.5}}
	DefaultLimiter(buf, Power{LEDChanMA: 20, BudgetMA: 1000})
	assert.Equal(t, render.Color{R: 0.5}, buf[0])
}

func TestSoftKneeScalesGently(t *testing.T) {
	// 10 pixels at 0.95 budget
	buf := white(10)
	p := Power{LEDChanMA: 20, BudgetMA: 600 / 0.95, WhiteCap: 3, Knee: 0.9}
	DefaultLimiter(buf, p)
	got := EstimateMA(buf, 20)
	assert.Less(t, got, 600.0)
	assert.Greater(t, got, p.BudgetMA*0.9)
}
