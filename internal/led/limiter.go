package led

import (
	"math"

	"github.com/coreman2200/funtimes-evergreen/internal/render"
)

// Power models the supply the string runs from.
type Power struct {
	WhiteCap  float64 // max R+G+B per pixel, 0..3
	LEDChanMA float64 // mA per channel at full scale
	BudgetMA  float64 // total budget, 0 disables the global clamp
	Knee      float64 // fraction of budget where gentle scaling starts
}

func DefaultPower() Power {
	return Power{WhiteCap: 2.55, LEDChanMA: 20, BudgetMA: 3000, Knee: 0.9}
}

// DefaultLimiter caps each pixel's white level, then scales the whole string so the
// estimated current stays inside the budget.
func DefaultLimiter(buf []render.Color, p Power) {
	whiteCap := 3.0
	chanmA := 20.0
	knee := 0.9
	if p.WhiteCap > 0 {
		whiteCap = p.WhiteCap
	}
	if p.LEDChanMA > 0 {
		chanmA = p.LEDChanMA
	}
	if p.Knee > 0 && p.Knee < 1 {
		knee = p.Knee
	}

	wc := float32(whiteCap)
	for i := range buf {
		s := buf[i].R + buf[i].G + buf[i].B
		if s > wc && s > 0 {
			buf[i] = buf[i].Scale(wc / s)
		}
	}

	if p.BudgetMA <= 0 {
		return
	}
	total := EstimateMA(buf, chanmA)
	if total <= 0 {
		return
	}
	ratio := total / p.BudgetMA
	if ratio <= knee {
		return
	}
	// above the knee the load is compressed toward the budget and never reaches it
	soft := knee + (1-knee)*(1-math.Exp(-(ratio-knee)/(1-knee)))
	scaleAll(buf, float32(soft/ratio))
}

// EstimateMA is the current drawn by buf at chanmA per full-scale channel.
func EstimateMA(buf []render.Color, chanmA float64) float64 {
	var total float64
	cm := float32(chanmA)
	for i := range buf {
		total += float64((buf[i].R + buf[i].G + buf[i].B) * cm)
	}
	return total
}

func scaleAll(buf []render.Color, s float32) {
	if s >= 1 {
		return
	}
	for i := range buf {
		buf[i] = buf[i].Scale(s)
	}
}
