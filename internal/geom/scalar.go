package geom

import "math"

// Clamp01 clamps x in [0,1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// DampFactor is the per-frame lerp fraction for an exponential-ish follow at rate (1/s).
func DampFactor(rate, dt float64) float64 {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	return Clamp01(rate * dt)
}

// DampF is the scalar form of Damp.
func DampF(cur, target, rate, dt float64) float64 {
	return cur + (target-cur)*DampFactor(rate, dt)
}

// Smoothstep is the classic 3x^2 - 2x^3.
func Smoothstep(x float64) float64 {
	x = Clamp01(x)
	return x * x * (3 - 2*x)
}

// Smootherstep is 6x^5 - 15x^4 + 10x^3.
func Smootherstep(x float64) float64 {
	x = Clamp01(x)
	return x * x * x * (x*(x*6-15) + 10)
}

// EaseInOutCubic accelerates through the first half and decelerates through the second.
func EaseInOutCubic(x float64) float64 {
	x = Clamp01(x)
	if x < 0.5 {
		return 4 * x * x * x
	}
	f := -2*x + 2
	return 1 - f*f*f/2
}

// AngleDiff returns the signed shortest rotation from a to b in (-pi, pi].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
