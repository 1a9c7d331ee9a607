package render

import "math"

// PostParams configures the filmic curve.
type PostParams struct {
	ExposureEV float64 // default 0
	Gamma      float64 // default 2.2
}

// FilmicToneMap applies exposure in EV, the ACES approximation and output gamma to
// every point colour in place.
func FilmicToneMap(pts []Point, p PostParams) {
	gamma := 2.2
	if p.Gamma > 0 {
		gamma = p.Gamma
	}
	exposure := float32(math.Pow(2.0, p.ExposureEV))
	ig := 1.0 / gamma

	for i := range pts {
		c := pts[i].Color
		r := acesApprox(c.R * exposure)
		g := acesApprox(c.G * exposure)
		b := acesApprox(c.B * exposure)
		if gamma != 1.0 {
			r = powf(r, ig)
			g = powf(g, ig)
			b = powf(b, ig)
		}
		pts[i].Color = Color{clamp01(r), clamp01(g), clamp01(b)}
	}
}

// DefaultToneMap is FilmicToneMap at 0 EV and gamma 2.2.
func DefaultToneMap(pts []Point) {
	FilmicToneMap(pts, PostParams{Gamma: 2.2})
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func powf(x float32, p float64) float32 {
	return float32(math.Pow(float64(x), p))
}

// Approximate ACES filmic curve (Narkowicz 2015).
func acesApprox(x float32) float32 {
	a := float32(2.51)
	b := float32(0.03)
	c := float32(2.43)
	d := float32(0.59)
	e := float32(0.14)
	return clamp01((x * (a*x + b)) / (x*(c*x+d) + e))
}
