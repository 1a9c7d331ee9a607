package render

// Mix blends a toward b by alpha (0..1). Channels are linear; no gamma assumed.
func Mix(a, b Color, alpha float64) Color {
	if alpha <= 0 {
		return a
	}
	if alpha >= 1 {
		return b
	}
	af := float32(1.0 - alpha)
	bf := float32(alpha)
	return Color{
		R: a.R*af + b.R*bf,
		G: a.G*af + b.G*bf,
		B: a.B*af + b.B*bf,
	}
}

// To8 converts a 0..1 channel to a byte, clamping.
func To8(x float32) byte {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return byte(x*255.0 + 0.5)
}
