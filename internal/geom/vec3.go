package geom

import "math"

// Vec3 is a 3-component world-space vector. Y is up.
type Vec3 struct{ X, Y, Z float64 }

func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }

// Dist is the euclidean distance between a and b.
func (a Vec3) Dist(b Vec3) float64 { return a.Sub(b).Len() }

// Normalize returns the unit vector of a, or the zero vector when a is degenerate.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l < 1e-12 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// Lerp interpolates a->b by t (unclamped).
func Lerp(a, b Vec3, t float64) Vec3 {
	return Vec3{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// Damp moves cur toward target by a frame-rate scaled fraction rate*dt, capped at 1
// so a long frame never overshoots.
func Damp(cur, target Vec3, rate, dt float64) Vec3 {
	return Lerp(cur, target, DampFactor(rate, dt))
}

// Euler holds rotations in radians about X, Y, Z.
type Euler struct{ X, Y, Z float64 }

func (e Euler) Add(o Euler) Euler { return Euler{e.X + o.X, e.Y + o.Y, e.Z + o.Z} }

func (e Euler) Scale(s float64) Euler { return Euler{e.X * s, e.Y * s, e.Z * s} }

// DampEuler eases every axis toward target along the shortest arc.
func DampEuler(cur, target Euler, rate, dt float64) Euler {
	k := DampFactor(rate, dt)
	return Euler{
		cur.X + AngleDiff(cur.X, target.X)*k,
		cur.Y + AngleDiff(cur.Y, target.Y)*k,
		cur.Z + AngleDiff(cur.Z, target.Z)*k,
	}
}
