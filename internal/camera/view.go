package camera

import (
	"math"

	"github.com/coreman2200/funtimes-evergreen/internal/geom"
)

const nearPlane = 0.1

var up = geom.V(0, 1, 0)

// View is a read-only snapshot used by output drivers for projection.
type View struct {
	Pose
	FOV float64 `json:"fov"`
}

// Basis returns the forward, right and up unit vectors of the view.
func (v View) Basis() (f, r, u geom.Vec3) {
	f = v.LookAt.Sub(v.Position).Normalize()
	r = f.Cross(up).Normalize()
	if r == (geom.Vec3{}) {
		r = geom.V(1, 0, 0)
	}
	u = r.Cross(f)
	return f, r, u
}

// Project maps a world point onto a w x h surface. ok is false behind the near plane.
// depth is the distance along the view direction.
func (v View) Project(p geom.Vec3, w, h int) (x, y, depth float64, ok bool) {
	f, r, u := v.Basis()
	d := p.Sub(v.Position)
	depth = d.Dot(f)
	if depth <= nearPlane {
		return 0, 0, depth, false
	}
	focal := (float64(h) / 2) / math.Tan(v.FOV*math.Pi/360)
	x = float64(w)/2 + d.Dot(r)/depth*focal
	y = float64(h)/2 - d.Dot(u)/depth*focal
	return x, y, depth, true
}

// PixelScale is how many pixels one world unit spans at depth.
func (v View) PixelScale(depth float64, h int) float64 {
	if depth <= nearPlane {
		return 0
	}
	return (float64(h) / 2) / math.Tan(v.FOV*math.Pi/360) / depth
}
