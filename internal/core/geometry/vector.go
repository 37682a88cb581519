// Package geometry holds the small vector and box helpers shared by the
// smoothing engine, the physics integrator and the climber controller.
// Vectors are mgl64.Vec3 and boxes are dragonfly cube.BBox values.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// normalizeEpsilon is the length below which a vector is treated as zero.
const normalizeEpsilon = 1.0e-4

var (
	Up   = mgl64.Vec3{0, 1, 0}
	Zero = mgl64.Vec3{}
)

// Normalize returns v scaled to unit length, or the zero vector when v is
// shorter than 1e-4. Components are divided rather than multiplied by the
// reciprocal so axis-aligned inputs stay exact.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < normalizeEpsilon {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0] / l, v[1] / l, v[2] / l}
}

// Finite reports whether every component of v is a finite number.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Lerp interpolates from a to b by t.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Signum mirrors math.signum: -1, 0 or 1.
func Signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
