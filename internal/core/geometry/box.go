package geometry

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Faces lists the six axis directions in host iteration order. Ties between
// faces are always resolved in favour of the earlier entry.
var Faces = [6]cube.Face{
	cube.FaceDown,
	cube.FaceUp,
	cube.FaceNorth,
	cube.FaceSouth,
	cube.FaceWest,
	cube.FaceEast,
}

// FaceVec returns the unit direction of f.
func FaceVec(f cube.Face) mgl64.Vec3 {
	switch f {
	case cube.FaceDown:
		return mgl64.Vec3{0, -1, 0}
	case cube.FaceUp:
		return mgl64.Vec3{0, 1, 0}
	case cube.FaceNorth:
		return mgl64.Vec3{0, 0, -1}
	case cube.FaceSouth:
		return mgl64.Vec3{0, 0, 1}
	case cube.FaceWest:
		return mgl64.Vec3{-1, 0, 0}
	default:
		return mgl64.Vec3{1, 0, 0}
	}
}

// DominantFace returns the face whose direction is closest to v. Ties go to
// the earlier axis in Y, X, Z order; the zero vector maps to FaceDown.
func DominantFace(v mgl64.Vec3) cube.Face {
	ax, ay, az := math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])
	switch {
	case ay >= ax && ay >= az:
		if v[1] > 0 {
			return cube.FaceUp
		}
		return cube.FaceDown
	case ax >= az:
		if v[0] > 0 {
			return cube.FaceEast
		}
		return cube.FaceWest
	case v[2] > 0:
		return cube.FaceSouth
	default:
		return cube.FaceNorth
	}
}

// AxisIndex maps a cube axis to its vector component index.
func AxisIndex(a cube.Axis) int {
	switch a {
	case cube.X:
		return 0
	case cube.Y:
		return 1
	default:
		return 2
	}
}

// Degenerate reports whether b encloses no volume.
func Degenerate(b cube.BBox) bool {
	size := b.Max().Sub(b.Min())
	return !(size[0] > 0 && size[1] > 0 && size[2] > 0) || !Finite(size)
}

// ClosestPoint returns the point of b nearest to p. Points inside b map to
// themselves.
func ClosestPoint(b cube.BBox, p mgl64.Vec3) mgl64.Vec3 {
	lo, hi := b.Min(), b.Max()
	return mgl64.Vec3{
		mgl64.Clamp(p[0], lo[0], hi[0]),
		mgl64.Clamp(p[1], lo[1], hi[1]),
		mgl64.Clamp(p[2], lo[2], hi[2]),
	}
}

// SignedDistance is the exact box distance field: positive outside b,
// negative inside.
func SignedDistance(b cube.BBox, p mgl64.Vec3) float64 {
	lo, hi := b.Min(), b.Max()
	var outside mgl64.Vec3
	inside := math.Inf(-1)
	for i := 0; i < 3; i++ {
		center := (lo[i] + hi[i]) * 0.5
		half := (hi[i] - lo[i]) * 0.5
		q := math.Abs(p[i]-center) - half
		outside[i] = math.Max(q, 0)
		inside = math.Max(inside, q)
	}
	return outside.Len() + math.Min(inside, 0)
}

// FaceNormal returns the outward normal of the face of b that p penetrates
// least. Priority on ties is Y, X, Z with the positive face first, so a point
// on an edge always reports the same face.
func FaceNormal(b cube.BBox, p mgl64.Vec3) mgl64.Vec3 {
	lo, hi := b.Min(), b.Max()
	type candidate struct {
		depth  float64
		normal mgl64.Vec3
	}
	candidates := [6]candidate{
		{hi[1] - p[1], mgl64.Vec3{0, 1, 0}},
		{p[1] - lo[1], mgl64.Vec3{0, -1, 0}},
		{hi[0] - p[0], mgl64.Vec3{1, 0, 0}},
		{p[0] - lo[0], mgl64.Vec3{-1, 0, 0}},
		{hi[2] - p[2], mgl64.Vec3{0, 0, 1}},
		{p[2] - lo[2], mgl64.Vec3{0, 0, -1}},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.depth < best.depth {
			best = c
		}
	}
	return best.normal
}

// contactEpsilon absorbs rounding when boxes are rebuilt from positions, so
// touching faces are never reported as overlapping.
const contactEpsilon = 1e-7

// AxisOffset clips delta, the movement of moving along axis, so that moving
// does not pass into static. Boxes that do not overlap on the two remaining
// axes leave delta untouched.
func AxisOffset(static, moving cube.BBox, axis cube.Axis, delta float64) float64 {
	shrunk := moving.Grow(-contactEpsilon)
	var clipped float64
	switch axis {
	case cube.X:
		clipped = shrunk.XOffset(static, delta)
	case cube.Y:
		clipped = shrunk.YOffset(static, delta)
	default:
		clipped = shrunk.ZOffset(static, delta)
	}
	if clipped == delta {
		return delta
	}
	// The shrunk box stops short of static; clip to the real gap.
	a := AxisIndex(axis)
	if delta > 0 {
		return mgl64.Clamp(static.Min()[a]-moving.Max()[a], 0, delta)
	}
	return mgl64.Clamp(static.Max()[a]-moving.Min()[a], delta, 0)
}

// FeetPosition returns the bottom centre of b, the host's entity position.
func FeetPosition(b cube.BBox) mgl64.Vec3 {
	lo, hi := b.Min(), b.Max()
	return mgl64.Vec3{(lo[0] + hi[0]) * 0.5, lo[1], (lo[2] + hi[2]) * 0.5}
}

// EntityBox builds the box of an entity of the given width and height whose
// feet are at pos.
func EntityBox(pos mgl64.Vec3, width, height float64) cube.BBox {
	w := width / 2
	return cube.Box(pos[0]-w, pos[1], pos[2]-w, pos[0]+w, pos[1]+height, pos[2]+w)
}
