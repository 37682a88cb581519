// Package smoothing finds a continuous attachment point and surface normal
// over a set of axis-aligned boxes. Nearby faces, edges and corners are
// blended so the result does not jump when the sample point crosses from one
// face onto a neighbouring one.
package smoothing

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/climber/internal/core/geometry"
)

// surfaceEpsilon is the distance under which a sample is considered to touch
// a box. It is also the step used to test whether a face is flush against a
// neighbouring box.
const surfaceEpsilon = 1.0e-4

// minSlope is the smallest rate at which the blended distance may shrink along
// the normal before refinement stops dividing by it.
const minSlope = 0.1

// Params tunes the blend.
type Params struct {
	// SmoothingRadius is the distance beyond which a box has no influence.
	SmoothingRadius float64 `json:"smoothing_radius" yaml:"smoothing_radius"`
	// MaxWeightDistance is how much further than the closest box another box
	// may be and still contribute.
	MaxWeightDistance float64 `json:"max_weight_distance" yaml:"max_weight_distance"`
	// MinWeight drops contributions lighter than this fraction of the
	// heaviest one. The closest box always contributes.
	MinWeight     float64 `json:"min_weight" yaml:"min_weight"`
	MaxIterations int     `json:"max_iterations" yaml:"max_iterations"`
	// StepSize ends refinement once an iteration moves the point less than this.
	StepSize float64 `json:"step_size" yaml:"step_size"`
}

// DefaultParams are the values the climber controller runs with.
func DefaultParams() Params {
	return Params{
		SmoothingRadius:   1.25,
		MaxWeightDistance: 1.0,
		MinWeight:         0.005,
		MaxIterations:     20,
		StepSize:          0.05,
	}
}

// Contact is a smoothed attachment point with its unit surface normal.
type Contact struct {
	Point  mgl64.Vec3 `json:"point"`
	Normal mgl64.Vec3 `json:"normal"`
}

type contribution struct {
	index  int
	weight float64
}

// FindClosestSmoothPoint blends the boxes around sample into one contact.
// It reports false when no box is close enough to influence the sample, when
// every box is degenerate, or when the blend collapses to a zero normal. The
// input slice is never modified.
func FindClosestSmoothPoint(boxes []cube.BBox, p Params, sample mgl64.Vec3) (Contact, bool) {
	if len(boxes) == 0 || !geometry.Finite(sample) {
		return Contact{}, false
	}

	s := surface{boxes: make([]cube.BBox, 0, len(boxes))}
	for _, b := range boxes {
		if !geometry.Degenerate(b) {
			s.boxes = append(s.boxes, b)
		}
	}

	type candidate struct {
		index  int
		dist   float64
		normal mgl64.Vec3
	}
	candidates := make([]candidate, 0, len(s.boxes))
	minDist := math.Inf(1)
	for i := range s.boxes {
		d, n, ok := s.field(i, sample)
		if !ok || d > p.SmoothingRadius {
			continue
		}
		candidates = append(candidates, candidate{index: i, dist: d, normal: n})
		minDist = math.Min(minDist, d)
	}
	if len(candidates) == 0 {
		return Contact{}, false
	}

	weights := make([]float64, len(candidates))
	var maxWeight float64
	for i, c := range candidates {
		weights[i] = falloff(c.dist-minDist, p.MaxWeightDistance) * falloff(c.dist, p.SmoothingRadius)
		maxWeight = math.Max(maxWeight, weights[i])
	}
	if maxWeight <= 0 {
		return Contact{}, false
	}

	var (
		normalSum   mgl64.Vec3
		totalWeight float64
	)
	contributors := make([]contribution, 0, len(candidates))
	for i, c := range candidates {
		w := weights[i]
		if w <= 0 || w < p.MinWeight*maxWeight {
			continue
		}
		normalSum = normalSum.Add(c.normal.Mul(w))
		totalWeight += w
		contributors = append(contributors, contribution{index: c.index, weight: w})
	}
	if totalWeight <= 0 {
		return Contact{}, false
	}

	normal := geometry.Normalize(mgl64.Vec3{
		normalSum[0] / totalWeight,
		normalSum[1] / totalWeight,
		normalSum[2] / totalWeight,
	})
	if normal == geometry.Zero || !geometry.Finite(normal) {
		return Contact{}, false
	}

	return Contact{Point: s.refine(contributors, normal, p, sample), Normal: normal}, true
}

// surface is the union of a set of non-degenerate boxes.
type surface struct {
	boxes []cube.BBox
}

// field returns the distance from x to box i and the unit direction in which
// it grows. Faces flush against another box are not part of the surface, so
// a row of blocks reads as one flat face. It reports false when x only sees
// such hidden faces of the box.
func (s surface) field(i int, x mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	q := geometry.ClosestPoint(s.boxes[i], x)
	d := x.Sub(q)
	if d.Len() <= surfaceEpsilon {
		return s.depth(i, x)
	}

	var open mgl64.Vec3
	for a := 0; a < 3; a++ {
		if d[a] != 0 && !s.flush(i, q, d, a) {
			open[a] = d[a]
		}
	}
	if open == geometry.Zero {
		return 0, geometry.Zero, false
	}
	n := geometry.Normalize(open)
	if n == geometry.Zero {
		n = geometry.FaceVec(geometry.DominantFace(open))
	}
	return open.Len(), n, true
}

// depth handles points inside or touching box i: the distance is negative
// penetration through the nearest exposed face, ties resolved like
// geometry.FaceNormal. A box buried on every side falls back to its plain
// distance field.
func (s surface) depth(i int, x mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	b := s.boxes[i]
	lo, hi := b.Min(), b.Max()
	best, normal := math.Inf(1), geometry.Zero
	for _, f := range exposureOrder {
		a := geometry.AxisIndex(f.Axis())
		n := geometry.FaceVec(f)
		face, depth := lo[a], x[a]-lo[a]
		if n[a] > 0 {
			face, depth = hi[a], hi[a]-x[a]
		}
		if depth >= best {
			continue
		}
		out := s.nudge(i, x, a)
		out[a] = face + n[a]*surfaceEpsilon
		if s.covered(i, out) {
			continue
		}
		best, normal = depth, n
	}
	if normal == geometry.Zero {
		return geometry.SignedDistance(b, x), geometry.FaceNormal(b, x), true
	}
	return -best, normal, true
}

// exposureOrder matches the tie priority of geometry.FaceNormal.
var exposureOrder = [6]cube.Face{
	cube.FaceUp,
	cube.FaceDown,
	cube.FaceEast,
	cube.FaceWest,
	cube.FaceSouth,
	cube.FaceNorth,
}

// flush reports whether the face of box i that q lies on along axis a, facing
// the sign of d, is covered by another box just past q.
func (s surface) flush(i int, q, d mgl64.Vec3, a int) bool {
	t := s.nudge(i, q, a)
	t[a] += math.Copysign(surfaceEpsilon, d[a])
	return s.covered(i, t)
}

// nudge moves p by surfaceEpsilon towards the centre of box i on every axis
// but a, so points on a shared edge or seam test the neighbour's interior.
func (s surface) nudge(i int, p mgl64.Vec3, a int) mgl64.Vec3 {
	lo, hi := s.boxes[i].Min(), s.boxes[i].Max()
	for j := 0; j < 3; j++ {
		if j == a {
			continue
		}
		if p[j] < (lo[j]+hi[j])*0.5 {
			p[j] += surfaceEpsilon
		} else {
			p[j] -= surfaceEpsilon
		}
	}
	return p
}

// covered reports whether any box other than skip strictly contains p.
func (s surface) covered(skip int, p mgl64.Vec3) bool {
	for i, b := range s.boxes {
		if i != skip && b.Vec3Within(p) {
			return true
		}
	}
	return false
}

// refine walks from the sample along the normal onto the zero level of the
// weighted distance field of the contributors. Each step is a Newton step on
// that field, and the point never ends up further than SmoothingRadius from
// the sample.
func (s surface) refine(contributors []contribution, normal mgl64.Vec3, p Params, sample mgl64.Vec3) mgl64.Vec3 {
	x := sample
	for i := 0; i < p.MaxIterations; i++ {
		var dist, slope, total float64
		for _, c := range contributors {
			d, n, ok := s.field(c.index, x)
			if !ok {
				continue
			}
			dist += d * c.weight
			slope += n.Dot(normal) * c.weight
			total += c.weight
		}
		if total <= 0 {
			break
		}
		dist /= total
		slope /= total

		step := dist
		if slope >= minSlope {
			step = dist / slope
		}
		next := x.Sub(normal.Mul(step))
		if off := next.Sub(sample); off.Len() > p.SmoothingRadius {
			next = sample.Add(off.Mul(p.SmoothingRadius / off.Len()))
		}
		if !geometry.Finite(next) {
			break
		}
		moved := next.Sub(x).Len()
		x = next
		if moved < p.StepSize {
			break
		}
	}
	return x
}

// falloff is 1 at x = 0 and decreases monotonically to 0 at x = r.
func falloff(x, r float64) float64 {
	if r <= 0 {
		if x <= 0 {
			return 1
		}
		return 0
	}
	f := 1 - mgl64.Clamp(x/r, 0, 1)
	return f * f
}
