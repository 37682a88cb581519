package geometry

import (
	"math"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, mgl64.Vec3{0, 1, 0}, Normalize(mgl64.Vec3{0, 0.3, 0}))
	require.Equal(t, mgl64.Vec3{}, Normalize(mgl64.Vec3{0, 1e-5, 0}))

	n := Normalize(mgl64.Vec3{1, 2, 3})
	assert.InDelta(t, 1.0, n.Len(), 1e-12)
}

func TestFinite(t *testing.T) {
	assert.True(t, Finite(mgl64.Vec3{1, 2, 3}))
	assert.False(t, Finite(mgl64.Vec3{math.NaN(), 0, 0}))
	assert.False(t, Finite(mgl64.Vec3{0, math.Inf(1), 0}))
}

func TestDegenerate(t *testing.T) {
	assert.False(t, Degenerate(cube.Box(0, 0, 0, 1, 1, 1)))
	assert.True(t, Degenerate(cube.Box(0, 0, 0, 1, 0, 1)))
}

func TestSignedDistance(t *testing.T) {
	b := cube.Box(0, 0, 0, 1, 1, 1)

	tests := []struct {
		name string
		p    mgl64.Vec3
		want float64
	}{
		{"above top face", mgl64.Vec3{0.5, 1.5, 0.5}, 0.5},
		{"centre", mgl64.Vec3{0.5, 0.5, 0.5}, -0.5},
		{"off edge", mgl64.Vec3{2, 2, 0.5}, math.Sqrt2},
		{"on face", mgl64.Vec3{0.5, 1, 0.5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SignedDistance(b, tt.p), 1e-12)
		})
	}
}

func TestClosestPoint(t *testing.T) {
	b := cube.Box(0, 0, 0, 1, 1, 1)
	require.Equal(t, mgl64.Vec3{0.5, 1, 0.5}, ClosestPoint(b, mgl64.Vec3{0.5, 3, 0.5}))
	require.Equal(t, mgl64.Vec3{0.2, 0.3, 0.4}, ClosestPoint(b, mgl64.Vec3{0.2, 0.3, 0.4}))
}

func TestFaceNormal(t *testing.T) {
	b := cube.Box(0, 0, 0, 1, 1, 1)
	require.Equal(t, mgl64.Vec3{0, 1, 0}, FaceNormal(b, mgl64.Vec3{0.5, 0.95, 0.5}))
	require.Equal(t, mgl64.Vec3{-1, 0, 0}, FaceNormal(b, mgl64.Vec3{0.05, 0.5, 0.5}))
	// Edge between the top and east faces resolves to the top face.
	require.Equal(t, mgl64.Vec3{0, 1, 0}, FaceNormal(b, mgl64.Vec3{1, 1, 0.5}))
}

func TestAxisOffset(t *testing.T) {
	entity := cube.Box(0, 1, 0, 1, 2, 1)
	floor := cube.Box(0, 0, 0, 1, 1, 1)

	// Floor moving up towards the entity is stopped by the gap (zero).
	assert.Equal(t, 0.0, AxisOffset(entity, floor, cube.Y, 1.5))

	lifted := cube.Box(0, 0, 0, 1, 0.5, 1)
	assert.InDelta(t, 0.5, AxisOffset(entity, lifted, cube.Y, 1.5), 1e-12)

	// No overlap on X/Z leaves the delta alone.
	aside := cube.Box(3, 0, 0, 4, 1, 1)
	assert.Equal(t, 1.5, AxisOffset(entity, aside, cube.Y, 1.5))
}

func TestFaceVecMatchesAxis(t *testing.T) {
	for _, f := range Faces {
		v := FaceVec(f)
		assert.Equal(t, 1.0, math.Abs(v[AxisIndex(f.Axis())]), f.String())
		assert.Equal(t, v.Mul(-1), FaceVec(f.Opposite()), f.String())
	}
}

func TestEntityBoxRoundTrip(t *testing.T) {
	pos := mgl64.Vec3{2.5, 1, -3.5}
	b := EntityBox(pos, 0.85, 0.85)
	assert.True(t, FeetPosition(b).ApproxEqual(pos))
}

func TestAxisOffset_ToleratesRounding(t *testing.T) {
	wall := cube.Box(1, 0, 0, 2, 1, 1)
	// Entity rebuilt from its feet position ends a hair inside the wall.
	entity := cube.Box(0.15, 0, 0, 1+1e-12, 1, 1)

	assert.Equal(t, 0.0, AxisOffset(wall, entity, cube.X, 0.5))
	assert.Equal(t, 0.0, AxisOffset(entity, wall, cube.X, -0.5))
	// The sliver does not count as overlap for movement along the wall.
	assert.Equal(t, -0.3, AxisOffset(wall, entity, cube.Y, -0.3))
}

func TestAxisOffset_Axes(t *testing.T) {
	static := cube.Box(0, 0, 0, 1, 1, 1)
	tests := []struct {
		name   string
		moving cube.BBox
		axis   cube.Axis
		delta  float64
		want   float64
	}{
		{"x towards", cube.Box(-1, 0, 0, -0.25, 1, 1), cube.X, 1, 0.25},
		{"x away", cube.Box(-1, 0, 0, -0.25, 1, 1), cube.X, -1, -1},
		{"x from above the far side", cube.Box(1.5, 0, 0, 2, 1, 1), cube.X, -1, -0.5},
		{"z towards", cube.Box(0, 0, 1.1, 1, 1, 2), cube.Z, -0.5, -0.1},
		{"z short of contact", cube.Box(0, 0, 1.1, 1, 1, 2), cube.Z, -0.05, -0.05},
		{"z edge contact only", cube.Box(1, 0, 1.1, 2, 1, 2), cube.Z, -0.5, -0.5},
		{"y touching", cube.Box(0, 1, 0, 1, 2, 1), cube.Y, -0.3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AxisOffset(static, tt.moving, tt.axis, tt.delta), 1e-12)
		})
	}
}

func TestDominantFace(t *testing.T) {
	tests := []struct {
		v    mgl64.Vec3
		want cube.Face
	}{
		{mgl64.Vec3{}, cube.FaceDown},
		{mgl64.Vec3{0, 2, 1}, cube.FaceUp},
		{mgl64.Vec3{1, 1, 0}, cube.FaceUp},
		{mgl64.Vec3{-3, 1, 2}, cube.FaceWest},
		{mgl64.Vec3{0.5, 0, -0.5}, cube.FaceEast},
		{mgl64.Vec3{0.1, 0, 0.4}, cube.FaceSouth},
		{mgl64.Vec3{0.1, 0.2, -0.4}, cube.FaceNorth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DominantFace(tt.v), "%v", tt.v)
		assert.Equal(t, tt.want, DominantFace(FaceVec(tt.want)))
	}
}
