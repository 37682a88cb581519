package smoothing

import (
	"math/rand"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/climber/internal/core/geometry"
)

func TestFindClosestSmoothPoint_NoContact(t *testing.T) {
	params := DefaultParams()
	sample := mgl64.Vec3{0.5, 1.5, 0.5}

	tests := []struct {
		name  string
		boxes []cube.BBox
	}{
		{"nil boxes", nil},
		{"empty boxes", []cube.BBox{}},
		{"only degenerate boxes", []cube.BBox{cube.Box(0, 0, 0, 1, 0, 1), cube.Box(0, 0, 0, 0, 0, 0)}},
		{"out of range", []cube.BBox{cube.Box(10, 0, 10, 11, 1, 11)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := FindClosestSmoothPoint(tt.boxes, params, sample)
			require.False(t, ok)
		})
	}
}

func TestFindClosestSmoothPoint_SingleTopFace(t *testing.T) {
	boxes := []cube.BBox{cube.Box(0, 0, 0, 1, 1, 1)}
	sample := mgl64.Vec3{0.3, 1.425, 0.6}

	c, ok := FindClosestSmoothPoint(boxes, DefaultParams(), sample)
	require.True(t, ok)
	require.Equal(t, mgl64.Vec3{0, 1, 0}, c.Normal)
	assert.InDelta(t, 1.0, c.Point.Y(), DefaultParams().StepSize)
	assert.Equal(t, sample.X(), c.Point.X())
	assert.Equal(t, sample.Z(), c.Point.Z())
}

func TestFindClosestSmoothPoint_SkipsDegenerate(t *testing.T) {
	boxes := []cube.BBox{
		cube.Box(0, 1, 0, 1, 1, 1),
		cube.Box(0, 0, 0, 1, 1, 1),
	}
	c, ok := FindClosestSmoothPoint(boxes, DefaultParams(), mgl64.Vec3{0.5, 1.4, 0.5})
	require.True(t, ok)
	require.Equal(t, mgl64.Vec3{0, 1, 0}, c.Normal)
}

func TestFindClosestSmoothPoint_Idempotent(t *testing.T) {
	boxes := []cube.BBox{
		cube.Box(-2, -1, -2, 2, 0, 2),
		cube.Box(1, 0, -2, 2, 2, 2),
	}
	snapshot := append([]cube.BBox(nil), boxes...)
	sample := mgl64.Vec3{0.6, 0.4, 0.1}

	first, ok1 := FindClosestSmoothPoint(boxes, DefaultParams(), sample)
	second, ok2 := FindClosestSmoothPoint(boxes, DefaultParams(), sample)

	require.True(t, ok1)
	require.Equal(t, ok1, ok2)
	require.Equal(t, first, second)
	require.Equal(t, snapshot, boxes)
}

func TestFindClosestSmoothPoint_RandomBoxesYieldUnitNormal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	params := DefaultParams()

	for i := 0; i < 200; i++ {
		sample := mgl64.Vec3{rng.Float64()*4 - 2, 0.2 + rng.Float64()*0.6, rng.Float64()*4 - 2}

		// One box right underneath guarantees influence; the rest are random
		// boxes that all stay below the sample.
		boxes := []cube.BBox{cube.Box(sample.X()-0.5, -1, sample.Z()-0.5, sample.X()+0.5, 0, sample.Z()+0.5)}
		extra := rng.Intn(8)
		for j := 0; j < extra; j++ {
			x, z := sample.X()+rng.Float64()*4-2, sample.Z()+rng.Float64()*4-2
			top := -rng.Float64()
			boxes = append(boxes, cube.Box(x, top-1-rng.Float64(), z, x+0.1+rng.Float64(), top, z+0.1+rng.Float64()))
		}

		c, ok := FindClosestSmoothPoint(boxes, params, sample)
		require.True(t, ok, "iteration %d", i)
		require.True(t, geometry.Finite(c.Point), "iteration %d", i)
		require.True(t, geometry.Finite(c.Normal), "iteration %d", i)
		require.InDelta(t, 1.0, c.Normal.Len(), 1e-4, "iteration %d", i)
		require.LessOrEqual(t, c.Point.Sub(sample).Len(), params.SmoothingRadius+1e-9, "iteration %d", i)
	}
}

func TestFindClosestSmoothPoint_ContinuousAcrossConcaveCorner(t *testing.T) {
	boxes := []cube.BBox{
		cube.Box(-5, -1, -5, 5, 0, 5), // floor
		cube.Box(1, 0, -5, 2, 5, 5),   // wall
	}
	params := DefaultParams()

	var prev mgl64.Vec3
	for i := 0; i <= 90; i++ {
		sample := mgl64.Vec3{float64(i) * 0.01, 0.5, 0}
		c, ok := FindClosestSmoothPoint(boxes, params, sample)
		require.True(t, ok)
		if i > 0 {
			require.Less(t, c.Normal.Sub(prev).Len(), 0.1, "jump at x=%.2f", sample.X())
		}
		prev = c.Normal
	}

	// Close to the wall the normal leans away from it.
	assert.Less(t, prev.X(), 0.0)
	assert.Greater(t, prev.Y(), 0.0)
}

func TestFindClosestSmoothPoint_ConvexEdgeBlendsNormal(t *testing.T) {
	boxes := []cube.BBox{cube.Box(0, 0, 0, 1, 1, 1)}
	c, ok := FindClosestSmoothPoint(boxes, DefaultParams(), mgl64.Vec3{1.3, 1.3, 0.5})
	require.True(t, ok)
	assert.InDelta(t, c.Normal.X(), c.Normal.Y(), 1e-12)
	assert.Greater(t, c.Normal.X(), 0.0)
}

func TestFindClosestSmoothPoint_NoIterationsReturnsSample(t *testing.T) {
	params := DefaultParams()
	params.MaxIterations = 0
	sample := mgl64.Vec3{0.5, 1.5, 0.5}

	c, ok := FindClosestSmoothPoint([]cube.BBox{cube.Box(0, 0, 0, 1, 1, 1)}, params, sample)
	require.True(t, ok)
	require.Equal(t, sample, c.Point)
}

func TestFindClosestSmoothPoint_InsideBoxUsesFaceNormal(t *testing.T) {
	c, ok := FindClosestSmoothPoint([]cube.BBox{cube.Box(0, 0, 0, 1, 1, 1)}, DefaultParams(), mgl64.Vec3{0.5, 0.9, 0.5})
	require.True(t, ok)
	require.Equal(t, mgl64.Vec3{0, 1, 0}, c.Normal)
	assert.InDelta(t, 1.0, c.Point.Y(), DefaultParams().StepSize)
}

// unitBlocks returns one unit box per integer cell in the inclusive cuboid.
func unitBlocks(x0, y0, z0, x1, y1, z1 int) []cube.BBox {
	var boxes []cube.BBox
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			for z := z0; z <= z1; z++ {
				boxes = append(boxes, cube.Box(float64(x), float64(y), float64(z), float64(x+1), float64(y+1), float64(z+1)))
			}
		}
	}
	return boxes
}

func TestFindClosestSmoothPoint_BlockFloorIsFlat(t *testing.T) {
	floor := unitBlocks(-3, -1, -3, 3, -1, 3)
	params := DefaultParams()

	for _, z := range []float64{0.5, 0.25, 0} {
		var prev mgl64.Vec3
		for i := 0; i <= 200; i++ {
			sample := mgl64.Vec3{-0.5 + float64(i)*0.01, 0.425, z}
			c, ok := FindClosestSmoothPoint(floor, params, sample)
			require.True(t, ok)
			require.Equal(t, mgl64.Vec3{0, 1, 0}, c.Normal, "sample %v", sample)
			assert.InDelta(t, 0, c.Point.Y(), 1e-3, "sample %v", sample)
			assert.InDelta(t, sample.X(), c.Point.X(), 1e-9, "sample %v", sample)
			assert.InDelta(t, sample.Z(), c.Point.Z(), 1e-9, "sample %v", sample)
			if i > 0 {
				require.Less(t, c.Point.Sub(prev).Len(), 0.02, "jump at %v", sample)
			}
			prev = c.Point
		}
	}
}

func TestFindClosestSmoothPoint_BlockWallIsFlat(t *testing.T) {
	wall := unitBlocks(1, 0, -2, 1, 3, 2)

	for _, y := range []float64{1, 1.5, 2, 2.5, 2.9} {
		sample := mgl64.Vec3{0.6, y, 0.5}
		c, ok := FindClosestSmoothPoint(wall, DefaultParams(), sample)
		require.True(t, ok)
		require.Equal(t, mgl64.Vec3{-1, 0, 0}, c.Normal, "y=%v", y)
		assertVec(t, mgl64.Vec3{1, y, 0.5}, c.Point, 1e-3)
	}
}

func TestFindClosestSmoothPoint_LoneBoxNearRadius(t *testing.T) {
	params := DefaultParams()
	boxes := []cube.BBox{cube.Box(0, 0, 0, 1, 1, 1)}

	tests := []struct {
		name   string
		height float64
		ok     bool
	}{
		{"well inside", 0.5, true},
		{"just inside radius", params.SmoothingRadius - 0.01, true},
		{"on radius", params.SmoothingRadius, false},
		{"beyond radius", params.SmoothingRadius + 0.01, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := FindClosestSmoothPoint(boxes, params, mgl64.Vec3{0.5, 1 + tt.height, 0.5})
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, mgl64.Vec3{0, 1, 0}, c.Normal)
				assert.InDelta(t, 1.0, c.Point.Y(), 1e-9)
			}
		})
	}
}

func TestFindClosestSmoothPoint_CornerPointStaysNearSample(t *testing.T) {
	boxes := []cube.BBox{
		cube.Box(-5, -1, -5, 5, 0, 5),
		cube.Box(1, 0, -5, 2, 5, 5),
	}
	params := DefaultParams()

	var prev mgl64.Vec3
	for i := 0; i <= 90; i++ {
		sample := mgl64.Vec3{float64(i) * 0.01, 0.5, 0}
		c, ok := FindClosestSmoothPoint(boxes, params, sample)
		require.True(t, ok)
		require.LessOrEqual(t, c.Point.Sub(sample).Len(), params.SmoothingRadius)
		if i > 0 {
			require.Less(t, c.Point.Sub(prev).Len(), 0.05, "jump at x=%.2f", sample.X())
		}
		prev = c.Point
	}
}

func assertVec(t *testing.T, expected, actual mgl64.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expected[i], actual[i], delta, "component %d of %v", i, actual)
	}
}
