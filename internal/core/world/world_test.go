package world

import (
	"math"
	"strconv"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoneWorld(t *testing.T) *World {
	t.Helper()
	w := New()
	require.NoError(t, w.Register("stone", ShapeFull, 0))
	require.NoError(t, w.Register("ice", ShapeFull, 0.98))
	require.NoError(t, w.Register("slab", ShapeBottomSlab, 0))
	require.NoError(t, w.Register("fence", ShapeFence, 0))
	return w
}

func TestWorld_Register(t *testing.T) {
	w := New()
	require.NoError(t, w.Register("stone", ShapeFull, 0))
	assert.ErrorIs(t, w.Register("stone", ShapeFull, 0), ErrDuplicateBlock)
	assert.ErrorIs(t, w.Register("odd", Shape("pyramid"), 0), ErrInvalidShape)
	assert.ErrorIs(t, w.Register("", ShapeFull, 0), ErrUnknownBlock)
	assert.ErrorIs(t, w.Set(cube.Pos{}, "missing"), ErrUnknownBlock)
}

func TestWorld_RegisterPaletteFull(t *testing.T) {
	w := New()
	for i := 0; i < math.MaxUint16; i++ {
		require.NoError(t, w.Register("kind-"+strconv.Itoa(i), ShapeFull, 0))
	}
	assert.ErrorIs(t, w.Register("one-too-many", ShapeFull, 0), ErrPaletteFull)

	// Earlier kinds stay usable.
	require.NoError(t, w.Set(cube.Pos{}, "kind-65534"))
	k, ok := w.Block(cube.Pos{})
	require.True(t, ok)
	assert.Equal(t, "kind-65534", k.Name)
}

func TestWorld_SetFillRemove(t *testing.T) {
	w := newStoneWorld(t)

	n, err := w.Fill(cube.Pos{1, 0, 1}, cube.Pos{-1, 0, -1}, "stone")
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, 9, w.Len())

	require.NoError(t, w.Set(cube.Pos{0, 0, 0}, "ice"))
	k, ok := w.Block(cube.Pos{0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, "ice", k.Name)

	w.Remove(cube.Pos{0, 0, 0})
	_, ok = w.Block(cube.Pos{0, 0, 0})
	assert.False(t, ok)
	assert.Equal(t, 8, w.Len())
}

func TestWorld_Slipperiness(t *testing.T) {
	w := newStoneWorld(t)
	require.NoError(t, w.Set(cube.Pos{0, 0, 0}, "stone"))
	require.NoError(t, w.Set(cube.Pos{1, 0, 0}, "ice"))

	s, ok := w.Slipperiness(cube.Pos{0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, DefaultSlipperiness, s)

	s, ok = w.Slipperiness(cube.Pos{1, 0, 0})
	require.True(t, ok)
	assert.Equal(t, 0.98, s)

	_, ok = w.Slipperiness(cube.Pos{5, 5, 5})
	assert.False(t, ok)
}

func TestWorld_CollisionBoxes(t *testing.T) {
	w := newStoneWorld(t)
	_, err := w.Fill(cube.Pos{-3, 0, -3}, cube.Pos{3, 0, 3}, "stone")
	require.NoError(t, err)
	require.NoError(t, w.Set(cube.Pos{10, 0, 0}, "slab"))
	require.NoError(t, w.Set(cube.Pos{0, 5, 0}, "fence"))

	t.Run("only intersecting boxes", func(t *testing.T) {
		region := cube.Box(-0.5, 0.5, -0.5, 0.5, 1.5, 0.5)
		boxes := w.CollisionBoxes(region)
		require.Len(t, boxes, 4)
		for _, b := range boxes {
			assert.True(t, b.IntersectsWith(region))
		}
	})

	t.Run("stable order", func(t *testing.T) {
		region := cube.Box(-2, -1, -2, 2, 2, 2)
		a := w.CollisionBoxes(region)
		b := w.CollisionBoxes(region)
		assert.Equal(t, a, b)
		for i := 1; i < len(a); i++ {
			prev, cur := a[i-1].Min(), a[i].Min()
			assert.True(t, prev[0] < cur[0] || (prev[0] == cur[0] && prev[2] < cur[2]), "boxes out of order at %d", i)
		}
	})

	t.Run("shaped blocks", func(t *testing.T) {
		boxes := w.CollisionBoxes(cube.Box(9.5, 0, -0.5, 11, 2, 0.5))
		require.Len(t, boxes, 1)
		assert.Equal(t, mgl64.Vec3{11, 0.5, 1}, boxes[0].Max())
		assert.Empty(t, w.CollisionBoxes(cube.Box(9.5, 0.6, 0, 11, 2, 0.5)))
	})

	t.Run("tall blocks reach the cell above", func(t *testing.T) {
		boxes := w.CollisionBoxes(cube.Box(0, 6.2, 0, 1, 7, 1))
		require.Len(t, boxes, 1)
		assert.InDelta(t, 6.5, boxes[0].Max().Y(), 1e-12)
	})

	t.Run("huge region falls back to the block list", func(t *testing.T) {
		boxes := w.CollisionBoxes(cube.Box(-1e6, -1e6, -1e6, 1e6, 1e6, 1e6))
		assert.Len(t, boxes, w.Len())
	})

	t.Run("non-finite region", func(t *testing.T) {
		assert.Nil(t, w.CollisionBoxes(cube.Box(0, 0, 0, 1, 1, 1).Extend(mgl64.Vec3{math.Inf(1), 0, 0})))
	})
}

func TestConfig_Build(t *testing.T) {
	w, err := Build(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 81+36, w.Len())

	k, ok := w.Block(cube.Pos{4, 2, 0})
	require.True(t, ok)
	assert.Equal(t, "stone", k.Name)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"default", func(*Config) {}, nil},
		{"unknown fill block", func(c *Config) { c.Fills[0].Block = "lava" }, ErrUnknownBlock},
		{"duplicate palette entry", func(c *Config) { c.Palette = append(c.Palette, c.Palette[0]) }, ErrDuplicateBlock},
		{"bad shape", func(c *Config) { c.Palette[0].Shape = "cone" }, ErrInvalidShape},
		{"bad slipperiness", func(c *Config) { c.Palette[0].Slipperiness = 1.5 }, ErrInvalidSlip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
