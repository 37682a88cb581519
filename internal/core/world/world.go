// Package world is a sparse voxel world that answers the collision and
// friction queries of climbing creatures.
package world

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"

	"github.com/zeusync/climber/internal/core/geometry"
)

// DefaultSlipperiness is the friction of ordinary blocks.
const DefaultSlipperiness = 0.6

// maxBlockHeight bounds how far a block's boxes may reach above its cell, so
// queries also look one cell below the region.
const maxBlockHeight = 1.5

// Kind is one entry of the block palette.
type Kind struct {
	Name         string
	Shape        Shape
	Slipperiness float64

	boxes []cube.BBox
}

// Boxes returns the collision boxes of k relative to the block origin.
func (k Kind) Boxes() []cube.BBox { return k.boxes }

// World stores blocks by position as indices into a palette. It is safe for
// concurrent use; reads take a shared lock.
type World struct {
	mu      sync.RWMutex
	palette []Kind
	index   map[string]uint16
	blocks  map[cube.Pos]uint16
}

func New() *World {
	return &World{
		index:  make(map[string]uint16),
		blocks: make(map[cube.Pos]uint16),
	}
}

// Register adds a block kind to the palette. A zero slipperiness takes the
// default.
func (w *World) Register(name string, shape Shape, slipperiness float64) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownBlock)
	}
	boxes, err := shape.Boxes()
	if err != nil {
		return err
	}
	if slipperiness == 0 {
		slipperiness = DefaultSlipperiness
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBlock, name)
	}
	if len(w.palette) == math.MaxUint16 {
		return ErrPaletteFull
	}
	w.index[name] = uint16(len(w.palette))
	w.palette = append(w.palette, Kind{Name: name, Shape: shape, Slipperiness: slipperiness, boxes: boxes})
	return nil
}

// Set places a block of the named kind at pos.
func (w *World) Set(pos cube.Pos, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, ok := w.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBlock, name)
	}
	w.blocks[pos] = idx
	return nil
}

// Fill places blocks of the named kind in the inclusive cuboid between two
// corners and returns how many were placed.
func (w *World) Fill(from, to cube.Pos, name string) (int, error) {
	lo := cube.Pos{min(from[0], to[0]), min(from[1], to[1]), min(from[2], to[2])}
	hi := cube.Pos{max(from[0], to[0]), max(from[1], to[1]), max(from[2], to[2])}

	w.mu.Lock()
	defer w.mu.Unlock()
	idx, ok := w.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownBlock, name)
	}
	n := 0
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				w.blocks[cube.Pos{x, y, z}] = idx
				n++
			}
		}
	}
	return n, nil
}

// Remove clears the block at pos.
func (w *World) Remove(pos cube.Pos) {
	w.mu.Lock()
	delete(w.blocks, pos)
	w.mu.Unlock()
}

// Block returns the kind at pos.
func (w *World) Block(pos cube.Pos) (Kind, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	idx, ok := w.blocks[pos]
	if !ok {
		return Kind{}, false
	}
	return w.palette[idx], true
}

// Len is the number of placed blocks.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.blocks)
}

// Slipperiness returns the friction of the block at pos.
func (w *World) Slipperiness(pos cube.Pos) (float64, bool) {
	k, ok := w.Block(pos)
	if !ok {
		return 0, false
	}
	return k.Slipperiness, true
}

// CollisionBoxes returns the world-space boxes intersecting region, ordered
// by block position (x, then y, then z) so callers see a stable order.
func (w *World) CollisionBoxes(region cube.BBox) []cube.BBox {
	lo, hi := region.Min(), region.Max()
	if !geometry.Finite(lo) || !geometry.Finite(hi) {
		return nil
	}
	from := cube.Pos{int(math.Floor(lo[0])), int(math.Floor(lo[1] - (maxBlockHeight - 1))), int(math.Floor(lo[2]))}
	to := cube.Pos{int(math.Floor(hi[0])), int(math.Floor(hi[1])), int(math.Floor(hi[2]))}

	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []cube.BBox
	collect := func(pos cube.Pos, idx uint16) {
		origin := pos.Vec3()
		for _, b := range w.palette[idx].boxes {
			if b = b.Translate(origin); b.IntersectsWith(region) {
				out = append(out, b)
			}
		}
	}

	volume := float64(to[0]-from[0]+1) * float64(to[1]-from[1]+1) * float64(to[2]-from[2]+1)
	if volume > float64(len(w.blocks)) {
		positions := make([]cube.Pos, 0, len(w.blocks))
		for pos := range w.blocks {
			if within(pos, from, to) {
				positions = append(positions, pos)
			}
		}
		slices.SortFunc(positions, comparePos)
		for _, pos := range positions {
			collect(pos, w.blocks[pos])
		}
		return out
	}

	for x := from[0]; x <= to[0]; x++ {
		for y := from[1]; y <= to[1]; y++ {
			for z := from[2]; z <= to[2]; z++ {
				pos := cube.Pos{x, y, z}
				if idx, ok := w.blocks[pos]; ok {
					collect(pos, idx)
				}
			}
		}
	}
	return out
}

func within(pos, from, to cube.Pos) bool {
	for i := 0; i < 3; i++ {
		if pos[i] < from[i] || pos[i] > to[i] {
			return false
		}
	}
	return true
}

func comparePos(a, b cube.Pos) int {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
