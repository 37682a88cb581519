package world

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// Shape names the collision model of a block kind.
type Shape string

const (
	ShapeFull       Shape = "full"
	ShapeBottomSlab Shape = "bottom_slab"
	ShapeTopSlab    Shape = "top_slab"
	ShapeCarpet     Shape = "carpet"
	// ShapeFence is a centred post reaching half a block above its cell.
	ShapeFence Shape = "fence"
	ShapeNone  Shape = "none"
)

// Boxes returns the collision boxes of s relative to the block origin.
func (s Shape) Boxes() ([]cube.BBox, error) {
	switch s {
	case ShapeFull, "":
		return []cube.BBox{cube.Box(0, 0, 0, 1, 1, 1)}, nil
	case ShapeBottomSlab:
		return []cube.BBox{cube.Box(0, 0, 0, 1, 0.5, 1)}, nil
	case ShapeTopSlab:
		return []cube.BBox{cube.Box(0, 0.5, 0, 1, 1, 1)}, nil
	case ShapeCarpet:
		return []cube.BBox{cube.Box(0, 0, 0, 1, 0.0625, 1)}, nil
	case ShapeFence:
		return []cube.BBox{cube.Box(0.375, 0, 0.375, 0.625, 1.5, 0.625)}, nil
	case ShapeNone:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidShape, s)
}
