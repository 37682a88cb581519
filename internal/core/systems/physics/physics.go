// Package physics moves boxes through static voxel geometry.
package physics

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/climber/internal/core/climber"
	"github.com/zeusync/climber/internal/core/geometry"
)

var _ climber.Integrator = (*Sweep)(nil)

// BoxSource provides the static collision geometry.
type BoxSource interface {
	CollisionBoxes(region cube.BBox) []cube.BBox
}

// Sweep resolves a move one axis at a time, Y first, clipping against every
// box in the swept region. It never steps up ledges.
type Sweep struct {
	boxes BoxSource
}

func NewSweep(boxes BoxSource) *Sweep {
	return &Sweep{boxes: boxes}
}

// Integrate moves box by velocity. An axis is reported as collided when its
// component was clipped.
func (s *Sweep) Integrate(box cube.BBox, velocity mgl64.Vec3) climber.Motion {
	if !geometry.Finite(velocity) {
		return climber.Motion{Position: geometry.FeetPosition(box)}
	}

	bbList := s.boxes.CollisionBoxes(box.Extend(velocity))

	yVel := mgl64.Vec3{0, velocity.Y()}
	for _, b := range bbList {
		yVel[1] = geometry.AxisOffset(b, box, cube.Y, yVel[1])
	}
	box = box.Translate(yVel)

	xVel := mgl64.Vec3{velocity.X()}
	for _, b := range bbList {
		xVel[0] = geometry.AxisOffset(b, box, cube.X, xVel[0])
	}
	box = box.Translate(xVel)

	zVel := mgl64.Vec3{0, 0, velocity.Z()}
	for _, b := range bbList {
		zVel[2] = geometry.AxisOffset(b, box, cube.Z, zVel[2])
	}
	box = box.Translate(zVel)

	return climber.Motion{
		Position:  geometry.FeetPosition(box),
		CollidedX: xVel.X() != velocity.X(),
		CollidedY: yVel.Y() != velocity.Y(),
		CollidedZ: zVel.Z() != velocity.Z(),
	}
}
