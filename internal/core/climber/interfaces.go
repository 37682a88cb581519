package climber

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// World is the read-only collision view a climber needs.
type World interface {
	// CollisionBoxes returns every solid box intersecting region.
	CollisionBoxes(region cube.BBox) []cube.BBox
	// Slipperiness returns the slipperiness of the block at pos, or false if
	// the block is unknown.
	Slipperiness(pos cube.Pos) (float64, bool)
}

// Motion is what the integrator reports back after moving a box.
type Motion struct {
	Position  mgl64.Vec3
	CollidedX bool
	CollidedY bool
	CollidedZ bool
}

// Collided reports whether any axis was clipped.
func (m Motion) Collided() bool {
	return m.CollidedX || m.CollidedY || m.CollidedZ
}

// Integrator moves a box through the world by velocity and resolves
// collisions. The climber never moves itself.
type Integrator interface {
	Integrate(box cube.BBox, velocity mgl64.Vec3) Motion
}

// Agent exposes the AI state a climber reads but never writes.
type Agent interface {
	HasGravity() bool
	MovingForward() bool
	// PathPoint is the active path point, if the agent is following a path.
	PathPoint() (mgl64.Vec3, bool)
}

// Climbing is implemented by anything that sticks to walls and ceilings.
type Climbing interface {
	Orientation(partialTick float64) Orientation
	WalkingSide() WalkingSide
	StickingForce(side WalkingSide) mgl64.Vec3
}

// PathObstructionAware is implemented by entities whose path finder should
// treat obstructions and drops specially.
type PathObstructionAware interface {
	OnPathingObstructed(face cube.Face)
	BridgePathingMalus() float64
	MaxFallHeight() int
}
