package climber

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/climber/internal/core/geometry"
)

const (
	// avoidRange is one block diagonal. Path points further away than this
	// do not cause a face to be skipped, otherwise the creature would start
	// floating while the next point is still out of reach.
	avoidRange = 1.732

	probeGrowth = 0.2

	stickingDistanceMoving = 1.5
	stickingDistanceIdle   = 0.1

	downwardBias = 0.001
)

// WalkingSide is the face the creature currently walks on together with the
// direction the sticking force pulls in.
type WalkingSide struct {
	Facing cube.Face  `json:"facing"`
	Weight mgl64.Vec3 `json:"weight"`
}

// WalkingSide probes the six faces around the creature and picks the one
// with the nearest geometry.
func (c *Climber) WalkingSide() WalkingSide {
	return c.walkingSide(c.agent.MovingForward())
}

func (c *Climber) walkingSide(movingForward bool) WalkingSide {
	avoid, avoiding := c.avoidedFace()

	entityBox := c.BoundingBox()

	stickingDistance := stickingDistanceIdle
	if movingForward {
		stickingDistance = stickingDistanceMoving
	}

	closestFacingDst := math.MaxFloat64
	closestFacing, found := cube.FaceDown, false
	var weighting mgl64.Vec3

	for _, face := range geometry.Faces {
		if avoiding && face == avoid {
			continue
		}

		dir := geometry.FaceVec(face)
		probe := entityBox.Grow(probeGrowth).ExtendTowards(face, stickingDistance)

		closestDst := math.MaxFloat64
		for _, box := range c.world.CollisionBoxes(probe) {
			axis := face.Axis()
			delta := -dir[geometry.AxisIndex(axis)] * stickingDistance
			closestDst = math.Min(closestDst, math.Abs(geometry.AxisOffset(entityBox, box, axis, delta)))
		}

		if closestDst < closestFacingDst {
			closestFacingDst = closestDst
			closestFacing, found = face, true
		}

		if closestDst < math.MaxFloat64 {
			weighting = weighting.Add(dir.Mul(1 - math.Min(closestDst, stickingDistance)/stickingDistance))
		}
	}

	if !found {
		return WalkingSide{Facing: cube.FaceDown, Weight: mgl64.Vec3{0, -1, 0}}
	}

	weight := geometry.Normalize(geometry.Normalize(weighting).Add(mgl64.Vec3{0, -downwardBias, 0}))
	return WalkingSide{Facing: closestFacing, Weight: weight}
}

// avoidedFace returns the face opposite to the direction of the next path
// point when that point lies within one block diagonal of the creature's box.
// The face is skipped for the whole tick so the creature lets go of the
// surface it is leaving.
func (c *Climber) avoidedFace() (cube.Face, bool) {
	point, ok := c.agent.PathPoint()
	if !ok {
		return 0, false
	}

	pos := c.body.Position
	maxDist := 0.0
	var (
		avoid    cube.Face
		avoiding bool
	)
	for _, face := range geometry.Faces {
		dir := geometry.FaceVec(face)
		i := geometry.AxisIndex(face.Axis())

		distSigned := point[i] + 0.5 - pos[i]
		if distSigned*dir[i] <= 0 {
			continue
		}

		var extent float64
		switch {
		case face.Axis() != cube.Y:
			extent = c.cfg.Width / 2
		case face == cube.FaceDown:
			extent = 0
		default:
			extent = c.cfg.Height
		}

		dist := math.Abs(distSigned) - extent
		if dist > maxDist {
			maxDist = dist
			if dist < avoidRange {
				avoid, avoiding = face.Opposite(), true
			} else {
				avoiding = false
			}
		}
	}
	return avoid, avoiding
}
