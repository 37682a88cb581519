package climber

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/climber/internal/core/geometry"
	"github.com/zeusync/climber/internal/core/observability/log"
)

const (
	stickingForce       = 0.08
	alignednessExponent = 0.333
	defaultSlipperiness = 0.91
	limbSwingGain       = 0.4
)

// MoveInput is the movement intent for one tick. Only a non-zero Forward is
// significant here: it widens the walking side probe.
type MoveInput struct {
	Strafe   float64 `json:"strafe"`
	Vertical float64 `json:"vertical"`
	Forward  float64 `json:"forward"`
}

// MovingForward reports whether the input carries forward intent.
func (in MoveInput) MovingForward() bool { return in.Forward != 0 }

// StickingForce is the per-tick acceleration towards the walking side. It
// is weakest on flat faces and grows towards edges and corners so the
// creature holds on while moving around them.
func (c *Climber) StickingForce(side WalkingSide) mgl64.Vec3 {
	if !c.agent.HasGravity() {
		return mgl64.Vec3{}
	}
	w := side.Weight
	alignedness := 1 - math.Pow(math.Abs(w[0]*w[1]*w[2]), alignednessExponent)
	return w.Mul(stickingForce * ((1-alignedness)*0.5 + 0.5))
}

// Travel moves the climber for one tick: it picks the walking side, adds the
// sticking force, lets the integrator move the box and then locks velocity
// on the walking side's axis while damping the other two.
func (c *Climber) Travel(input MoveInput) {
	before := c.body.Position

	side := c.walkingSide(input.MovingForward() || c.agent.MovingForward())
	c.setFacing(side.Facing)

	vel := c.body.Velocity.Add(c.StickingForce(side))

	m := c.motion.Integrate(c.BoundingBox(), vel)
	c.body.Position = m.Position
	if m.CollidedX {
		vel[0] = 0
	}
	if m.CollidedY {
		vel[1] = 0
	}
	if m.CollidedZ {
		vel[2] = 0
	}
	c.body.CollidedHorizontally = m.CollidedX || m.CollidedZ
	c.body.CollidedVertically = m.CollidedY
	c.body.OnGround = c.body.CollidedHorizontally || c.body.CollidedVertically

	if m.Collided() {
		c.body.FallDistance = 0

		slip := defaultSlipperiness
		if c.body.OnGround {
			if s, ok := c.world.Slipperiness(cube.PosFromVec3(c.body.Position).Side(side.Facing)); ok {
				slip = s * defaultSlipperiness
			}
		}

		locked := geometry.AxisIndex(side.Facing.Axis())
		for i := range vel {
			if i == locked {
				vel[i] = 0
			} else {
				vel[i] *= slip
			}
		}
	} else if dy := before[1] - c.body.Position[1]; dy > 0 {
		c.body.FallDistance += dy
	}

	if !geometry.Finite(vel) {
		c.logger.Warn("discarding non-finite velocity", log.Uint64("tick", c.tick), log.Vec3("velocity", vel))
		vel = mgl64.Vec3{}
	}
	c.body.Velocity = vel

	c.swingLimbs(c.body.Position.Sub(before))
}

func (c *Climber) swingLimbs(traveled mgl64.Vec3) {
	c.limbs.PrevAmount = c.limbs.Amount
	amount := math.Min(traveled.Len()*4, 1)
	c.limbs.Amount += (amount - c.limbs.Amount) * limbSwingGain
	c.limbs.Swing += c.limbs.Amount
}

func (c *Climber) setFacing(face cube.Face) {
	if face == c.facing {
		return
	}
	prev := c.facing
	c.facing = face
	c.logger.Debug("walking side changed", log.Uint64("tick", c.tick), log.Face("from", prev), log.Face("to", face))
	c.publish(EventFacingChanged, face)
}
