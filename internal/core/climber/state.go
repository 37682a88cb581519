package climber

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/climber/internal/core/geometry"
	"github.com/zeusync/climber/internal/core/observability/log"
	"github.com/zeusync/climber/internal/core/smoothing"
)

// decayRatio is how much of the previous normal and offset survive a tick
// without contact.
const decayRatio = 0.6

// State is the per-creature orientation state. Normals are unit length,
// sticking offsets stay within the creature's box.
type State struct {
	PrevNormal         mgl64.Vec3 `json:"prev_normal"`
	Normal             mgl64.Vec3 `json:"normal"`
	PrevStickingOffset mgl64.Vec3 `json:"prev_sticking_offset"`
	StickingOffset     mgl64.Vec3 `json:"sticking_offset"`
}

// NewState returns an upright state with no offset.
func NewState() State {
	return State{
		PrevNormal: geometry.Up,
		Normal:     geometry.Up,
	}
}

// StickingOffsetAt interpolates the sticking offset for rendering.
func (s State) StickingOffsetAt(partialTick float64) mgl64.Vec3 {
	return geometry.Lerp(s.PrevStickingOffset, s.StickingOffset, partialTick)
}

// UpdateOrientation samples the geometry around the creature's centre and
// moves the normal and sticking offset towards the smoothed contact. Without
// contact both decay towards upright.
func (c *Climber) UpdateOrientation() {
	p := c.body.Position
	centre := p.Add(mgl64.Vec3{0, c.cfg.Height / 2, 0})
	inclusion := cube.Box(centre[0], centre[1], centre[2], centre[0], centre[1], centre[2]).Grow(c.cfg.InclusionRange)

	boxes := c.world.CollisionBoxes(inclusion)

	c.state.PrevNormal = c.state.Normal
	c.state.PrevStickingOffset = c.state.StickingOffset

	contact, ok := smoothing.FindClosestSmoothPoint(boxes, c.cfg.Smoothing, centre)
	if ok && geometry.Finite(contact.Point) && geometry.Finite(contact.Normal) {
		half := c.cfg.Width / 2
		c.state.StickingOffset = mgl64.Vec3{
			mgl64.Clamp(contact.Point[0]-p[0], -half, half),
			mgl64.Clamp(contact.Point[1]-p[1], 0, c.cfg.Height),
			mgl64.Clamp(contact.Point[2]-p[2], -half, half),
		}
		c.state.Normal = contact.Normal
		c.setContact(true)
		return
	}

	c.state.StickingOffset = c.state.StickingOffset.Mul(decayRatio)

	n := c.state.Normal
	decayed := geometry.Normalize(mgl64.Vec3{
		n[0] * decayRatio,
		n[1] + (1-n[1])*(1-decayRatio),
		n[2] * decayRatio,
	})
	if decayed == geometry.Zero || !geometry.Finite(decayed) {
		decayed = geometry.Up
	}
	c.state.Normal = decayed
	c.setContact(false)
}

func (c *Climber) setContact(inContact bool) {
	if inContact == c.inContact {
		return
	}
	c.inContact = inContact
	if inContact {
		c.logger.Debug("surface contact acquired", log.Uint64("tick", c.tick), log.Vec3("normal", c.state.Normal))
		c.publish(EventContactAcquired, c.state.Normal)
	} else {
		c.logger.Debug("surface contact lost", log.Uint64("tick", c.tick))
		c.publish(EventContactLost, c.state.Normal)
	}
}
