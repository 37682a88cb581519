package climber

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/climber/internal/core/geometry"
)

// ceilingThreshold decides the sign of the corrective yaw: surfaces whose up
// component is below it are treated as ceiling-like.
const ceilingThreshold = 0.1

// Orientation is the local frame of a climber at some partial tick. Yaw and
// pitch are in degrees.
type Orientation struct {
	Normal  mgl64.Vec3 `json:"normal"`
	Forward mgl64.Vec3 `json:"forward"`
	Up      mgl64.Vec3 `json:"up"`
	Right   mgl64.Vec3 `json:"right"`

	ForwardComponent float64 `json:"forward_component"`
	UpComponent      float64 `json:"up_component"`
	RightComponent   float64 `json:"right_component"`

	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// LookDirection maps a look direction given as yaw and pitch in degrees,
// relative to the creature, into world space.
func (o Orientation) LookDirection(yaw, pitch float64) mgl64.Vec3 {
	cosYaw := math.Cos(mgl64.DegToRad(yaw))
	sinYaw := math.Sin(mgl64.DegToRad(yaw))
	cosPitch := -math.Cos(mgl64.DegToRad(-pitch))
	sinPitch := math.Sin(mgl64.DegToRad(-pitch))
	return o.Right.Mul(sinYaw * cosPitch).Add(o.Up.Mul(sinPitch)).Add(o.Forward.Mul(cosYaw * cosPitch))
}

// Orientation derives the climber's frame for rendering between two ticks.
func (c *Climber) Orientation(partialTick float64) Orientation {
	return c.state.Orientation(partialTick)
}

// Orientation interpolates the normal by partialTick and builds the frame.
//
// Yaw comes from the horizontal part of the normal, pitch from the normal in
// the yaw-rotated basis. A yaw and pitch pair alone cannot express every
// surface, so a third rotation about Y undoes the yaw on floor-like surfaces
// and doubles it on ceiling-like ones.
func (s State) Orientation(partialTick float64) Orientation {
	n := geometry.Lerp(s.PrevNormal, s.Normal, partialTick)

	fwd, up, right := n.Z(), n.Y(), n.X()
	yaw := mgl64.RadToDeg(math.Atan2(right, fwd))

	yawRad := mgl64.DegToRad(yaw)
	rightRad := mgl64.DegToRad(yaw - 90)
	fwdAxis := mgl64.Vec3{math.Sin(yawRad), 0, math.Cos(yawRad)}
	rightAxis := mgl64.Vec3{math.Sin(rightRad), 0, math.Cos(rightRad)}

	fwd = fwdAxis.Dot(n)
	up = geometry.Up.Dot(n)
	right = rightAxis.Dot(n)

	pitch := mgl64.RadToDeg(math.Atan2(fwd, up)) * geometry.Signum(fwd)

	m := mgl64.Rotate3DY(yawRad).
		Mul3(mgl64.Rotate3DX(mgl64.DegToRad(pitch))).
		Mul3(mgl64.Rotate3DY(mgl64.DegToRad(geometry.Signum(ceilingThreshold-up) * yaw)))

	return Orientation{
		Normal:           n,
		Forward:          m.Mul3x1(mgl64.Vec3{0, 0, -1}),
		Up:               m.Mul3x1(mgl64.Vec3{0, 1, 0}),
		Right:            m.Mul3x1(mgl64.Vec3{1, 0, 0}),
		ForwardComponent: fwd,
		UpComponent:      up,
		RightComponent:   right,
		Yaw:              yaw,
		Pitch:            pitch,
	}
}
