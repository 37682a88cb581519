package climber

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Snapshot is the externally visible state of a climber after a tick.
type Snapshot struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Tick           uint64     `json:"tick"`
	Position       mgl64.Vec3 `json:"position"`
	Velocity       mgl64.Vec3 `json:"velocity"`
	Normal         mgl64.Vec3 `json:"normal"`
	StickingOffset mgl64.Vec3 `json:"sticking_offset"`
	Facing         cube.Face  `json:"facing"`
	InContact      bool       `json:"in_contact"`
	OnGround       bool       `json:"on_ground"`
	Yaw            float64    `json:"yaw"`
	Pitch          float64    `json:"pitch"`
	LimbSwing      float64    `json:"limb_swing"`
	LimbAmount     float64    `json:"limb_amount"`
}

// Snapshot captures the climber with its orientation evaluated at the end of
// the tick.
func (c *Climber) Snapshot() Snapshot {
	o := c.state.Orientation(1)
	return Snapshot{
		ID:             c.id.String(),
		Name:           c.name,
		Tick:           c.tick,
		Position:       c.body.Position,
		Velocity:       c.body.Velocity,
		Normal:         c.state.Normal,
		StickingOffset: c.state.StickingOffset,
		Facing:         c.facing,
		InContact:      c.inContact,
		OnGround:       c.body.OnGround,
		Yaw:            o.Yaw,
		Pitch:          o.Pitch,
		LimbSwing:      c.limbs.Swing,
		LimbAmount:     c.limbs.Amount,
	}
}

// Digest hashes the simulated quantities of s bit for bit. Two runs of the
// same scene produce the same digest on every tick.
func (s Snapshot) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte

	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}

	binary.LittleEndian.PutUint64(buf[:], s.Tick)
	_, _ = h.Write(buf[:])
	for _, v := range [...]mgl64.Vec3{s.Position, s.Velocity, s.Normal, s.StickingOffset} {
		writeFloat(v[0])
		writeFloat(v[1])
		writeFloat(v[2])
	}
	writeFloat(s.LimbSwing)
	writeFloat(s.LimbAmount)
	_, _ = h.Write([]byte{byte(s.Facing), boolByte(s.InContact), boolByte(s.OnGround)})
	return h.Sum64()
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// CombinedDigest folds the digests of several snapshots, in order, into one.
func CombinedDigest(snaps []Snapshot) uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, s := range snaps {
		binary.LittleEndian.PutUint64(buf[:], s.Digest())
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
