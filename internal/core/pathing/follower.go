// Package pathing walks a climber along a list of block waypoints. It plays
// the part of the host's navigator and move helper: it exposes the current
// path point, steers the climber's velocity in the plane of the surface it
// is attached to and reports waypoints it cannot reach.
package pathing

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/climber/internal/core/climber"
	"github.com/zeusync/climber/internal/core/geometry"
	"github.com/zeusync/climber/internal/core/observability/log"
)

var _ climber.Agent = (*Follower)(nil)

// Steerable is the part of a climber the follower drives.
type Steerable interface {
	climber.PathObstructionAware
	Body() climber.Body
	State() climber.State
	Config() climber.Config
	SetVelocity(mgl64.Vec3)
}

// Follower is the navigation agent of one climber. It is not safe for
// concurrent use.
type Follower struct {
	cfg       Config
	waypoints []cube.Pos
	index     int
	loop      bool
	gravity   bool
	logger    log.Log

	bestDist float64
	stalled  int
}

type FollowerOption func(*Follower)

// WithLoop restarts the path from the first waypoint once it is finished.
func WithLoop(loop bool) FollowerOption {
	return func(f *Follower) { f.loop = loop }
}

// WithGravity sets whether the climber is pulled onto surfaces. Followers
// have gravity unless told otherwise.
func WithGravity(gravity bool) FollowerOption {
	return func(f *Follower) { f.gravity = gravity }
}

func WithLogger(l log.Log) FollowerOption {
	return func(f *Follower) { f.logger = l }
}

func NewFollower(cfg Config, waypoints []cube.Pos, opts ...FollowerOption) (*Follower, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Follower{
		cfg:     cfg,
		gravity: true,
		logger:  log.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.SetPath(waypoints)
	return f, nil
}

// SetPath replaces the path and starts at its first waypoint.
func (f *Follower) SetPath(waypoints []cube.Pos) {
	f.waypoints = append(f.waypoints[:0], waypoints...)
	f.index = 0
	f.resetProgress()
}

func (f *Follower) HasGravity() bool { return f.gravity }

// MovingForward is true while there is a waypoint left to walk to.
func (f *Follower) MovingForward() bool { return !f.Done() }

// PathPoint returns the block position of the current waypoint.
func (f *Follower) PathPoint() (mgl64.Vec3, bool) {
	if f.Done() {
		return mgl64.Vec3{}, false
	}
	return f.waypoints[f.index].Vec3(), true
}

// Done reports whether the path is exhausted.
func (f *Follower) Done() bool { return f.index >= len(f.waypoints) }

// Index is the position of the current waypoint in the path.
func (f *Follower) Index() int { return f.index }

// Target is the point the feet walk towards: the bottom centre of the
// current waypoint's block.
func (f *Follower) Target() (mgl64.Vec3, bool) {
	p, ok := f.PathPoint()
	if !ok {
		return mgl64.Vec3{}, false
	}
	return p.Add(mgl64.Vec3{0.5, 0, 0.5}), true
}

// Advance moves past every waypoint already within reach of position.
// It returns true when at least one waypoint was passed.
func (f *Follower) Advance(position mgl64.Vec3) bool {
	passed := false
	for {
		target, ok := f.Target()
		if !ok || target.Sub(position).Len() >= f.cfg.ReachDistance {
			break
		}
		f.next()
		passed = true
		if f.loop && f.index == 0 {
			break
		}
	}
	return passed
}

func (f *Follower) next() {
	f.index++
	if f.index >= len(f.waypoints) && f.loop {
		f.index = 0
	}
	f.resetProgress()
}

func (f *Follower) resetProgress() {
	f.bestDist = math.Inf(1)
	f.stalled = 0
}

// Steer sets the climber's velocity towards the current waypoint within the
// plane of its surface. The velocity component along the surface normal is
// kept so the sticking force keeps acting. Without a waypoint the climber
// is left alone.
func (f *Follower) Steer(c Steerable) {
	target, ok := f.Target()
	if !ok {
		return
	}

	body := c.Body()
	normal := c.State().Normal
	delta := target.Sub(body.Position)

	f.trackProgress(c, delta)

	tangent := delta.Sub(normal.Mul(delta.Dot(normal)))
	dir := geometry.Normalize(tangent)
	if dir == (mgl64.Vec3{}) {
		dir = geometry.Normalize(delta)
	}

	speed := f.cfg.BaseSpeed * c.Config().MovementSpeed
	if dist := delta.Len(); dist < speed {
		speed = dist
	}

	keep := normal.Mul(body.Velocity.Dot(normal))
	c.SetVelocity(keep.Add(dir.Mul(speed)))
}

// trackProgress reports the waypoint as obstructed and skips it when the
// climber has not closed in on it for StallTicks ticks.
func (f *Follower) trackProgress(c Steerable, delta mgl64.Vec3) {
	dist := delta.Len()
	if dist < f.bestDist-f.cfg.MinProgress {
		f.bestDist = dist
		f.stalled = 0
		return
	}
	f.stalled++
	if f.stalled < f.cfg.StallTicks {
		return
	}

	face := geometry.DominantFace(delta)
	f.logger.Warn("waypoint obstructed",
		log.Int("index", f.index),
		log.Face("towards", face),
		log.Float64("distance", dist),
	)
	c.OnPathingObstructed(face)
	f.next()
}
