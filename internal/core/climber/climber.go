// Package climber keeps a creature attached to walls, ceilings and corners.
//
// Every tick the climber samples the collision geometry around it, smooths it
// into an attachment point and surface normal, derives a local frame from that
// normal, and turns the frame into a sticking force plus an axis lock for the
// collision response. Movement itself is delegated to an Integrator.
package climber

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/climber/internal/core/events/bus"
	"github.com/zeusync/climber/internal/core/geometry"
	"github.com/zeusync/climber/internal/core/observability/log"
)

var (
	_ Climbing             = (*Climber)(nil)
	_ PathObstructionAware = (*Climber)(nil)
)

// Body is the physical state the host would keep on the entity.
type Body struct {
	Position     mgl64.Vec3 `json:"position"`
	PrevPosition mgl64.Vec3 `json:"prev_position"`
	Velocity     mgl64.Vec3 `json:"velocity"`

	OnGround             bool    `json:"on_ground"`
	CollidedHorizontally bool    `json:"collided_horizontally"`
	CollidedVertically   bool    `json:"collided_vertically"`
	FallDistance         float64 `json:"fall_distance"`
}

// LimbSwing drives the walk animation.
type LimbSwing struct {
	PrevAmount float64 `json:"prev_amount"`
	Amount     float64 `json:"amount"`
	Swing      float64 `json:"swing"`
}

// Climber is one climbing creature. It is owned by a single simulation
// goroutine and must not be shared.
type Climber struct {
	id     uuid.UUID
	name   string
	cfg    Config
	world  World
	motion Integrator
	agent  Agent
	events bus.EventBus
	logger log.Log

	state State
	body  Body
	limbs LimbSwing

	tick      uint64
	inContact bool
	facing    cube.Face
}

// Option customises a Climber at construction.
type Option func(*Climber)

func WithID(id uuid.UUID) Option {
	return func(c *Climber) { c.id = id }
}

func WithName(name string) Option {
	return func(c *Climber) { c.name = name }
}

func WithPosition(pos mgl64.Vec3) Option {
	return func(c *Climber) {
		c.body.Position = pos
		c.body.PrevPosition = pos
	}
}

func WithEventBus(b bus.EventBus) Option {
	return func(c *Climber) { c.events = b }
}

func WithLogger(l log.Log) Option {
	return func(c *Climber) { c.logger = l }
}

// New creates a climber standing upright with no sticking offset.
func New(cfg Config, world World, motion Integrator, agent Agent, opts ...Option) (*Climber, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case world == nil:
		return nil, ErrNilWorld
	case motion == nil:
		return nil, ErrNilIntegrator
	case agent == nil:
		return nil, ErrNilAgent
	}

	c := &Climber{
		id:     uuid.New(),
		cfg:    cfg,
		world:  world,
		motion: motion,
		agent:  agent,
		state:  NewState(),
		facing: cube.FaceDown,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.name == "" {
		c.name = c.id.String()
	}
	if c.logger == nil {
		c.logger = log.Nop()
	}
	c.logger = c.logger.With(log.String("climber", c.name))
	return c, nil
}

func (c *Climber) ID() uuid.UUID    { return c.id }
func (c *Climber) Name() string     { return c.name }
func (c *Climber) Config() Config   { return c.cfg }
func (c *Climber) State() State     { return c.state }
func (c *Climber) Body() Body       { return c.body }
func (c *Climber) Limbs() LimbSwing { return c.limbs }
func (c *Climber) Ticks() uint64    { return c.tick }

// InContact reports whether the last orientation update found a surface.
func (c *Climber) InContact() bool { return c.inContact }

// Facing is the walking side chosen by the last Travel.
func (c *Climber) Facing() cube.Face { return c.facing }

// SetVelocity is used by the movement helper, which steers by writing
// velocity directly.
func (c *Climber) SetVelocity(v mgl64.Vec3) { c.body.Velocity = v }

// BoundingBox is the creature's box at its current position.
func (c *Climber) BoundingBox() cube.BBox {
	return geometry.EntityBox(c.body.Position, c.cfg.Width, c.cfg.Height)
}

// Tick advances the climber by one simulation step in host order: movement
// first, then the orientation update.
func (c *Climber) Tick(input MoveInput) {
	c.tick++
	c.body.PrevPosition = c.body.Position
	c.Travel(input)
	c.UpdateOrientation()
}

func (c *Climber) OnPathingObstructed(face cube.Face) {
	c.publish(EventPathObstructed, face)
}

// BridgePathingMalus is negative so the path finder never bridges gaps for
// a creature that can walk along their walls.
func (c *Climber) BridgePathingMalus() float64 { return -1 }

// MaxFallHeight is zero: a climber climbs down instead of dropping.
func (c *Climber) MaxFallHeight() int { return 0 }
