// Package locomotion ticks climbers and the followers that steer them.
package locomotion

import (
	"context"

	"github.com/zeusync/climber/internal/core/climber"
	"github.com/zeusync/climber/internal/core/observability/log"
	"github.com/zeusync/climber/internal/core/pathing"
	"github.com/zeusync/climber/internal/core/systems"
	"github.com/zeusync/climber/pkg/concurrent"
)

var (
	_ systems.System        = (*System)(nil)
	_ systems.EntityCounter = (*System)(nil)
)

const Name = "locomotion"

// Unit is a climber and its optional follower.
type Unit struct {
	Climber  *climber.Climber
	Follower *pathing.Follower
}

// System moves every unit by one tick: the follower advances and steers,
// then the climber travels and updates its orientation.
type System struct {
	units   []Unit
	workers int
	logger  log.Log
}

type Option func(*System)

// WithWorkers ticks up to n units concurrently. Units never read each
// other's state, so results do not depend on n; event delivery order does.
func WithWorkers(n int) Option {
	return func(s *System) { s.workers = n }
}

func WithLogger(l log.Log) Option {
	return func(s *System) { s.logger = l }
}

func New(units []Unit, opts ...Option) *System {
	s := &System{units: units, logger: log.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *System) Name() string               { return Name }
func (s *System) Priority() systems.Priority { return systems.PriorityHigh }
func (s *System) Entities() int              { return len(s.units) }
func (s *System) Units() []Unit              { return s.units }

func (s *System) Shutdown(context.Context) error { return nil }

func (s *System) Initialize(context.Context) error {
	s.logger.Info("locomotion ready", log.Int("climbers", len(s.units)), log.Int("workers", s.workers))
	return nil
}

func (s *System) Update(ctx context.Context, _ uint64) error {
	if s.workers > 1 {
		return concurrent.ForEach(ctx, s.units, s.workers, func(ctx context.Context, u Unit) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			step(u)
			return nil
		})
	}
	for _, u := range s.units {
		if err := ctx.Err(); err != nil {
			return err
		}
		step(u)
	}
	return nil
}

func step(u Unit) {
	var input climber.MoveInput
	if f := u.Follower; f != nil {
		f.Advance(u.Climber.Body().Position)
		f.Steer(u.Climber)
		if f.MovingForward() {
			input.Forward = 1
		}
	}
	u.Climber.Tick(input)
}

// Snapshots returns the state of every climber in unit order.
func (s *System) Snapshots() []climber.Snapshot {
	if s.workers > 1 {
		return concurrent.ParallelMap(s.units, s.workers, func(u Unit) climber.Snapshot {
			return u.Climber.Snapshot()
		})
	}
	out := make([]climber.Snapshot, len(s.units))
	for i, u := range s.units {
		out[i] = u.Climber.Snapshot()
	}
	return out
}
