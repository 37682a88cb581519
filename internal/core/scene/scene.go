// Package scene assembles a world, its climbers and the systems that tick
// them, and drives the tick loop.
package scene

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/zeusync/climber/internal/config"
	"github.com/zeusync/climber/internal/core/climber"
	"github.com/zeusync/climber/internal/core/events/bus"
	"github.com/zeusync/climber/internal/core/observability/log"
	"github.com/zeusync/climber/internal/core/pathing"
	"github.com/zeusync/climber/internal/core/systems"
	"github.com/zeusync/climber/internal/core/systems/locomotion"
	"github.com/zeusync/climber/internal/core/systems/physics"
	"github.com/zeusync/climber/internal/core/systems/recording"
	"github.com/zeusync/climber/internal/core/world"
)

// Scene is one independent simulation. It is driven by a single goroutine.
type Scene struct {
	name   string
	cfg    config.SimulationConfig
	logger log.Log

	world      *world.World
	events     bus.EventBus
	manager    *systems.Manager
	locomotion *locomotion.System
	recorder   *recording.System

	tick        uint64
	initialized bool

	mu     sync.Mutex
	counts map[string]uint64
}

// Summary describes a finished run.
type Summary struct {
	Name      string             `json:"name"`
	Ticks     uint64             `json:"ticks"`
	Digest    uint64             `json:"digest"`
	Elapsed   time.Duration      `json:"elapsed"`
	Events    map[string]uint64  `json:"events"`
	Snapshots []climber.Snapshot `json:"snapshots"`
}

// Build creates the world and climbers described by cfg. Sinks are attached
// to the recorder in the given order.
func Build(cfg config.Config, logger log.Log, events bus.EventBus, sinks ...recording.Sink) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.With(log.String("scene", cfg.Name))
	if events == nil {
		events = bus.New()
	}

	w, err := world.Build(cfg.World)
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}
	sweep := physics.NewSweep(w)

	units := make([]locomotion.Unit, 0, len(cfg.Climbers))
	for _, spawn := range cfg.Climbers {
		follower, err := pathing.NewFollower(cfg.Pathing, spawn.Waypoints,
			pathing.WithLoop(spawn.Loop),
			pathing.WithGravity(spawn.HasGravity()),
			pathing.WithLogger(logger.With(log.String("climber", spawn.Name))),
		)
		if err != nil {
			return nil, fmt.Errorf("climber %s: %w", spawn.Name, err)
		}
		c, err := climber.New(cfg.ClimberConfig(spawn), w, sweep, follower,
			climber.WithName(spawn.Name),
			climber.WithPosition(spawn.Position),
			climber.WithEventBus(events),
			climber.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("climber %s: %w", spawn.Name, err)
		}
		units = append(units, locomotion.Unit{Climber: c, Follower: follower})
	}

	s := &Scene{
		name:     cfg.Name,
		cfg:      cfg.Simulation,
		logger:   logger,
		world:    w,
		events:   events,
		manager:  systems.NewManager(logger),
		counts:   make(map[string]uint64),
	}
	s.locomotion = locomotion.New(units,
		locomotion.WithWorkers(cfg.Simulation.Workers),
		locomotion.WithLogger(logger),
	)
	s.recorder = recording.New(s.locomotion, cfg.Simulation.RecordInterval, sinks...)

	if err := s.manager.Register(s.locomotion); err != nil {
		return nil, err
	}
	if err := s.manager.Register(s.recorder); err != nil {
		return nil, err
	}
	if _, err := events.Subscribe(bus.Wildcard, s.count); err != nil {
		return nil, err
	}
	if _, err := events.Subscribe(climber.EventPathObstructed, s.logObstruction); err != nil {
		return nil, err
	}

	logger.Info("scene built", log.Int("blocks", w.Len()), log.Int("climbers", len(units)))
	return s, nil
}

func (s *Scene) Name() string                { return s.name }
func (s *Scene) World() *world.World         { return s.world }
func (s *Scene) Events() bus.EventBus        { return s.events }
func (s *Scene) Manager() *systems.Manager   { return s.manager }
func (s *Scene) Units() []locomotion.Unit    { return s.locomotion.Units() }
func (s *Scene) Tick() uint64                { return s.tick }
func (s *Scene) AddSink(sink recording.Sink) { s.recorder.AddSink(sink) }

// Counts returns how often each event type was published.
func (s *Scene) Counts() map[string]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.counts)
}

func (s *Scene) count(e bus.Event) error {
	s.mu.Lock()
	s.counts[e.Type()]++
	s.mu.Unlock()
	return nil
}

func (s *Scene) logObstruction(e bus.Event) error {
	fields := []log.Field{log.String("climber", e.Source()), log.Uint64("tick", e.Tick())}
	if face, ok := e.Data().(interface{ String() string }); ok {
		fields = append(fields, log.String("face", face.String()))
	}
	s.logger.Info("path obstructed", fields...)
	return nil
}

// Initialize starts the systems. Step calls it when needed.
func (s *Scene) Initialize(ctx context.Context) error {
	if s.initialized {
		return nil
	}
	if err := s.manager.InitializeAll(ctx); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// Step advances the scene by one tick.
func (s *Scene) Step(ctx context.Context) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	s.tick++
	return s.manager.Update(ctx, s.tick)
}

// Run steps until the configured tick count is reached or ctx is done, then
// shuts the systems down. Cancellation is not an error.
func (s *Scene) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	if err := s.Initialize(ctx); err != nil {
		return Summary{}, err
	}

	var ticker *time.Ticker
	if d := s.cfg.TickDuration(); d > 0 {
		ticker = time.NewTicker(d)
		defer ticker.Stop()
	}

	var runErr error
loop:
	for s.cfg.Ticks == 0 || s.tick < s.cfg.Ticks {
		if ticker != nil {
			select {
			case <-ctx.Done():
				break loop
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			break
		}
		if err := s.Step(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			runErr = fmt.Errorf("tick %d: %w", s.tick, err)
			break
		}
	}

	shutdownErr := s.manager.ShutdownAll(context.WithoutCancel(ctx))
	s.initialized = false

	for _, name := range s.manager.ExecutionOrder() {
		if m, ok := s.manager.Metrics(name); ok {
			s.logger.Debug("system metrics",
				log.String("system", name),
				log.Uint64("updates", m.ExecutionCount),
				log.Uint64("errors", m.ErrorCount),
				log.Duration("avg", m.AverageExecutionTime),
				log.Duration("max", m.MaxExecutionTime),
			)
		}
	}

	summary := s.Summary()
	summary.Elapsed = time.Since(start)
	s.logger.Info("scene finished",
		log.Uint64("ticks", summary.Ticks),
		log.Uint64("digest", summary.Digest),
		log.Duration("elapsed", summary.Elapsed),
	)
	return summary, errors.Join(runErr, shutdownErr)
}

// Summary describes the scene at its current tick.
func (s *Scene) Summary() Summary {
	snaps := s.locomotion.Snapshots()
	return Summary{
		Name:      s.name,
		Ticks:     s.tick,
		Digest:    climber.CombinedDigest(snaps),
		Events:    s.Counts(),
		Snapshots: snaps,
	}
}
