// Package config loads scene files: the world, the climbers living in it and
// how the simulation is run and observed.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/climber/internal/core/climber"
	"github.com/zeusync/climber/internal/core/observability/log"
	"github.com/zeusync/climber/internal/core/pathing"
	"github.com/zeusync/climber/internal/core/world"
	"github.com/zeusync/climber/internal/server"
)

var ErrInvalidConfig = errors.New("invalid scene configuration")

// MemoryTrace keeps the trace in memory instead of on disk.
const MemoryTrace = ":memory:"

type Config struct {
	Name       string           `json:"name" yaml:"name"`
	Log        log.Config       `json:"log" yaml:"log"`
	Climber    climber.Config   `json:"climber" yaml:"climber"`
	World      world.Config     `json:"world" yaml:"world"`
	Climbers   []SpawnConfig    `json:"climbers" yaml:"climbers"`
	Pathing    pathing.Config   `json:"pathing" yaml:"pathing"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Trace      TraceConfig      `json:"trace" yaml:"trace"`
	Feed       FeedConfig       `json:"feed" yaml:"feed"`
}

// SpawnConfig places one climber.
type SpawnConfig struct {
	Name     string     `json:"name" yaml:"name"`
	Position mgl64.Vec3 `json:"position" yaml:"position"`
	// Gravity defaults to true when omitted.
	Gravity   *bool      `json:"gravity,omitempty" yaml:"gravity,omitempty"`
	Waypoints []cube.Pos `json:"waypoints,omitempty" yaml:"waypoints,omitempty"`
	Loop      bool       `json:"loop,omitempty" yaml:"loop,omitempty"`
	// MovementSpeed overrides climber.movement_speed when positive.
	MovementSpeed float64 `json:"movement_speed,omitempty" yaml:"movement_speed,omitempty"`
}

// HasGravity resolves the optional gravity flag.
func (s SpawnConfig) HasGravity() bool {
	return s.Gravity == nil || *s.Gravity
}

type SimulationConfig struct {
	// Ticks to run. Zero runs until the context is cancelled.
	Ticks uint64 `json:"ticks" yaml:"ticks"`
	// TickRate in ticks per second. Zero runs as fast as possible.
	TickRate int `json:"tick_rate" yaml:"tick_rate"`
	Workers  int `json:"workers" yaml:"workers"`
	// RecordInterval records every n-th tick.
	RecordInterval uint64 `json:"record_interval" yaml:"record_interval"`
}

// TickDuration is the wall-clock length of a tick, zero when unpaced.
func (s SimulationConfig) TickDuration() time.Duration {
	if s.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(s.TickRate)
}

// TraceConfig selects the leveldb trace. An empty path disables it.
type TraceConfig struct {
	Path string `json:"path" yaml:"path"`
}

func (t TraceConfig) Enabled() bool { return t.Path != "" }

type FeedConfig struct {
	Enabled       bool `json:"enabled" yaml:"enabled"`
	server.Config `yaml:",inline"`
}

// Defaults is a single spider walking across the default world and up its
// wall.
func Defaults() Config {
	return Config{
		Name:    "default",
		Log:     log.DefaultConfig(),
		Climber: climber.DefaultConfig(),
		World:   world.DefaultConfig(),
		Climbers: []SpawnConfig{{
			Name:      "spider",
			Position:  mgl64.Vec3{0.5, 0, 0.5},
			Waypoints: []cube.Pos{{3, 0, 0}, {3, 3, 0}, {0, 0, 0}},
			Loop:      true,
		}},
		Pathing: pathing.DefaultConfig(),
		Simulation: SimulationConfig{
			Ticks:          400,
			TickRate:       20,
			Workers:        1,
			RecordInterval: 1,
		},
		Feed: FeedConfig{Config: server.DefaultConfig()},
	}
}

// Load reads YAML over Defaults and validates the result. Unknown keys are
// rejected. An empty document yields the defaults.
func Load(r io.Reader) (Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile loads the YAML file at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Load(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section. Section errors keep their own sentinels.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: scene has no name", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Climber.Validate(); err != nil {
		return err
	}
	if err := c.World.Validate(); err != nil {
		return err
	}
	if err := c.Pathing.Validate(); err != nil {
		return err
	}

	names := make(map[string]struct{}, len(c.Climbers))
	for i, s := range c.Climbers {
		if s.Name == "" {
			return fmt.Errorf("%w: climber %d has no name", ErrInvalidConfig, i)
		}
		if _, ok := names[s.Name]; ok {
			return fmt.Errorf("%w: duplicate climber %q", ErrInvalidConfig, s.Name)
		}
		names[s.Name] = struct{}{}
		if s.MovementSpeed < 0 {
			return fmt.Errorf("%w: climber %q has negative movement speed", ErrInvalidConfig, s.Name)
		}
	}

	if c.Simulation.TickRate < 0 {
		return fmt.Errorf("%w: negative tick rate", ErrInvalidConfig)
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("%w: negative worker count", ErrInvalidConfig)
	}

	if c.Feed.Enabled {
		if err := c.Feed.Config.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ClimberConfig returns the climber settings for spawn s.
func (c Config) ClimberConfig(s SpawnConfig) climber.Config {
	cfg := c.Climber
	if s.MovementSpeed > 0 {
		cfg.MovementSpeed = s.MovementSpeed
	}
	return cfg
}
