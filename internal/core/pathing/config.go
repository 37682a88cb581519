package pathing

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid pathing configuration")

// Config tunes how a follower walks its waypoints.
type Config struct {
	// BaseSpeed is the walking speed in blocks per tick at a movement speed
	// of 1.
	BaseSpeed float64 `json:"base_speed" yaml:"base_speed"`
	// ReachDistance is how close the feet must get to a waypoint's target
	// point before the next waypoint is taken.
	ReachDistance float64 `json:"reach_distance" yaml:"reach_distance"`
	// StallTicks without progress towards a waypoint count as an
	// obstruction.
	StallTicks int `json:"stall_ticks" yaml:"stall_ticks"`
	// MinProgress is the distance a follower must close on its waypoint to
	// reset the stall counter.
	MinProgress float64 `json:"min_progress" yaml:"min_progress"`
}

func DefaultConfig() Config {
	return Config{
		BaseSpeed:     0.1,
		ReachDistance: 0.6,
		StallTicks:    40,
		MinProgress:   0.01,
	}
}

// Validate validates the pathing configuration
func (c Config) Validate() error {
	if c.BaseSpeed < 0 {
		return fmt.Errorf("%w: base speed must not be negative", ErrInvalidConfig)
	}
	if c.ReachDistance <= 0 {
		return fmt.Errorf("%w: reach distance must be positive", ErrInvalidConfig)
	}
	if c.StallTicks <= 0 {
		return fmt.Errorf("%w: stall ticks must be positive", ErrInvalidConfig)
	}
	if c.MinProgress < 0 {
		return fmt.Errorf("%w: min progress must not be negative", ErrInvalidConfig)
	}
	return nil
}
