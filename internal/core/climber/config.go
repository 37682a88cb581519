package climber

import (
	"fmt"

	"github.com/zeusync/climber/internal/core/smoothing"
)

// Config tunes one kind of climbing creature.
type Config struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	// InclusionRange grows the box around the creature's centre that is
	// searched for geometry each tick.
	InclusionRange float64          `json:"inclusion_range" yaml:"inclusion_range"`
	Smoothing      smoothing.Params `json:"smoothing" yaml:"smoothing"`
	MovementSpeed  float64          `json:"movement_speed" yaml:"movement_speed"`
}

// DefaultConfig is the stock 0.85 block creature.
func DefaultConfig() Config {
	return Config{
		Width:          0.85,
		Height:         0.85,
		InclusionRange: 2.0,
		Smoothing:      smoothing.DefaultParams(),
		MovementSpeed:  1.0,
	}
}

// Validate validates the climber configuration
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size must be positive, got %gx%g", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.InclusionRange < 0 {
		return fmt.Errorf("%w: inclusion range must not be negative", ErrInvalidConfig)
	}
	s := c.Smoothing
	if s.SmoothingRadius <= 0 {
		return fmt.Errorf("%w: smoothing radius must be positive", ErrInvalidConfig)
	}
	if s.MaxWeightDistance <= 0 {
		return fmt.Errorf("%w: max weight distance must be positive", ErrInvalidConfig)
	}
	if s.MinWeight < 0 || s.MinWeight >= 1 {
		return fmt.Errorf("%w: min weight must be in [0, 1)", ErrInvalidConfig)
	}
	if s.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations must not be negative", ErrInvalidConfig)
	}
	if s.StepSize <= 0 {
		return fmt.Errorf("%w: step size must be positive", ErrInvalidConfig)
	}
	if c.MovementSpeed < 0 {
		return fmt.Errorf("%w: movement speed must not be negative", ErrInvalidConfig)
	}
	return nil
}
