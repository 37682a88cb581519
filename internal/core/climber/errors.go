package climber

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid climber configuration")
	ErrNilWorld      = errors.New("climber requires a world")
	ErrNilIntegrator = errors.New("climber requires an integrator")
	ErrNilAgent      = errors.New("climber requires an agent")
)
