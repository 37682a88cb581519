// Package systems runs the per-tick simulation stages in a fixed order.
package systems

import (
	"context"
	"time"
)

// System is one stage of a simulation tick.
type System interface {
	// Identity

	Name() string
	Priority() Priority

	// Lifecycle

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error

	// Execution

	Update(ctx context.Context, tick uint64) error
}

// EntityCounter is implemented by systems that report how many entities an
// update touched.
type EntityCounter interface {
	Entities() int
}

// Priority defines execution order priority. Higher priorities run first.
type Priority uint16

// System priorities
const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// StateIdentity represents the current state of a system
type StateIdentity uint8

const (
	StateUninitialized StateIdentity = iota
	StateRunning
	StateShutdown
	StateFailed
)

func (s StateIdentity) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateShutdown:
		return "shutdown"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	MinExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
	EntitiesProcessed    uint64
}

func (m *Metrics) record(elapsed time.Duration, entities int, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += elapsed
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if elapsed > m.MaxExecutionTime {
		m.MaxExecutionTime = elapsed
	}
	if m.ExecutionCount == 1 || elapsed < m.MinExecutionTime {
		m.MinExecutionTime = elapsed
	}
	m.LastExecutionTime = time.Now()
	m.EntitiesProcessed += uint64(entities)
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}
