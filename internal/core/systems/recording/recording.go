// Package recording hands climber snapshots to sinks such as the trace
// store and the live feed.
package recording

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeusync/climber/internal/core/climber"
	"github.com/zeusync/climber/internal/core/systems"
)

var _ systems.System = (*System)(nil)

const Name = "recording"

// Source produces the snapshots of one tick.
type Source interface {
	Snapshots() []climber.Snapshot
}

// Sink consumes the snapshots of one tick.
type Sink interface {
	Record(ctx context.Context, tick uint64, snaps []climber.Snapshot) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, tick uint64, snaps []climber.Snapshot) error

func (f SinkFunc) Record(ctx context.Context, tick uint64, snaps []climber.Snapshot) error {
	return f(ctx, tick, snaps)
}

// System records every Interval-th tick. It runs after locomotion.
type System struct {
	source   Source
	sinks    []Sink
	interval uint64

	last   []climber.Snapshot
	digest uint64
}

// New creates a recorder. An interval of zero records every tick.
func New(source Source, interval uint64, sinks ...Sink) *System {
	if interval == 0 {
		interval = 1
	}
	return &System{source: source, sinks: sinks, interval: interval}
}

func (s *System) Name() string                     { return Name }
func (s *System) Priority() systems.Priority       { return systems.PriorityLow }
func (s *System) Initialize(context.Context) error { return nil }
func (s *System) Shutdown(context.Context) error   { return nil }
func (s *System) Entities() int                    { return len(s.last) }
func (s *System) AddSink(sink Sink)                { s.sinks = append(s.sinks, sink) }

// Last returns the snapshots of the latest tick and their combined digest.
func (s *System) Last() ([]climber.Snapshot, uint64) { return s.last, s.digest }

func (s *System) Update(ctx context.Context, tick uint64) error {
	s.last = s.source.Snapshots()
	s.digest = climber.CombinedDigest(s.last)
	if tick%s.interval != 0 {
		return nil
	}

	var errs []error
	for i, sink := range s.sinks {
		if err := sink.Record(ctx, tick, s.last); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
