package systems

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/zeusync/climber/internal/core/observability/log"
)

var (
	ErrDuplicateSystem = errors.New("system already registered")
	ErrNotInitialized  = errors.New("systems are not initialized")
)

type entry struct {
	system  System
	state   StateIdentity
	metrics Metrics
}

// Manager owns the registered systems and runs them once per tick in
// priority order. Systems of equal priority keep their registration order.
type Manager struct {
	mu          sync.Mutex
	entries     []*entry
	initialized bool
	logger      log.Log
}

func NewManager(logger log.Log) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{logger: logger.With(log.String("component", "systems"))}
}

// Register adds a system. Systems must be registered before InitializeAll.
func (m *Manager) Register(s System) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.system.Name() == s.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateSystem, s.Name())
		}
	}
	m.entries = append(m.entries, &entry{system: s})
	slices.SortStableFunc(m.entries, func(a, b *entry) int {
		return int(b.system.Priority()) - int(a.system.Priority())
	})
	return nil
}

// ExecutionOrder lists system names in the order Update runs them.
func (m *Manager) ExecutionOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.system.Name()
	}
	return names
}

// InitializeAll initializes every system in order and stops at the first
// failure.
func (m *Manager) InitializeAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if err := e.system.Initialize(ctx); err != nil {
			e.state = StateFailed
			return fmt.Errorf("initialize %s: %w", e.system.Name(), err)
		}
		e.state = StateRunning
		m.logger.Info("system initialized", log.String("system", e.system.Name()))
	}
	m.initialized = true
	return nil
}

// Update runs one tick. Every running system is updated even when an
// earlier one fails; the failures are joined.
func (m *Manager) Update(ctx context.Context, tick uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return ErrNotInitialized
	}

	var errs []error
	for _, e := range m.entries {
		if e.state != StateRunning {
			continue
		}
		start := time.Now()
		err := e.system.Update(ctx, tick)
		entities := 0
		if c, ok := e.system.(EntityCounter); ok {
			entities = c.Entities()
		}
		e.metrics.record(time.Since(start), entities, err)
		if err != nil {
			m.logger.Warn("system update failed",
				log.String("system", e.system.Name()),
				log.Uint64("tick", tick),
				log.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", e.system.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// ShutdownAll shuts systems down in reverse order.
func (m *Manager) ShutdownAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.state != StateRunning {
			continue
		}
		if err := e.system.Shutdown(ctx); err != nil {
			e.state = StateFailed
			errs = append(errs, fmt.Errorf("shutdown %s: %w", e.system.Name(), err))
			continue
		}
		e.state = StateShutdown
		m.logger.Info("system shut down", log.String("system", e.system.Name()))
	}
	m.initialized = false
	return errors.Join(errs...)
}

// Metrics returns the metrics of the named system.
func (m *Manager) Metrics(name string) (Metrics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.system.Name() == name {
			return e.metrics, true
		}
	}
	return Metrics{}, false
}

// State returns the lifecycle state of the named system.
func (m *Manager) State(name string) (StateIdentity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.system.Name() == name {
			return e.state, true
		}
	}
	return StateUninitialized, false
}
