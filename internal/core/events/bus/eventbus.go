package bus

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrNilHandler = errors.New("bus: nil handler")

// simpleEvent is a basic implementation of Event.
type simpleEvent struct {
	typeStr string
	source  string
	tick    uint64
	data    any
}

func (e simpleEvent) Type() string   { return e.typeStr }
func (e simpleEvent) Source() string { return e.source }
func (e simpleEvent) Tick() uint64   { return e.tick }
func (e simpleEvent) Data() any      { return e.data }

// NewEvent creates a simple Event implementation.
func NewEvent(typ, src string, tick uint64, data any) Event {
	return simpleEvent{typeStr: typ, source: src, tick: tick, data: data}
}

type subscription struct {
	id        string
	eventType string
	handler   EventHandler
	mu        sync.Mutex
	active    bool
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }

func (s *subscription) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) Cancel() error {
	s.mu.Lock()
	wasActive := s.active
	s.active = false
	s.mu.Unlock()
	if wasActive && s.cancel != nil {
		s.cancel()
	}
	return nil
}

type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: eventType -> subscriptions in registration order
	handlers map[string][]*subscription
	metrics  EventBusMetrics
}

// New creates a new EventBus instance.
func New() EventBus {
	return &inMemoryBus{handlers: make(map[string][]*subscription)}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver(event)
}

func (b *inMemoryBus) PublishWithFilters(event Event, filters ...EventFilter) error {
	for _, f := range filters {
		if !f(event) {
			b.mu.Lock()
			b.metrics.DroppedByFilters++
			b.mu.Unlock()
			return nil
		}
	}
	return b.Publish(event)
}

func (b *inMemoryBus) PublishBatch(events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &subscription{id: uuid.NewString(), eventType: eventType, handler: handler, active: true}
	s.cancel = func() { b.remove(s) }
	b.handlers[eventType] = append(b.handlers[eventType], s)
	b.metrics.SubscribersActive++
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[s.eventType]
	for i, candidate := range subs {
		if candidate == s {
			b.handlers[s.eventType] = append(subs[:i:i], subs[i+1:]...)
			b.metrics.SubscribersActive--
			return
		}
	}
}

func (b *inMemoryBus) deliver(event Event) error {
	etype := event.Type()

	b.mu.RLock()
	subs := make([]*subscription, 0, len(b.handlers[etype])+len(b.handlers[Wildcard]))
	subs = append(subs, b.handlers[etype]...)
	if etype != Wildcard {
		subs = append(subs, b.handlers[Wildcard]...)
	}
	b.mu.RUnlock()

	var (
		all       error
		delivered uint64
	)
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += delivered
	if all != nil {
		b.metrics.Errors++
	}
	b.mu.Unlock()
	return all
}
