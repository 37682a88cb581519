package bus

// EventBus is an in-process pub/sub bus for simulation events.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type() string, or to every
//   event with the Wildcard type.
// - Synchronous, ordered delivery: Publish calls handlers in the caller
//   goroutine in subscription order, so a tick's side effects stay
//   deterministic.
// - Error aggregation: handler errors are joined and returned from Publish.
//
// All methods are safe for concurrent use.
type EventBus interface {
	// Publish delivers the event to every active subscriber of event.Type()
	// and of Wildcard. Handler errors are joined.
	Publish(event Event) error
	// PublishWithFilters drops the event silently if any filter rejects it.
	PublishWithFilters(event Event, filters ...EventFilter) error
	// PublishBatch publishes events in order and aggregates errors across them.
	PublishBatch(events ...Event) error

	// Subscribe registers a handler for one event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the subscription. Nil is ignored.
	Unsubscribe(Subscription) error

	// GetMetrics returns a snapshot of the delivery counters.
	GetMetrics() EventBusMetrics
}

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

// Event is an immutable message transported by the bus.
//
// Fields:
// - Type: routing key used to select handlers.
// - Source: identifier of the publisher, usually a climber id.
// - Tick: simulation tick the event was raised on.
// - Data: payload for consumers.
type Event interface {
	Type() string
	Source() string
	Tick() uint64
	Data() any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
	// EventFilter decides whether an event is delivered at all.
	EventFilter func(event Event) bool
)

// Subscription is a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusMetrics counts deliveries since the bus was created.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
}
