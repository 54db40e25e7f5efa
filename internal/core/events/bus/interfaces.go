package bus

import "time"

// EventBus is an in-process pub/sub bus used by components to signal each
// other without holding direct references.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type() string.
// - Topics: every entity publishes on a topic named after itself; the default topic is "".
// - Synchronous delivery in subscription order, in the caller goroutine.
// - Error aggregation: handler errors are joined and returned from Publish.
//
// Handlers run inside frame hooks and must not block.
type EventBus interface {
	// Publish delivers the event to subscribers of event.Type() in the default topic.
	Publish(event Event) error
	// Subscribe registers a handler for an event type in the default topic.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is ignored.
	Unsubscribe(Subscription) error

	// SubscribeTopic registers a handler for eventType within a topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	// PublishToTopic publishes to a specific topic.
	PublishToTopic(topic string, event Event) error
	// DropTopic cancels every subscription of a topic.
	DropTopic(topic string) int

	// GetMetrics returns accumulated counters.
	GetMetrics() EventBusMetrics
	// GetTopics returns a snapshot of known topics.
	GetTopics() []TopicInfo
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event. Errors are aggregated.
	EventHandler func(event Event) error
)

// Subscription is a registered handler bound to an event type.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusMetrics is a minimal set of counters.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}

// TopicInfo provides a minimal snapshot about a topic.
type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}
