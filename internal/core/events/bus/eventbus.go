package bus

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// simpleEvent is the default Event implementation.
type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
}

func (e simpleEvent) Type() string         { return e.typeStr }
func (e simpleEvent) Source() string       { return e.source }
func (e simpleEvent) Timestamp() time.Time { return e.ts }
func (e simpleEvent) Data() any            { return e.data }

// NewEvent creates a simple Event implementation.
func NewEvent(typ, src string, data any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data}
}

type subscription struct {
	id        string
	topic     string
	eventType string
	handler   EventHandler
	active    bool
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) Topic() string     { return s.topic }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active }
func (s *subscription) Cancel() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// inMemoryBus keeps subscriptions per topic and event type in registration order.
type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: topic -> eventType -> subscriptions
	handlers map[string]map[string][]*subscription
	metrics  EventBusMetrics
}

// New creates a new EventBus instance.
func New() EventBus {
	return &inMemoryBus{
		handlers: make(map[string]map[string][]*subscription),
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver("", event)
}

func (b *inMemoryBus) PublishToTopic(topic string, event Event) error {
	return b.deliver(topic, event)
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	return b.SubscribeTopic("", eventType, handler)
}

func (b *inMemoryBus) SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if eventType == "" {
		return nil, ErrEmptyEventType
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[string][]*subscription)
	}
	s := &subscription{id: uuid.NewString(), topic: topic, eventType: eventType, handler: handler, active: true}
	s.cancel = func() { b.remove(s) }
	b.handlers[topic][eventType] = append(b.handlers[topic][eventType], s)
	b.metrics.SubscribersActive++
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) DropTopic(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := 0
	for _, subs := range b.handlers[topic] {
		for _, s := range subs {
			s.active = false
			dropped++
		}
	}
	delete(b.handlers, topic)
	b.metrics.SubscribersActive -= uint64(dropped)
	return dropped
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) GetTopics() []TopicInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]TopicInfo, 0, len(b.handlers))
	for name, types := range b.handlers {
		info := TopicInfo{Name: name, EventTypes: len(types)}
		for _, subs := range types {
			info.Subs += len(subs)
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (b *inMemoryBus) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !s.active {
		return
	}
	s.active = false
	b.metrics.SubscribersActive--

	types := b.handlers[s.topic]
	if types == nil {
		return
	}
	subs := types[s.eventType]
	for i, other := range subs {
		if other == s {
			types[s.eventType] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(types[s.eventType]) == 0 {
		delete(types, s.eventType)
	}
	if len(types) == 0 {
		delete(b.handlers, s.topic)
	}
}

func (b *inMemoryBus) deliver(topic string, event Event) error {
	if event == nil {
		return ErrNilEvent
	}

	b.mu.RLock()
	var subs []*subscription
	if types := b.handlers[topic]; types != nil {
		subs = append(subs, types[event.Type()]...)
	}
	b.mu.RUnlock()

	var all error
	for _, s := range subs {
		// a handler earlier in this delivery may have cancelled s
		if !s.active {
			continue
		}
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += uint64(len(subs))
	if all != nil {
		b.metrics.Errors++
	}
	b.mu.Unlock()
	return all
}
