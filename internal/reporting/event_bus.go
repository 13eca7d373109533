package reporting

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"specrun/internal/events"
	"specrun/pkg/logging"
)

// EventHandler is a function that processes events
type EventHandler func(events.Event)

// EventFilter is a function that determines if an event should be processed
type EventFilter func(events.Event) bool

// EventSubscription represents a subscription to events
type EventSubscription struct {
	ID      string
	Filter  EventFilter
	Handler EventHandler
	buffer  *BufferedChannel
	closed  bool
	mu      sync.RWMutex
}

// Channel returns the delivery channel of a channel subscription, or nil
// for handler subscriptions.
func (s *EventSubscription) Channel() <-chan events.Event {
	if s.buffer == nil {
		return nil
	}
	return s.buffer.Channel()
}

// Stats returns the buffer counters of a channel subscription.
func (s *EventSubscription) Stats() ChannelStats {
	if s.buffer == nil {
		return ChannelStats{}
	}
	return s.buffer.Stats()
}

// Close closes the subscription
func (s *EventSubscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		if s.buffer != nil {
			s.buffer.Close()
		}
		s.closed = true
	}
}

// IsClosed returns whether the subscription is closed
func (s *EventSubscription) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// EventBus provides publish/subscribe fan-out of run events. It is a
// Reporter, so a run can publish into it through a Sink.
type EventBus interface {
	Reporter

	// Publish publishes an event to all subscribers
	Publish(event events.Event)

	// Subscribe creates a subscription with a handler function. Handlers
	// are called synchronously, in subscription order.
	Subscribe(filter EventFilter, handler EventHandler) *EventSubscription

	// SubscribeChannel creates a subscription with a buffered channel
	SubscribeChannel(filter EventFilter, bufferSize int, strategy BufferStrategy) *EventSubscription

	// Unsubscribe removes a subscription
	Unsubscribe(subscription *EventSubscription)

	// GetMetrics returns event bus metrics
	GetMetrics() EventBusMetrics

	// Close closes the event bus and all subscriptions
	Close()
}

// EventBusMetrics tracks event bus activity
type EventBusMetrics struct {
	TotalSubscriptions  int
	ActiveSubscriptions int
	EventsPublished     int64
	EventsDelivered     int64
	EventsDropped       int64
	HandlerPanics       int64
	LastEventTime       time.Time
	EventsByType        map[events.EventType]int64
}

// DefaultEventBus is the default implementation of EventBus
type DefaultEventBus struct {
	subscriptions []*EventSubscription
	metrics       EventBusMetrics
	mu            sync.RWMutex
	closed        bool
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &DefaultEventBus{
		metrics: EventBusMetrics{
			EventsByType: make(map[events.EventType]int64),
		},
	}
}

// Apply implements Reporter
func (eb *DefaultEventBus) Apply(event events.Event) {
	eb.Publish(event)
}

// Publish publishes an event to all subscribers
func (eb *DefaultEventBus) Publish(event events.Event) {
	eb.mu.RLock()
	if eb.closed {
		eb.mu.RUnlock()
		return
	}
	subscriptions := make([]*EventSubscription, len(eb.subscriptions))
	copy(subscriptions, eb.subscriptions)
	eb.mu.RUnlock()

	var delivered, dropped, panics int64
	for _, subscription := range subscriptions {
		if subscription.IsClosed() {
			eb.remove(subscription)
			continue
		}
		if subscription.Filter != nil && !subscription.Filter(event) {
			continue
		}

		if subscription.Handler != nil {
			if err := deliver(subscription.Handler, event); err != nil {
				panics++
				logging.Error("EventBus", err, "Handler of subscription %s failed on %s", subscription.ID, event.Type())
				continue
			}
			delivered++
		}
		if subscription.buffer != nil {
			if subscription.buffer.Send(event) {
				delivered++
			} else {
				dropped++
			}
		}
	}

	eb.mu.Lock()
	eb.metrics.EventsPublished++
	eb.metrics.EventsByType[event.Type()]++
	eb.metrics.LastEventTime = event.Timestamp()
	eb.metrics.EventsDelivered += delivered
	eb.metrics.EventsDropped += dropped
	eb.metrics.HandlerPanics += panics
	eb.mu.Unlock()
}

func deliver(handler EventHandler, event events.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	handler(event)
	return nil
}

func (eb *DefaultEventBus) add(subscription *EventSubscription) *EventSubscription {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return nil
	}
	eb.subscriptions = append(eb.subscriptions, subscription)
	eb.metrics.TotalSubscriptions++
	eb.metrics.ActiveSubscriptions++
	return subscription
}

func (eb *DefaultEventBus) remove(subscription *EventSubscription) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i, s := range eb.subscriptions {
		if s == subscription {
			eb.subscriptions = append(eb.subscriptions[:i:i], eb.subscriptions[i+1:]...)
			eb.metrics.ActiveSubscriptions--
			return true
		}
	}
	return false
}

// Subscribe creates a subscription with a handler function
func (eb *DefaultEventBus) Subscribe(filter EventFilter, handler EventHandler) *EventSubscription {
	return eb.add(&EventSubscription{
		ID:      uuid.NewString() + "_sub",
		Filter:  filter,
		Handler: handler,
	})
}

// SubscribeChannel creates a subscription with a channel. A nil strategy
// uses DefaultBufferStrategy.
func (eb *DefaultEventBus) SubscribeChannel(filter EventFilter, bufferSize int, strategy BufferStrategy) *EventSubscription {
	return eb.add(&EventSubscription{
		ID:     uuid.NewString() + "_sub",
		Filter: filter,
		buffer: NewBufferedChannel(bufferSize, strategy),
	})
}

// Unsubscribe removes a subscription
func (eb *DefaultEventBus) Unsubscribe(subscription *EventSubscription) {
	if subscription == nil {
		return
	}
	eb.remove(subscription)
	subscription.Close()
}

// GetMetrics returns event bus metrics
func (eb *DefaultEventBus) GetMetrics() EventBusMetrics {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	metrics := eb.metrics
	metrics.EventsByType = make(map[events.EventType]int64, len(eb.metrics.EventsByType))
	for k, v := range eb.metrics.EventsByType {
		metrics.EventsByType[k] = v
	}
	return metrics
}

// Close closes the event bus and all subscriptions
func (eb *DefaultEventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.closed = true
	for _, subscription := range eb.subscriptions {
		subscription.Close()
	}
	eb.subscriptions = nil
	eb.metrics.ActiveSubscriptions = 0
}

// Common event filters

// FilterByType creates a filter that matches events of specific types
func FilterByType(eventTypes ...events.EventType) EventFilter {
	typeMap := make(map[events.EventType]bool)
	for _, t := range eventTypes {
		typeMap[t] = true
	}

	return func(event events.Event) bool {
		return typeMap[event.Type()]
	}
}

// FilterBySuite creates a filter that matches events of specific suites
func FilterBySuite(suites ...string) EventFilter {
	suiteMap := make(map[string]bool)
	for _, s := range suites {
		suiteMap[s] = true
	}

	return func(event events.Event) bool {
		return suiteMap[event.SuiteName()]
	}
}

// FilterBySeverity creates a filter that matches events with minimum severity
func FilterBySeverity(minSeverity events.EventSeverity) EventFilter {
	severityLevels := map[events.EventSeverity]int{
		events.SeverityDebug: 1,
		events.SeverityInfo:  2,
		events.SeverityWarn:  3,
		events.SeverityError: 4,
		events.SeverityFatal: 5,
	}

	minLevel := severityLevels[minSeverity]

	return func(event events.Event) bool {
		eventLevel, exists := severityLevels[event.Severity()]
		return exists && eventLevel >= minLevel
	}
}

// FilterTerminal matches the terminal events of tests and runs
func FilterTerminal() EventFilter {
	return func(event events.Event) bool {
		return events.IsTestTerminal(event.Type()) || events.IsRunTerminal(event.Type())
	}
}

// CombineFilters combines multiple filters with AND logic
func CombineFilters(filters ...EventFilter) EventFilter {
	return func(event events.Event) bool {
		for _, filter := range filters {
			if !filter(event) {
				return false
			}
		}
		return true
	}
}

// AnyFilter combines multiple filters with OR logic
func AnyFilter(filters ...EventFilter) EventFilter {
	return func(event events.Event) bool {
		for _, filter := range filters {
			if filter(event) {
				return true
			}
		}
		return false
	}
}
