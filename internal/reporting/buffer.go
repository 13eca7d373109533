package reporting

import (
	"sync"
	"time"

	"specrun/internal/events"
)

// BufferAction defines what to do when a buffer is full. Senders never
// block, so a stalled consumer cannot hold up the run.
type BufferAction int

const (
	BufferActionDrop BufferAction = iota
	BufferActionEvictOldest
)

// String makes BufferAction satisfy the fmt.Stringer interface
func (ba BufferAction) String() string {
	switch ba {
	case BufferActionDrop:
		return "Drop"
	case BufferActionEvictOldest:
		return "EvictOldest"
	default:
		return "Unknown"
	}
}

// BufferStrategy defines how to handle buffer overflow situations
type BufferStrategy interface {
	OnBufferFull(event events.Event) BufferAction
}

// SimpleBufferStrategy applies one action to every event
type SimpleBufferStrategy struct {
	Action BufferAction
}

// NewSimpleBufferStrategy creates a buffer strategy with a single action for all events
func NewSimpleBufferStrategy(action BufferAction) *SimpleBufferStrategy {
	return &SimpleBufferStrategy{Action: action}
}

// OnBufferFull returns the configured action for all events
func (s *SimpleBufferStrategy) OnBufferFull(event events.Event) BufferAction {
	return s.Action
}

// PriorityBufferStrategy picks the action by event type
type PriorityBufferStrategy struct {
	DefaultAction BufferAction
	PriorityRules map[events.EventType]BufferAction
}

// NewPriorityBufferStrategy creates a priority-based buffer strategy
func NewPriorityBufferStrategy(defaultAction BufferAction) *PriorityBufferStrategy {
	return &PriorityBufferStrategy{
		DefaultAction: defaultAction,
		PriorityRules: make(map[events.EventType]BufferAction),
	}
}

// DefaultBufferStrategy drops progress events under pressure but makes
// room for run and suite endings so a slow consumer still sees them.
func DefaultBufferStrategy() *PriorityBufferStrategy {
	p := NewPriorityBufferStrategy(BufferActionDrop)
	for _, t := range []events.EventType{
		events.EventTypeRunCompleted,
		events.EventTypeRunStopped,
		events.EventTypeRunAborted,
		events.EventTypeSuiteCompleted,
		events.EventTypeSuiteAborted,
	} {
		p.SetPriority(t, BufferActionEvictOldest)
	}
	return p
}

// SetPriority sets the action for a specific event type
func (p *PriorityBufferStrategy) SetPriority(t events.EventType, action BufferAction) {
	p.PriorityRules[t] = action
}

// OnBufferFull returns the action based on event type priority
func (p *PriorityBufferStrategy) OnBufferFull(event events.Event) BufferAction {
	if action, exists := p.PriorityRules[event.Type()]; exists {
		return action
	}
	return p.DefaultAction
}

// ChannelStats is a snapshot of a buffered channel's counters
type ChannelStats struct {
	EventsDropped    int64
	EventsEvicted    int64
	EventsSent       int64
	LastDropTime     time.Time
	LastEvictionTime time.Time
}

// BufferedChannel wraps a channel with configurable buffer overflow behavior
type BufferedChannel struct {
	ch       chan events.Event
	strategy BufferStrategy
	stats    ChannelStats
	closed   bool
	mu       sync.Mutex
}

// NewBufferedChannel creates a new buffered channel with the given strategy
func NewBufferedChannel(size int, strategy BufferStrategy) *BufferedChannel {
	if strategy == nil {
		strategy = DefaultBufferStrategy()
	}
	return &BufferedChannel{
		ch:       make(chan events.Event, size),
		strategy: strategy,
	}
}

// Send attempts to send an event using the configured buffer strategy.
// It reports whether the event was queued.
func (bc *BufferedChannel) Send(event events.Event) bool {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.closed {
		return false
	}

	select {
	case bc.ch <- event:
		bc.stats.EventsSent++
		return true
	default:
	}

	if bc.strategy.OnBufferFull(event) == BufferActionEvictOldest {
		select {
		case <-bc.ch:
			bc.stats.EventsEvicted++
			bc.stats.LastEvictionTime = time.Now()
		default:
		}
		select {
		case bc.ch <- event:
			bc.stats.EventsSent++
			return true
		default:
		}
	}
	bc.stats.EventsDropped++
	bc.stats.LastDropTime = time.Now()
	return false
}

// TryReceive attempts to receive an event without blocking
func (bc *BufferedChannel) TryReceive() (events.Event, bool) {
	select {
	case event, ok := <-bc.ch:
		return event, ok
	default:
		return nil, false
	}
}

// Stats returns the current channel counters
func (bc *BufferedChannel) Stats() ChannelStats {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.stats
}

// Close closes the underlying channel. Closing twice is a no-op.
func (bc *BufferedChannel) Close() {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if !bc.closed {
		bc.closed = true
		close(bc.ch)
	}
}

// Channel returns the receive side of the channel
func (bc *BufferedChannel) Channel() <-chan events.Event {
	return bc.ch
}
