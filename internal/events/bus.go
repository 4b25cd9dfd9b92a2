// Package events provides a lightweight in-process event bus for scan
// lifecycle notifications.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a system event
type EventType string

const (
	ScanStarted        EventType = "scan_started"
	ScanCompleted      EventType = "scan_completed"
	ScanFailed         EventType = "scan_failed"
	OpportunityFlagged EventType = "opportunity_flagged"
)

// Event is a published event with its payload
type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      EventType              `json:"type"`
	Module    string                 `json:"module"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Bus fans events out to subscribers. Slow subscribers drop events
// rather than blocking publishers: scan progress must never stall on a
// stuck SSE connection.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
	log         zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[int]chan Event),
		log:         log.With().Str("component", "events").Logger(),
	}
}

// Emit publishes an event to all subscribers
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	if b == nil {
		return
	}

	event := Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Module:    module,
		Data:      data,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.log.Debug().Int("subscriber", id).Str("event", string(eventType)).Msg("Dropped event for slow subscriber")
		}
	}
}

// Subscribe registers a subscriber and returns its channel plus an
// unsubscribe function.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, 16)
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}

	return ch, unsubscribe
}
