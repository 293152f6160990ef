package events

//go:generate mockgen -destination=mock/mock_publisher.go -package=mockevents -source=bus.go

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Publisher is what services depend on to announce lifecycle changes
type Publisher interface {
	Emit(event *Event) error
}

// EventListener processes events
type EventListener interface {
	HandleEvent(event *Event) error
	Priority() int
	ID() string
}

// Bus delivers events to listeners in priority order, lowest first
type Bus struct {
	listeners map[EventType][]EventListener
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewBus creates a new event bus
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		listeners: make(map[EventType][]EventListener),
		logger:    logger,
	}
}

// Subscribe adds a listener for specific event types
func (b *Bus) Subscribe(listener EventListener, types ...EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range types {
		b.listeners[t] = append(b.listeners[t], listener)
		sort.SliceStable(b.listeners[t], func(i, j int) bool {
			return b.listeners[t][i].Priority() < b.listeners[t][j].Priority()
		})
		b.logger.Debug("event listener subscribed", "listener", listener.ID(), "event", t, "priority", listener.Priority())
	}
}

// Unsubscribe removes a listener
func (b *Bus) Unsubscribe(eventType EventType, listenerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	listeners := b.listeners[eventType]
	for i, l := range listeners {
		if l.ID() != listenerID {
			continue
		}
		b.listeners[eventType] = append(listeners[:i:i], listeners[i+1:]...)
		return
	}
}

// Emit sends an event to every listener. All listeners run; their
// failures are joined into the returned error.
func (b *Bus) Emit(event *Event) error {
	b.mu.RLock()
	listeners := make([]EventListener, len(b.listeners[event.Type]))
	copy(listeners, b.listeners[event.Type])
	b.mu.RUnlock()

	var failed []error
	for _, listener := range listeners {
		if err := listener.HandleEvent(event); err != nil {
			failed = append(failed, fmt.Errorf("listener %s failed: %w", listener.ID(), err))
		}
	}

	return errors.Join(failed...)
}

// Clear removes all listeners
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = make(map[EventType][]EventListener)
}
