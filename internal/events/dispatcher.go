package events

import (
	"context"
	"errors"
	"sync"
)

// EventHandler reacts to one order event. A returned error does not stop other handlers.
type EventHandler func(context.Context, Event) error

// Dispatcher fans order events out to the handlers subscribed to their type.
type Dispatcher interface {
	// Publish runs every handler for the event type in subscription order and
	// returns their failures joined, or nil.
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// syncDispatcher runs handlers on the publishing goroutine, so a mutation's side effects
// are done when Publish returns.
type syncDispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns an in-process dispatcher with no subscribers.
func NewInMemoryDispatcher() Dispatcher {
	return &syncDispatcher{handlers: make(map[EventType][]EventHandler)}
}

func (d *syncDispatcher) Publish(ctx context.Context, event Event) error {
	var failures []error
	for _, handle := range d.subscribers(event.Type) {
		if err := handle(ctx, event); err != nil {
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}

func (d *syncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
	d.mu.Unlock()
}

// subscribers copies the handler list so handlers may subscribe while being run.
func (d *syncDispatcher) subscribers(eventType EventType) []EventHandler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]EventHandler(nil), d.handlers[eventType]...)
}
