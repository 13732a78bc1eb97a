// Package events carries typed session events from the transport to whoever owns
// session state and navigation. Delivery is synchronous, in subscription order.
package events

import (
	"context"
	"sync"
)

// Event is implemented by every event published on a Bus
type Event interface {
	eventName() string
}

// Unauthorized is published when the backend answers 401
type Unauthorized struct {
	Status int
	Method string
	Path   string
}

func (Unauthorized) eventName() string { return "unauthorized" }

// SessionExpired is published when the stored token's expiration has passed
type SessionExpired struct{}

func (SessionExpired) eventName() string { return "session_expired" }

// Name returns a stable identifier for logging
func Name(e Event) string {
	return e.eventName()
}

// Handler reacts to a published event
type Handler func(ctx context.Context, e Event)

// Bus fans events out to subscribers
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for every future event
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers e to all subscribers before returning. A nil bus drops the event.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, e)
	}
}
