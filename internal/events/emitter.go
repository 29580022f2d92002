package events

import (
	"sync"

	"github.com/procurelink/rfq-service/internal/models"
)

// Subscriber receives every emitted domain event.
type Subscriber func(event models.Event)

// Emitter fans domain events out to in-process subscribers. Delivery is
// synchronous and in emission order; the engine does not track delivery
// success, that is the subscriber's concern.
type Emitter struct {
	mu          sync.RWMutex
	subscribers []Subscriber
}

// NewEmitter creates a new Emitter with no subscribers.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscribe registers a subscriber for all future events.
func (e *Emitter) Subscribe(sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, sub)
}

// Emit delivers one event to every subscriber.
func (e *Emitter) Emit(event models.Event) {
	e.mu.RLock()
	subs := make([]Subscriber, len(e.subscribers))
	copy(subs, e.subscribers)
	e.mu.RUnlock()

	for _, sub := range subs {
		sub(event)
	}
}
