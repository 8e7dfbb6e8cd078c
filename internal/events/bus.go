package events

import "sync"

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine, in subscription order.
type Handler func(e *Event)

type subscription struct {
	types   map[EventType]bool // nil means every type
	handler Handler
}

// Bus fans events out to subscribers. A nil *Bus drops everything, so
// components can be built without one.
type Bus struct {
	mu   sync.RWMutex
	subs []subscription
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for the given types, or for all types when none are given
func (b *Bus) Subscribe(handler Handler, types ...EventType) {
	if b == nil || handler == nil {
		return
	}
	sub := subscription{handler: handler}
	if len(types) > 0 {
		sub.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
}

// Publish delivers e to every matching subscriber
func (b *Bus) Publish(e *Event) {
	if b == nil || e == nil {
		return
	}

	b.mu.RLock()
	subs := append([]subscription(nil), b.subs...)
	b.mu.RUnlock()

	for _, s := range subs {
		if s.types == nil || s.types[e.Type] {
			s.handler(e)
		}
	}
}
