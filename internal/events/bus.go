// Package events provides the typed in-process bus that keeps the otherwise
// independent state stores consistent. The composing application owns the
// bus and hands it to each store at construction; there are no ambient
// global event names.
package events

import "sync"

// Topic identifies a cross-store notification.
type Topic int

const (
	// UserChanged fires when a different user session begins. Stores clear
	// local state and re-fetch for the new session.
	UserChanged Topic = iota

	// UserCleared fires when the session ends. Stores reset to initial
	// empty state.
	UserCleared

	// GoalsChanged fires when the profile's macro targets change. Stores
	// invalidate goal-derived caches.
	GoalsChanged
)

// Handler reacts to a published topic. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func()

// Bus is a minimal publish/subscribe fan-out.
type Bus struct {
	mu   sync.Mutex
	subs map[Topic][]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]Handler)}
}

// Subscribe registers h for t and returns a function that removes the
// registration.
func (b *Bus) Subscribe(t Topic, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[t] = append(b.subs[t], h)
	idx := len(b.subs[t]) - 1

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.subs[t][idx] = nil
		})
	}
}

// Publish invokes every live handler subscribed to t, in subscription order.
func (b *Bus) Publish(t Topic) {
	b.mu.Lock()
	handlers := make([]Handler, len(b.subs[t]))
	copy(handlers, b.subs[t])
	b.mu.Unlock()

	for _, h := range handlers {
		if h != nil {
			h()
		}
	}
}
