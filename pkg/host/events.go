package host

import (
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"vhfix/pkg/viewport"
)

// EventTarget is a listener table dispatching synchronously. It is safe
// for concurrent use; listeners run without the lock held so they may
// register or remove listeners themselves.
type EventTarget struct {
	name      string
	mu        sync.Mutex
	listeners map[string][]*viewport.Listener
}

func newEventTarget(name string) *EventTarget {
	return &EventTarget{name: name, listeners: make(map[string][]*viewport.Listener)}
}

// AddEventListener registers l for event. Registering the same listener
// twice for one event has no effect, as in the DOM.
func (t *EventTarget) AddEventListener(event string, l *viewport.Listener) {
	if l == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if slices.Contains(t.listeners[event], l) {
		return
	}
	t.listeners[event] = append(t.listeners[event], l)
}

// RemoveEventListener unregisters l. Unknown listeners are ignored.
func (t *EventTarget) RemoveEventListener(event string, l *viewport.Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ls := t.listeners[event]
	if i := slices.Index(ls, l); i >= 0 {
		t.listeners[event] = slices.Delete(slices.Clone(ls), i, i+1)
	}
}

// ListenerCount returns how many listeners are registered for event.
func (t *EventTarget) ListenerCount(event string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners[event])
}

// TotalListeners returns the number of registrations across all events.
func (t *EventTarget) TotalListeners() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, ls := range t.listeners {
		n += len(ls)
	}
	return n
}

// DispatchEvent calls every listener registered for event in registration
// order.
func (t *EventTarget) DispatchEvent(event string) {
	t.mu.Lock()
	ls := slices.Clone(t.listeners[event])
	t.mu.Unlock()

	log.Debug("host: dispatch", "target", t.name, "event", event, "listeners", len(ls))
	ev := viewport.Event{Type: event}
	for _, l := range ls {
		if l.Handle != nil {
			l.Handle(ev)
		}
	}
}
