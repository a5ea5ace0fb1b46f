// Package event provides a small synchronous event dispatcher.
// Services fire domain events ("order.placed"); listeners such as the order
// feed subscribe at boot.
package event

import (
	"sync"
)

// Common event names.
const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

// Dispatcher holds listeners by event name. The zero value is not usable;
// call New.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New() *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (d *Dispatcher) Listen(event string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], handler)
}

// Fire dispatches an event synchronously to all registered listeners.
func (d *Dispatcher) Fire(event string, payload interface{}) {
	for _, h := range d.snapshot(event) {
		h(payload)
	}
}

// Flush removes all listeners.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = map[string][]Handler{}
}

func (d *Dispatcher) snapshot(event string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hs := make([]Handler, len(d.handlers[event]))
	copy(hs, d.handlers[event])
	return hs
}
