// Package eventloop provides single-threaded, deterministic event dispatch.
//
// The loop carries zero domain logic; it is pure fan-out. Backtest replay
// and live cycling share identical dispatch semantics because both go
// through the same loop.
package eventloop

import "github.com/QuantTradingOS/qtos-core/internal/types"

// Handler is called for every dispatched event.
type Handler func(event types.Event)

// EventLoop dispatches events to registered handlers in registration order,
// synchronously. No handler is skipped or reordered; no event is dropped.
type EventLoop struct {
	handlers []Handler
}

// NewEventLoop creates an empty event loop.
func NewEventLoop() *EventLoop {
	return &EventLoop{
		handlers: nil,
	}
}

// Subscribe registers a handler to be called for every event.
func (l *EventLoop) Subscribe(handler Handler) {
	l.handlers = append(l.handlers, handler)
}

// Dispatch processes one event through all handlers in order.
func (l *EventLoop) Dispatch(event types.Event) {
	for _, h := range l.handlers {
		h(event)
	}
}

// Run processes a finite ordered sequence of events by repeated Dispatch.
func (l *EventLoop) Run(events []types.Event) {
	for _, event := range events {
		l.Dispatch(event)
	}
}
