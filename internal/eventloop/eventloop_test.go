package eventloop

import (
	"testing"
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestDispatchCallsHandlersInRegistrationOrder(t *testing.T) {
	loop := NewEventLoop()

	var calls []string

	loop.Subscribe(func(event types.Event) {
		calls = append(calls, "first")
	})
	loop.Subscribe(func(event types.Event) {
		calls = append(calls, "second")
	})
	loop.Subscribe(func(event types.Event) {
		calls = append(calls, "third")
	})

	loop.Dispatch(types.Event{Time: time.Now()})

	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestRunDispatchesEveryEventInOrder(t *testing.T) {
	loop := NewEventLoop()

	var seen []int

	loop.Subscribe(func(event types.Event) {
		seen = append(seen, event.Payload.(int))
	})

	events := []types.Event{
		{Time: time.Now(), Payload: 1},
		{Time: time.Now(), Payload: 2},
		{Time: time.Now(), Payload: 3},
	}
	loop.Run(events)

	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestDispatchWithNoHandlers(t *testing.T) {
	loop := NewEventLoop()

	// Must not panic
	loop.Dispatch(types.Event{Time: time.Now()})
}

func TestEveryHandlerSeesEveryEvent(t *testing.T) {
	loop := NewEventLoop()

	countA, countB := 0, 0
	loop.Subscribe(func(event types.Event) { countA++ })
	loop.Subscribe(func(event types.Event) { countB++ })

	loop.Run(make([]types.Event, 5))

	assert.Equal(t, 5, countA)
	assert.Equal(t, 5, countB)
}
