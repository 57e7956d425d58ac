package strategy

import "github.com/QuantTradingOS/qtos-core/internal/types"

// Strategy interface defines methods that any trading strategy must implement.
// A strategy may hold internal state (e.g. "have I already fired") but must
// never mutate the portfolio snapshot it is given; the engine is responsible
// for passing events and collecting signals.
type Strategy interface {
	// OnEvent reacts to one event with a read-only portfolio snapshot and
	// returns zero or more signals. Empty is valid and common.
	OnEvent(event types.Event, portfolio *types.Portfolio) []types.Signal
	// Name returns the name of the strategy
	Name() string
}
