// Package risk defines the order-approval capability that sits between
// strategy signals and broker submission.
package risk

import (
	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/moznion/go-optional"
)

// Manager approves, rejects, or modifies orders before the engine considers
// them for submission. Implementations define limits and rules; the engine
// enforces the interface.
type Manager interface {
	// CheckSignal translates a signal into an approved order, or rejects it
	// by returning None. At minimum an implementation assigns the order type
	// and echoes symbol, side, quantity and timestamp.
	CheckSignal(signal types.Signal, portfolio *types.Portfolio) optional.Option[types.Order]
	// CheckOrder re-checks an already-built order (pass-through use case,
	// e.g. when a validator re-submits). May return it unchanged, modified,
	// or None to reject.
	CheckOrder(order types.Order, portfolio *types.Portfolio) optional.Option[types.Order]
}

// PassThrough approves all signals as market orders. No size or exposure
// limits; it exists to let the pipeline be exercised without real risk
// logic. Production risk managers plug in position limits, exposure checks,
// etc., behind the same contract.
type PassThrough struct{}

// NewPassThrough creates a pass-through risk manager.
func NewPassThrough() *PassThrough {
	return &PassThrough{}
}

// CheckSignal approves the signal as a market order.
func (m *PassThrough) CheckSignal(signal types.Signal, portfolio *types.Portfolio) optional.Option[types.Order] {
	return optional.Some(types.Order{
		Symbol:     signal.Symbol,
		Side:       signal.Side,
		Quantity:   signal.Quantity,
		OrderType:  types.OrderTypeMarket,
		LimitPrice: optional.None[float64](),
		Time:       signal.Time,
	})
}

// CheckOrder returns the order unchanged.
func (m *PassThrough) CheckOrder(order types.Order, portfolio *types.Portfolio) optional.Option[types.Order] {
	return optional.Some(order)
}
