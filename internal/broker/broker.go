// Package broker defines the broker adapter capability and its paper and
// live implementations. Strategy, risk, and engine code work identically
// whether fills are simulated or real.
package broker

import "github.com/QuantTradingOS/qtos-core/internal/types"

// Adapter is the broker abstraction. Same interface for paper and live
// execution.
//
// SubmitOrder must never return an error for an expected failure: all
// rejections (no price data, insufficient cash, insufficient position,
// trading disabled) are expressed via a REJECTED OrderStatus with a message.
// Unexpected transport/internal errors are likewise converted to a rejected
// status carrying the failure detail; an implementation must not let
// internal errors escape as anything else.
type Adapter interface {
	// SubmitOrder submits an order and returns its status (filled,
	// rejected, etc.). In paper mode the fill is simulated at the latest
	// market price; a live implementation sends it to the broker and
	// returns when acked/filled.
	SubmitOrder(order types.Order) types.OrderStatus
	// GetPortfolio returns the current portfolio snapshot (cash +
	// positions). The call is side-effect-free.
	GetPortfolio() types.PortfolioState
	// GetMarketData returns the latest pricing bars for the given symbols.
	// An empty result means "no price available", never zero price.
	GetMarketData(symbols []string) []types.MarketData
}

// OrderLogEntry pairs one submitted order with the status it resolved to.
// Every submission, success or rejection, lands in the adapter's order log
// for audit.
type OrderLogEntry struct {
	Order  types.Order
	Status types.OrderStatus
}
