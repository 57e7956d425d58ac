// Package engine orchestrates the strategy -> advisor -> risk -> validator
// -> safety gate -> broker pipeline for paper and live execution.
package engine

import (
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/moznion/go-optional"
)

// Advisor modifies signals before the risk check. Advisors run in
// registration order, each seeing the output of the previous one; they may
// add, remove, or rewrite signals.
type Advisor func(signals []types.Signal, event types.Event, portfolio *types.Portfolio) []types.Signal

// Validator modifies or rejects an order that has passed the risk check.
// Returning None rejects the order and short-circuits remaining validators.
type Validator func(order types.Order, portfolio *types.Portfolio) optional.Option[types.Order]

// Observer is called once per fill, in registration order, after the
// portfolio has been updated. There is no rollback path, so observers must
// not panic under normal conditions.
type Observer func(trade types.Trade, portfolio *types.Portfolio)

// Rejection reason codes recorded in the rejected order log. Broker-level
// rejections use the broker's message instead.
const (
	ReasonRiskRejected        = "risk_rejected"
	ReasonValidatorRejected   = "validator_rejected"
	ReasonKillSwitch          = "kill_switch"
	ReasonMaxPositionPerTrade = "max_position_per_trade"
	ReasonDailyPnLLimit       = "daily_pnl_limit"
	ReasonBrokerRejected      = "broker_rejected"
)

// RejectedOrder is one audit entry for a rejected or blocked submission.
// Order is set when rejection happened past the risk check; otherwise the
// originating signal is set. Entries are appended by the engine and never
// removed during a run.
type RejectedOrder struct {
	Reason string
	Time   time.Time
	Order  optional.Option[types.Order]
	Signal optional.Option[types.Signal]
}

// NewSignalRejection records a signal rejected before an order existed.
func NewSignalRejection(reason string, ts time.Time, signal types.Signal) RejectedOrder {
	return RejectedOrder{
		Reason: reason,
		Time:   ts,
		Order:  optional.None[types.Order](),
		Signal: optional.Some(signal),
	}
}

// NewOrderRejection records an order rejected past the risk check.
func NewOrderRejection(reason string, ts time.Time, order types.Order) RejectedOrder {
	return RejectedOrder{
		Reason: reason,
		Time:   ts,
		Order:  optional.Some(order),
		Signal: optional.None[types.Signal](),
	}
}
