package engine

import (
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/broker"
	"github.com/QuantTradingOS/qtos-core/internal/logger"
	"github.com/QuantTradingOS/qtos-core/internal/risk"
	"github.com/QuantTradingOS/qtos-core/internal/strategy"
	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/QuantTradingOS/qtos-core/pkg/errors"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
)

// ExecutionEngine runs a strategy in paper or live mode via a broker
// adapter. One RunOnce call is one full cycle: fetch market data, build the
// event, run the strategy, advisors, risk, validators, safety gates, submit
// surviving orders, and invoke observers on fills.
//
// Safety gates are evaluated per order in a fixed order: kill switch, max
// position per trade, daily PnL floor. Gate failures and all other
// rejections are appended to the rejected order log; a cycle never aborts
// because one signal's order was rejected.
//
// Oversized sells are NOT clamped here: the broker adapter rejects them.
// The backtest engine clamps instead; the asymmetry is deliberate and
// documented on both.
type ExecutionEngine struct {
	strategy    strategy.Strategy
	riskManager risk.Manager
	broker      broker.Adapter
	advisors    []Advisor
	validators  []Validator
	observers   []Observer

	dailyPnLLimit       optional.Option[float64]
	maxPositionPerTrade optional.Option[float64]
	killSwitch          bool

	// dailyBaseline is initialized lazily to the equity observed on the
	// first cycle. There is no automatic calendar-day rollover; callers
	// start a new accounting day with ResetDailyBaseline.
	dailyBaseline optional.Option[float64]
	lastPrices    map[string]float64
	rejectedLog   []RejectedOrder
	trades        []types.Trade

	log *logger.Logger
}

// NewExecutionEngine creates an execution engine. Strategy, risk manager,
// and broker are required; hooks and safety limits are added afterwards.
func NewExecutionEngine(strat strategy.Strategy, riskManager risk.Manager, adapter broker.Adapter, log *logger.Logger) (*ExecutionEngine, error) {
	if strat == nil || riskManager == nil || adapter == nil {
		return nil, errors.New(errors.ErrCodeEngineNotInitialized, "strategy, risk manager, and broker are required")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &ExecutionEngine{
		strategy:            strat,
		riskManager:         riskManager,
		broker:              adapter,
		advisors:            nil,
		validators:          nil,
		observers:           nil,
		dailyPnLLimit:       optional.None[float64](),
		maxPositionPerTrade: optional.None[float64](),
		killSwitch:          false,
		dailyBaseline:       optional.None[float64](),
		lastPrices:          make(map[string]float64),
		rejectedLog:         nil,
		trades:              nil,
		log:                 log,
	}, nil
}

// AddAdvisor registers a signal advisor. Advisors run in registration order.
func (e *ExecutionEngine) AddAdvisor(advisor Advisor) {
	e.advisors = append(e.advisors, advisor)
}

// AddValidator registers an order validator. Validators run in registration order.
func (e *ExecutionEngine) AddValidator(validator Validator) {
	e.validators = append(e.validators, validator)
}

// AddObserver registers a post-fill observer. Observers run in registration order.
func (e *ExecutionEngine) AddObserver(observer Observer) {
	e.observers = append(e.observers, observer)
}

// SetDailyPnLLimit sets the loss floor: orders are blocked once equity falls
// that far below the daily baseline.
func (e *ExecutionEngine) SetDailyPnLLimit(limit float64) {
	e.dailyPnLLimit = optional.Some(limit)
}

// SetMaxPositionPerTrade sets a per-order quantity cap. Quantity above the
// cap is rejected outright, not clipped.
func (e *ExecutionEngine) SetMaxPositionPerTrade(maxQuantity float64) {
	e.maxPositionPerTrade = optional.Some(maxQuantity)
}

// SetKillSwitch is the emergency stop: when on, all orders are blocked.
// Takes effect on the next cycle or order, not retroactively.
func (e *ExecutionEngine) SetKillSwitch(on bool) {
	e.killSwitch = on
	e.log.Warn("kill switch changed", zap.Bool("active", on))
}

// RejectedLog returns the log of rejected and blocked orders.
func (e *ExecutionEngine) RejectedLog() []RejectedOrder {
	log := make([]RejectedOrder, len(e.rejectedLog))
	copy(log, e.rejectedLog)

	return log
}

// Trades returns the fills recorded so far.
func (e *ExecutionEngine) Trades() []types.Trade {
	trades := make([]types.Trade, len(e.trades))
	copy(trades, e.trades)

	return trades
}

// RunOnce runs one execution cycle for the given symbols. A zero eventTime
// means "now". Call this from a caller-owned scheduler or loop; the cycle
// is synchronous and atomic from the orchestrator's point of view.
func (e *ExecutionEngine) RunOnce(symbols []string, eventTime time.Time) error {
	if eventTime.IsZero() {
		eventTime = time.Now()
	}

	state := e.broker.GetPortfolio()
	prices := e.pricesFor(symbols)

	for symbol, price := range prices {
		e.lastPrices[symbol] = price
	}

	portfolio := state.ToPortfolio()
	equity := e.equityOf(state)

	if e.dailyBaseline.IsNone() {
		e.dailyBaseline = optional.Some(equity)
	}

	if e.killSwitch {
		e.log.Warn("execution blocked: kill switch is on")

		return nil
	}

	// Event payload is symbol -> close, 0 for symbols with no price. The
	// price table above is what distinguishes "no price" from zero.
	payload := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		payload[symbol] = prices[symbol]
	}

	event := types.Event{Time: eventTime, Payload: payload}

	signals := e.strategy.OnEvent(event, portfolio)
	for _, advisor := range e.advisors {
		signals = advisor(signals, event, portfolio)
	}

	for _, signal := range signals {
		e.processSignal(signal, portfolio, equity, eventTime)
	}

	return nil
}

// processSignal takes one signal through risk, validators, safety gates,
// and submission. Rejection at any stage is logged and ends this signal's
// pipeline without affecting the others.
func (e *ExecutionEngine) processSignal(signal types.Signal, portfolio *types.Portfolio, equity float64, ts time.Time) {
	orderOpt := e.riskManager.CheckSignal(signal, portfolio)
	if orderOpt.IsNone() {
		e.rejectedLog = append(e.rejectedLog, NewSignalRejection(ReasonRiskRejected, ts, signal))

		return
	}

	order := orderOpt.Unwrap()

	for _, validator := range e.validators {
		next := validator(order, portfolio)
		if next.IsNone() {
			e.rejectedLog = append(e.rejectedLog, NewOrderRejection(ReasonValidatorRejected, ts, order))

			return
		}

		order = next.Unwrap()
	}

	if e.killSwitch {
		e.rejectedLog = append(e.rejectedLog, NewOrderRejection(ReasonKillSwitch, ts, order))

		return
	}

	if e.maxPositionPerTrade.IsSome() && order.Quantity > e.maxPositionPerTrade.Unwrap() {
		e.rejectedLog = append(e.rejectedLog, NewOrderRejection(ReasonMaxPositionPerTrade, ts, order))
		e.log.Info("order blocked: quantity above per-trade cap",
			zap.Float64("quantity", order.Quantity),
			zap.Float64("max_position_per_trade", e.maxPositionPerTrade.Unwrap()),
		)

		return
	}

	if e.dailyPnLLimit.IsSome() && equity-e.dailyBaseline.Unwrap() <= -e.dailyPnLLimit.Unwrap() {
		e.rejectedLog = append(e.rejectedLog, NewOrderRejection(ReasonDailyPnLLimit, ts, order))
		e.log.Warn("order blocked: daily PnL limit reached",
			zap.Float64("equity", equity),
			zap.Float64("baseline", e.dailyBaseline.Unwrap()),
		)

		return
	}

	status := e.broker.SubmitOrder(order)

	if status.Status == types.OrderStatusRejected {
		reason := status.Message.TakeOr(ReasonBrokerRejected)
		e.rejectedLog = append(e.rejectedLog, NewOrderRejection(reason, ts, order))
		e.log.Info("order rejected by broker", zap.String("reason", reason))

		return
	}

	if status.Status == types.OrderStatusFilled && status.FillPrice.IsSome() {
		quantity := status.FilledQuantity
		if quantity == 0 {
			quantity = order.Quantity
		}

		fillTime := status.Time
		if fillTime.IsZero() {
			fillTime = ts
		}

		trade := types.Trade{
			Symbol:   order.Symbol,
			Side:     order.Side,
			Quantity: quantity,
			Price:    status.FillPrice.Unwrap(),
			Time:     fillTime,
			OrderID:  status.OrderID,
		}
		e.trades = append(e.trades, trade)

		// Observers see the post-fill state, re-fetched from the broker.
		after := e.broker.GetPortfolio().ToPortfolio()
		for _, observer := range e.observers {
			observer(trade, after)
		}
	}
}

// ResetDailyBaseline resets the daily start equity to the current equity,
// e.g. at the start of a new accounting day.
func (e *ExecutionEngine) ResetDailyBaseline() {
	state := e.broker.GetPortfolio()

	symbols := make([]string, 0, len(state.Positions))
	for symbol := range state.Positions {
		symbols = append(symbols, symbol)
	}

	for symbol, price := range e.pricesFor(symbols) {
		e.lastPrices[symbol] = price
	}

	e.dailyBaseline = optional.Some(e.equityOf(state))
}

// pricesFor fetches the latest close per symbol from the broker. Symbols
// with no data are absent from the map, never zero.
func (e *ExecutionEngine) pricesFor(symbols []string) map[string]float64 {
	rows := e.broker.GetMarketData(symbols)
	prices := make(map[string]float64, len(symbols))

	for _, row := range rows {
		prices[row.Symbol] = row.Close
	}

	return prices
}

// equityOf marks the portfolio to market at the last known prices.
func (e *ExecutionEngine) equityOf(state types.PortfolioState) float64 {
	total := state.Cash
	for symbol, quantity := range state.Positions {
		total += quantity * e.lastPrices[symbol]
	}

	return total
}
