// Package backtest replays a historical bar series through the same
// strategy -> advisor -> risk -> validator -> fill -> observer pipeline the
// execution engine runs live, recording trades and an equity curve.
package backtest

import (
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/engine"
	"github.com/QuantTradingOS/qtos-core/internal/eventloop"
	"github.com/QuantTradingOS/qtos-core/internal/logger"
	"github.com/QuantTradingOS/qtos-core/internal/risk"
	"github.com/QuantTradingOS/qtos-core/internal/strategy"
	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/QuantTradingOS/qtos-core/pkg/errors"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// EquityPoint is one mark-to-market snapshot of portfolio value. The
// backtest appends exactly one point per bar.
type EquityPoint struct {
	Time  time.Time `csv:"time" yaml:"time"`
	Value float64   `csv:"value" yaml:"value"`
}

// Result is the outcome of one backtest run.
type Result struct {
	Portfolio   *types.Portfolio
	Trades      []types.Trade
	EquityCurve []EquityPoint
	RejectedLog []engine.RejectedOrder
}

// Engine orchestrates a backtest: build one event per OHLCV bar, replay
// them through the event loop, and fill surviving orders at the same bar's
// close price. No look-ahead to the next bar and no slippage model; that is
// an explicit simplification, not an oversight.
//
// Oversized sell orders are clamped to the available position size here
// (never rejected for size, merely reduced, and dropped if the clamped size
// is zero). The execution engine instead relies on the broker adapter to
// reject oversized sells; the asymmetry is deliberate and documented on
// both engines.
type Engine struct {
	strategy    strategy.Strategy
	riskManager risk.Manager
	portfolio   *types.Portfolio
	advisors    []engine.Advisor
	validators  []engine.Validator
	observers   []engine.Observer

	trades       []types.Trade
	equityCurve  []EquityPoint
	rejectedLog  []engine.RejectedOrder
	lastPrices   map[string]float64
	showProgress bool

	log *logger.Logger
}

// NewEngine creates a backtest engine around the given portfolio. The
// portfolio is exclusively owned by the engine for the duration of a run.
func NewEngine(strat strategy.Strategy, riskManager risk.Manager, portfolio *types.Portfolio, log *logger.Logger) (*Engine, error) {
	if strat == nil || riskManager == nil || portfolio == nil {
		return nil, errors.New(errors.ErrCodeEngineNotInitialized, "strategy, risk manager, and portfolio are required")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Engine{
		strategy:     strat,
		riskManager:  riskManager,
		portfolio:    portfolio,
		advisors:     nil,
		validators:   nil,
		observers:    nil,
		trades:       nil,
		equityCurve:  nil,
		rejectedLog:  nil,
		lastPrices:   make(map[string]float64),
		showProgress: false,
		log:          log,
	}, nil
}

// AddAdvisor registers a signal advisor. Advisors run in registration order.
func (e *Engine) AddAdvisor(advisor engine.Advisor) {
	e.advisors = append(e.advisors, advisor)
}

// AddValidator registers an order validator. Validators run in registration order.
func (e *Engine) AddValidator(validator engine.Validator) {
	e.validators = append(e.validators, validator)
}

// AddObserver registers a post-fill observer. Observers run in registration order.
func (e *Engine) AddObserver(observer engine.Observer) {
	e.observers = append(e.observers, observer)
}

// SetShowProgress toggles the terminal progress bar over bars.
func (e *Engine) SetShowProgress(show bool) {
	e.showProgress = show
}

// Run replays the bar series. Bars must be ordered ascending by time; a
// bar with an empty symbol inherits the given symbol.
func (e *Engine) Run(bars []types.MarketData, symbol string) (Result, error) {
	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Before(bars[i-1].Time) {
			return Result{}, errors.Newf(errors.ErrCodeDataNotChronologic, "bars out of order at index %d", i)
		}
	}

	e.trades = nil
	e.equityCurve = nil
	e.rejectedLog = nil
	e.lastPrices = make(map[string]float64)

	runID := uuid.NewString()
	e.log.Info("backtest started",
		zap.String("run_id", runID),
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
	)

	events := make([]types.Event, len(bars))

	for i, bar := range bars {
		if bar.Symbol == "" {
			bar.Symbol = symbol
		}

		events[i] = types.Event{Time: bar.Time, Payload: bar}
	}

	loop := eventloop.NewEventLoop()
	loop.Subscribe(e.handleEvent)

	if e.showProgress {
		bar := progressbar.Default(int64(len(events)))
		loop.Subscribe(func(event types.Event) {
			_ = bar.Add(1)
		})
	}

	loop.Run(events)

	e.log.Info("backtest finished",
		zap.String("run_id", runID),
		zap.Int("trades", len(e.trades)),
		zap.Int("rejections", len(e.rejectedLog)),
	)

	result := Result{
		Portfolio:   e.portfolio.Clone(),
		Trades:      make([]types.Trade, len(e.trades)),
		EquityCurve: make([]EquityPoint, len(e.equityCurve)),
		RejectedLog: make([]engine.RejectedOrder, len(e.rejectedLog)),
	}
	copy(result.Trades, e.trades)
	copy(result.EquityCurve, e.equityCurve)
	copy(result.RejectedLog, e.rejectedLog)

	return result, nil
}

// handleEvent processes one bar: strategy -> advisors -> risk -> validators
// -> fill -> observers, then appends the bar's equity point.
func (e *Engine) handleEvent(event types.Event) {
	bar, ok := event.Payload.(types.MarketData)
	if !ok {
		return
	}

	e.lastPrices[bar.Symbol] = bar.Close

	signals := e.strategy.OnEvent(event, e.portfolio)
	for _, advisor := range e.advisors {
		signals = advisor(signals, event, e.portfolio)
	}

	for _, signal := range signals {
		e.processSignal(signal, event)
	}

	e.equityCurve = append(e.equityCurve, EquityPoint{
		Time:  event.Time,
		Value: e.portfolioValue(),
	})
}

func (e *Engine) processSignal(signal types.Signal, event types.Event) {
	orderOpt := e.riskManager.CheckSignal(signal, e.portfolio)
	if orderOpt.IsNone() {
		e.rejectedLog = append(e.rejectedLog, engine.NewSignalRejection(engine.ReasonRiskRejected, event.Time, signal))

		return
	}

	order := orderOpt.Unwrap()

	for _, validator := range e.validators {
		next := validator(order, e.portfolio)
		if next.IsNone() {
			e.rejectedLog = append(e.rejectedLog, engine.NewOrderRejection(engine.ReasonValidatorRejected, event.Time, order))

			return
		}

		order = next.Unwrap()
	}

	// Fill at the current bar's close
	price := e.lastPrices[order.Symbol]
	if price <= 0 {
		e.log.Debug("order dropped: no price for symbol",
			zap.String("symbol", order.Symbol),
		)

		return
	}

	switch order.Side {
	case types.SideBuy:
		cost := order.Quantity * price
		if e.portfolio.Cash < cost {
			e.log.Debug("order dropped: insufficient cash",
				zap.Float64("cost", cost),
				zap.Float64("cash", e.portfolio.Cash),
			)

			return
		}

		e.portfolio.Cash -= cost
		e.portfolio.UpdatePosition(order.Symbol, order.Quantity)
	case types.SideSell:
		held := e.portfolio.Position(order.Symbol)
		if held < order.Quantity {
			// Clamp to what is actually held
			order = order.WithQuantity(held)
			if order.Quantity <= 0 {
				return
			}
		}

		e.portfolio.Cash += order.Quantity * price
		e.portfolio.UpdatePosition(order.Symbol, -order.Quantity)
	default:
		return
	}

	fillTime := order.Time
	if fillTime.IsZero() {
		fillTime = event.Time
	}

	trade := types.Trade{
		Symbol:   order.Symbol,
		Side:     order.Side,
		Quantity: order.Quantity,
		Price:    price,
		Time:     fillTime,
		OrderID:  optional.None[string](),
	}

	e.trades = append(e.trades, trade)

	for _, observer := range e.observers {
		observer(trade, e.portfolio)
	}
}

// portfolioValue is cash plus positions at last known prices.
func (e *Engine) portfolioValue() float64 {
	total := e.portfolio.Cash
	for symbol, quantity := range e.portfolio.Positions {
		total += quantity * e.lastPrices[symbol]
	}

	return total
}
