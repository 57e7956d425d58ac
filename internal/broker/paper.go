package broker

import (
	"fmt"
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/logger"
	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Paper is the paper trading adapter: it simulates fills at the latest close
// price from the injected market data source and maintains an internal cash
// and positions ledger. No broker connection, no partial fills.
type Paper struct {
	cash      decimal.Decimal
	positions map[string]float64
	source    MarketDataSource
	orderLog  []OrderLogEntry
	log       *logger.Logger
}

// NewPaper creates a paper adapter with the given starting cash. The source
// may be nil, in which case every submission is rejected for missing data.
func NewPaper(initialCash float64, source MarketDataSource, log *logger.Logger) *Paper {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Paper{
		cash:      decimal.NewFromFloat(initialCash),
		positions: make(map[string]float64),
		source:    source,
		orderLog:  nil,
		log:       log,
	}
}

// SubmitOrder simulates a fill at the latest close price for order.Symbol.
// Rejections leave cash and positions untouched. Every submission is
// appended to the order log.
func (p *Paper) SubmitOrder(order types.Order) (status types.OrderStatus) {
	defer func() {
		if r := recover(); r != nil {
			status = types.RejectedStatus(fmt.Sprintf("broker internal error: %v", r), time.Now())
			p.orderLog = append(p.orderLog, OrderLogEntry{Order: order, Status: status})
			p.log.Error("paper order submission panicked",
				zap.String("symbol", order.Symbol),
				zap.Any("panic", r),
			)
		}
	}()

	price, ok := latestClose(p.GetMarketData([]string{order.Symbol}), order.Symbol)
	if !ok {
		return p.reject(order, "no market data for symbol")
	}

	if price <= 0 {
		return p.reject(order, "invalid price")
	}

	cost := decimal.NewFromFloat(order.Quantity).Mul(decimal.NewFromFloat(price))

	switch order.Side {
	case types.SideBuy:
		if p.cash.LessThan(cost) {
			return p.reject(order, "insufficient cash")
		}

		p.cash = p.cash.Sub(cost)
		p.positions[order.Symbol] += order.Quantity
	case types.SideSell:
		held := p.positions[order.Symbol]
		if held < order.Quantity {
			return p.reject(order, "insufficient position")
		}

		p.cash = p.cash.Add(cost)
		p.positions[order.Symbol] = held - order.Quantity

		if p.positions[order.Symbol] == 0 {
			delete(p.positions, order.Symbol)
		}
	default:
		return p.reject(order, fmt.Sprintf("unsupported side: %s", order.Side))
	}

	status = types.OrderStatus{
		Status:         types.OrderStatusFilled,
		OrderID:        optional.Some(fmt.Sprintf("paper-%s", uuid.NewString())),
		FillPrice:      optional.Some(price),
		FilledQuantity: order.Quantity,
		Message:        optional.None[string](),
		Time:           time.Now(),
	}
	p.orderLog = append(p.orderLog, OrderLogEntry{Order: order, Status: status})

	p.log.Info("paper order filled",
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.Float64("quantity", order.Quantity),
		zap.Float64("price", price),
	)

	return status
}

// GetPortfolio returns the current simulated portfolio state.
func (p *Paper) GetPortfolio() types.PortfolioState {
	positions := make(map[string]float64, len(p.positions))
	for symbol, quantity := range p.positions {
		positions[symbol] = quantity
	}

	return types.PortfolioState{
		Cash:      p.cash.InexactFloat64(),
		Positions: positions,
	}
}

// GetMarketData returns bars from the injected source.
func (p *Paper) GetMarketData(symbols []string) []types.MarketData {
	if p.source == nil {
		return nil
	}

	return p.source(symbols)
}

// OrderLog returns the log of all submitted orders and their statuses.
func (p *Paper) OrderLog() []OrderLogEntry {
	log := make([]OrderLogEntry, len(p.orderLog))
	copy(log, p.orderLog)

	return log
}

func (p *Paper) reject(order types.Order, message string) types.OrderStatus {
	status := types.RejectedStatus(message, time.Now())
	p.orderLog = append(p.orderLog, OrderLogEntry{Order: order, Status: status})

	p.log.Info("paper order rejected",
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.Float64("quantity", order.Quantity),
		zap.String("reason", message),
	)

	return status
}
