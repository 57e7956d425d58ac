package broker

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/logger"
	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LiveTradingEnv is the environment variable that must be set to "true" to
// allow live (non-sandbox) order submission. It is the sole gate: absent
// this flag every non-sandbox submission is rejected regardless of order
// validity.
const LiveTradingEnv = "QTOS_LIVE_TRADING_ENABLED"

// LiveConfig configures a Live adapter.
type LiveConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	// Sandbox defaults to true when omitted. Real live orders additionally
	// require QTOS_LIVE_TRADING_ENABLED=true.
	Sandbox *bool `yaml:"sandbox"`
	// BaseURL overrides the broker endpoint (sandbox vs production).
	BaseURL string `yaml:"base_url"`
	// SymbolMap maps internal symbols to broker symbols, e.g. "BTC" ->
	// "BTCUSD". Identity for symbols not present.
	SymbolMap map[string]string `yaml:"symbol_map"`
	// InitialCash seeds the simulated sandbox ledger.
	InitialCash float64 `yaml:"initial_cash"`
}

// Live routes orders to a broker API and fetches portfolio and market data.
//
// Sandbox mode (the default) fully simulates the paper adapter's
// fill/cash/position logic internally but keeps the wire-protocol seams
// (authentication, symbol remapping) a real integration needs. Non-sandbox
// mode is rejected unless QTOS_LIVE_TRADING_ENABLED=true; that is a safety
// rail, not a bug.
type Live struct {
	apiKey        string
	apiSecret     string
	sandbox       bool
	baseURL       string
	symbolMap     map[string]string
	source        MarketDataSource
	authenticated bool

	// Simulated sandbox ledger; a real integration would query the broker
	// paper API instead.
	cash      decimal.Decimal
	positions map[string]float64
	orderLog  []OrderLogEntry

	log *logger.Logger
}

// NewLive creates a live adapter. The source supplies sandbox market data;
// it may be nil.
func NewLive(config LiveConfig, source MarketDataSource, log *logger.Logger) *Live {
	if log == nil {
		log = logger.NewNopLogger()
	}

	sandbox := true
	if config.Sandbox != nil {
		sandbox = *config.Sandbox
	}

	l := &Live{
		apiKey:        config.APIKey,
		apiSecret:     config.APISecret,
		sandbox:       sandbox,
		baseURL:       config.BaseURL,
		symbolMap:     config.SymbolMap,
		source:        source,
		authenticated: false,
		cash:          decimal.NewFromFloat(config.InitialCash),
		positions:     make(map[string]float64),
		orderLog:      nil,
		log:           log,
	}

	l.authenticate()

	if l.sandbox {
		l.log.Info("live adapter: sandbox mode is active, orders go to the broker paper endpoint")
	} else if !liveTradingEnabled() {
		l.log.Warn("live adapter: live trading is disabled",
			zap.String("enable_env", LiveTradingEnv),
		)
	} else {
		l.log.Warn("live adapter: LIVE TRADING is enabled, real money at risk")
	}

	return l
}

// authenticate establishes the broker session.
// TODO: call the real broker auth (REST login / OAuth) once an SDK is
// integrated; until then this only flags readiness.
func (l *Live) authenticate() {
	l.authenticated = true
	l.log.Debug("live adapter: authentication placeholder completed")
}

// liveTradingEnabled reports whether the environment permits non-sandbox
// order submission.
func liveTradingEnabled() bool {
	return strings.EqualFold(os.Getenv(LiveTradingEnv), "true")
}

// resolveSymbol maps an internal symbol to the broker symbol. Identity when
// no mapping is present.
func (l *Live) resolveSymbol(internal string) string {
	if mapped, ok := l.symbolMap[internal]; ok {
		return mapped
	}

	return internal
}

// SubmitOrder submits an order to the broker. Market orders only in this
// implementation.
//
// Behavior:
//   - Non-sandbox without QTOS_LIVE_TRADING_ENABLED=true: REJECTED.
//   - Sandbox: simulated immediate fill against the internal ledger, same
//     semantics as the paper adapter.
//   - Non-sandbox with the flag set: REJECTED until a real SDK integration
//     replaces the placeholder.
//   - Internal failures are mapped to a REJECTED status; nothing escapes.
func (l *Live) SubmitOrder(order types.Order) (status types.OrderStatus) {
	defer func() {
		if r := recover(); r != nil {
			status = types.RejectedStatus(fmt.Sprintf("broker API error: %v", r), time.Now())
			l.orderLog = append(l.orderLog, OrderLogEntry{Order: order, Status: status})
			l.log.Error("live order submission panicked",
				zap.String("symbol", order.Symbol),
				zap.Any("panic", r),
			)
		}
	}()

	brokerSymbol := l.resolveSymbol(order.Symbol)
	mode := "live"

	if l.sandbox {
		mode = "sandbox"
	}

	l.log.Info("submitting order",
		zap.String("symbol", order.Symbol),
		zap.String("broker_symbol", brokerSymbol),
		zap.String("side", string(order.Side)),
		zap.Float64("quantity", order.Quantity),
		zap.String("mode", mode),
	)

	if !l.sandbox && !liveTradingEnabled() {
		reason := fmt.Sprintf("live trading disabled; set %s=true to allow real orders", LiveTradingEnv)
		l.log.Warn("order rejected", zap.String("reason", reason))

		return l.reject(order, reason)
	}

	if l.sandbox {
		return l.submitSandbox(order)
	}

	// TODO: build the broker order payload with brokerSymbol, POST it to
	// baseURL, and map the response (accepted -> PENDING, filled -> FILLED,
	// partial -> PARTIALLY_FILLED) once a real broker SDK is integrated.
	return l.reject(order, "live broker API not implemented; use sandbox or add an SDK integration")
}

// submitSandbox simulates an immediate fill against the internal ledger,
// mirroring the paper adapter's semantics.
func (l *Live) submitSandbox(order types.Order) types.OrderStatus {
	price, ok := latestClose(l.GetMarketData([]string{order.Symbol}), order.Symbol)
	if !ok {
		return l.reject(order, "no market data for symbol (sandbox)")
	}

	if price <= 0 {
		return l.reject(order, "invalid price (sandbox)")
	}

	cost := decimal.NewFromFloat(order.Quantity).Mul(decimal.NewFromFloat(price))

	switch order.Side {
	case types.SideBuy:
		if l.cash.LessThan(cost) {
			return l.reject(order, "insufficient cash (sandbox)")
		}

		l.cash = l.cash.Sub(cost)
		l.positions[order.Symbol] += order.Quantity
	case types.SideSell:
		held := l.positions[order.Symbol]
		if held < order.Quantity {
			return l.reject(order, "insufficient position (sandbox)")
		}

		l.cash = l.cash.Add(cost)
		l.positions[order.Symbol] = held - order.Quantity

		if l.positions[order.Symbol] == 0 {
			delete(l.positions, order.Symbol)
		}
	default:
		return l.reject(order, fmt.Sprintf("unsupported side: %s", order.Side))
	}

	status := types.OrderStatus{
		Status:         types.OrderStatusFilled,
		OrderID:        optional.Some(fmt.Sprintf("live-sandbox-%s", uuid.NewString())),
		FillPrice:      optional.Some(price),
		FilledQuantity: order.Quantity,
		Message:        optional.None[string](),
		Time:           time.Now(),
	}
	l.orderLog = append(l.orderLog, OrderLogEntry{Order: order, Status: status})

	return status
}

// GetPortfolio returns the current portfolio snapshot. In sandbox mode this
// is the simulated ledger; a real integration would query the broker
// account and positions endpoints.
func (l *Live) GetPortfolio() types.PortfolioState {
	if l.sandbox {
		positions := make(map[string]float64, len(l.positions))
		for symbol, quantity := range l.positions {
			positions[symbol] = quantity
		}

		return types.PortfolioState{
			Cash:      l.cash.InexactFloat64(),
			Positions: positions,
		}
	}

	// TODO: GET /account and /positions from the broker API and map the
	// response; symbol remapping is reversed here so callers only see
	// internal naming.
	return types.PortfolioState{
		Cash:      0,
		Positions: map[string]float64{},
	}
}

// GetMarketData fetches the latest bars for the requested symbols. Broker
// symbols are resolved on the way out and mapped back to internal naming on
// the way in, so strategies never see broker-specific symbols.
func (l *Live) GetMarketData(symbols []string) []types.MarketData {
	if len(symbols) == 0 {
		return nil
	}

	if l.source == nil {
		// TODO: query the broker market data API per symbol (some brokers
		// have no bulk fetch) once an SDK is integrated.
		return nil
	}

	brokerSymbols := make([]string, len(symbols))
	reverse := make(map[string]string, len(symbols))

	for i, symbol := range symbols {
		brokerSymbols[i] = l.resolveSymbol(symbol)
		reverse[brokerSymbols[i]] = symbol
	}

	rows := l.source(brokerSymbols)

	out := make([]types.MarketData, 0, len(rows))

	for _, row := range rows {
		if internal, ok := reverse[row.Symbol]; ok {
			row.Symbol = internal
		}

		out = append(out, row)
	}

	return out
}

// OrderLog returns the log of all submitted orders and their statuses.
func (l *Live) OrderLog() []OrderLogEntry {
	log := make([]OrderLogEntry, len(l.orderLog))
	copy(log, l.orderLog)

	return log
}

func (l *Live) reject(order types.Order, message string) types.OrderStatus {
	status := types.RejectedStatus(message, time.Now())
	l.orderLog = append(l.orderLog, OrderLogEntry{Order: order, Status: status})

	return status
}
