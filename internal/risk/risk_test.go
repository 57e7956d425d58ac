package risk

import (
	"testing"
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPassThroughCheckSignal(t *testing.T) {
	m := NewPassThrough()
	portfolio := types.NewPortfolio(1000)

	signal := types.Signal{
		Symbol:   "SPY",
		Side:     types.SideBuy,
		Quantity: 50,
		Time:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	result := m.CheckSignal(signal, portfolio)
	assert.True(t, result.IsSome())

	order := result.Unwrap()
	assert.Equal(t, signal.Symbol, order.Symbol)
	assert.Equal(t, signal.Side, order.Side)
	assert.Equal(t, signal.Quantity, order.Quantity)
	assert.Equal(t, types.OrderTypeMarket, order.OrderType)
	assert.True(t, order.LimitPrice.IsNone())
	assert.Equal(t, signal.Time, order.Time)
}

func TestPassThroughCheckOrder(t *testing.T) {
	m := NewPassThrough()
	portfolio := types.NewPortfolio(1000)

	order := types.Order{
		Symbol:    "SPY",
		Side:      types.SideSell,
		Quantity:  10,
		OrderType: types.OrderTypeMarket,
	}

	result := m.CheckOrder(order, portfolio)
	assert.True(t, result.IsSome())
	assert.Equal(t, order, result.Unwrap())
}
