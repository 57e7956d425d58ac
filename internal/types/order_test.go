package types

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
)

func TestOrderValidate(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{
			name: "valid market order",
			order: Order{
				Symbol:    "SPY",
				Side:      SideBuy,
				Quantity:  50,
				OrderType: OrderTypeMarket,
				Time:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			},
			wantErr: false,
		},
		{
			name: "valid limit order",
			order: Order{
				Symbol:     "SPY",
				Side:       SideSell,
				Quantity:   10,
				OrderType:  OrderTypeLimit,
				LimitPrice: optional.Some(101.5),
				Time:       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			},
			wantErr: false,
		},
		{
			name: "missing symbol",
			order: Order{
				Side:      SideBuy,
				Quantity:  1,
				OrderType: OrderTypeMarket,
			},
			wantErr: true,
		},
		{
			name: "invalid side",
			order: Order{
				Symbol:    "SPY",
				Side:      Side("HOLD"),
				Quantity:  1,
				OrderType: OrderTypeMarket,
			},
			wantErr: true,
		},
		{
			name: "negative quantity",
			order: Order{
				Symbol:    "SPY",
				Side:      SideBuy,
				Quantity:  -1,
				OrderType: OrderTypeMarket,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderWithQuantity(t *testing.T) {
	order := Order{
		Symbol:    "SPY",
		Side:      SideSell,
		Quantity:  100,
		OrderType: OrderTypeMarket,
	}

	capped := order.WithQuantity(40)
	assert.Equal(t, 40.0, capped.Quantity)
	// Original is untouched
	assert.Equal(t, 100.0, order.Quantity)
	assert.Equal(t, order.Symbol, capped.Symbol)
	assert.Equal(t, order.Side, capped.Side)
}

func TestRejectedStatus(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	status := RejectedStatus("insufficient cash", ts)

	assert.Equal(t, OrderStatusRejected, status.Status)
	assert.Equal(t, "insufficient cash", status.Message.Unwrap())
	assert.True(t, status.FillPrice.IsNone())
	assert.True(t, status.OrderID.IsNone())
	assert.Zero(t, status.FilledQuantity)
	assert.Equal(t, ts, status.Time)
}
