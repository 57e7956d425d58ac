package types

import (
	"time"

	"github.com/QuantTradingOS/qtos-core/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
)

type OrderType string

type OrderStatusKind string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

const (
	OrderStatusPending         OrderStatusKind = "PENDING"
	OrderStatusFilled          OrderStatusKind = "FILLED"
	OrderStatusPartiallyFilled OrderStatusKind = "PARTIALLY_FILLED"
	OrderStatusRejected        OrderStatusKind = "REJECTED"
	OrderStatusCancelled       OrderStatusKind = "CANCELLED"
)

// Order is an executable instruction derived from a signal after risk
// approval. Immutable value: "modifying" an order (e.g. a validator capping
// its size) means constructing a new Order, never mutating in place.
type Order struct {
	Symbol   string  `yaml:"symbol" json:"symbol" validate:"required"`
	Side     Side    `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	Quantity float64 `yaml:"quantity" json:"quantity" validate:"gte=0"`
	// OrderType is MARKET or LIMIT.
	OrderType OrderType `yaml:"order_type" json:"order_type" validate:"required,oneof=MARKET LIMIT"`
	// LimitPrice is only set for limit orders.
	LimitPrice optional.Option[float64] `yaml:"limit_price" json:"limit_price"`
	Time       time.Time                `yaml:"time" json:"time"`
}

// WithQuantity returns a copy of the order with a different quantity.
func (o Order) WithQuantity(quantity float64) Order {
	o.Quantity = quantity

	return o
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	return nil
}

// OrderStatus is the outcome of submitting one order to a broker adapter.
// Produced once per SubmitOrder call; immutable. FillPrice is only present
// when the status is FILLED or PARTIALLY_FILLED.
type OrderStatus struct {
	Status         OrderStatusKind          `yaml:"status" json:"status"`
	OrderID        optional.Option[string]  `yaml:"order_id" json:"order_id"`
	FillPrice      optional.Option[float64] `yaml:"fill_price" json:"fill_price"`
	FilledQuantity float64                  `yaml:"filled_quantity" json:"filled_quantity"`
	Message        optional.Option[string]  `yaml:"message" json:"message"`
	Time           time.Time                `yaml:"time" json:"time"`
}

// RejectedStatus builds a REJECTED status with the given reason. Rejection
// is an expected pipeline outcome and is always expressed as data, never as
// an error.
func RejectedStatus(message string, ts time.Time) OrderStatus {
	return OrderStatus{
		Status:         OrderStatusRejected,
		OrderID:        optional.None[string](),
		FillPrice:      optional.None[float64](),
		FilledQuantity: 0,
		Message:        optional.Some(message),
		Time:           ts,
	}
}
