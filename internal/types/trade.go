package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Trade is the record of a completed fill. The backtest engine and the
// execution engine produce the same shape so observers can be reused across
// both. Never mutated after it is appended to a trade log.
type Trade struct {
	Symbol   string    `csv:"symbol" yaml:"symbol" json:"symbol"`
	Side     Side      `csv:"side" yaml:"side" json:"side"`
	Quantity float64   `csv:"quantity" yaml:"quantity" json:"quantity"`
	Price    float64   `csv:"price" yaml:"price" json:"price"`
	Time     time.Time `csv:"time" yaml:"time" json:"time"`
	// OrderID is set when the fill came from a broker adapter.
	OrderID optional.Option[string] `csv:"order_id" yaml:"order_id" json:"order_id"`
}

// Notional is the cash value of the trade (quantity * price).
func (t Trade) Notional() float64 {
	return t.Quantity * t.Price
}
