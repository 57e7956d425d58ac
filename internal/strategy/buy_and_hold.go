package strategy

import (
	"fmt"

	"github.com/QuantTradingOS/qtos-core/internal/types"
)

// BuyAndHold emits a single buy signal for a fixed symbol on the first event
// it sees and ignores everything after. No sizing logic; minimal
// illustration of the Strategy interface.
type BuyAndHold struct {
	symbol   string
	quantity float64
	fired    bool
}

// NewBuyAndHold creates a buy-and-hold strategy for the given symbol and size.
func NewBuyAndHold(symbol string, quantity float64) *BuyAndHold {
	return &BuyAndHold{
		symbol:   symbol,
		quantity: quantity,
		fired:    false,
	}
}

// Name returns the name of the strategy
func (s *BuyAndHold) Name() string {
	return fmt.Sprintf("BuyAndHold_%s", s.symbol)
}

// OnEvent emits one buy signal on the first event, nothing afterwards.
func (s *BuyAndHold) OnEvent(event types.Event, portfolio *types.Portfolio) []types.Signal {
	if s.fired {
		return nil
	}

	s.fired = true

	return []types.Signal{
		{
			Symbol:   s.symbol,
			Side:     types.SideBuy,
			Quantity: s.quantity,
			Time:     event.Time,
		},
	}
}
