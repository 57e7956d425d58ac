package broker

import (
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/types"
)

// MarketDataSource supplies the latest bars for a set of symbols. Paper and
// sandboxed live adapters have one injected; a real integration would query
// the broker's market data API instead.
type MarketDataSource func(symbols []string) []types.MarketData

// StaticPrices builds a MarketDataSource from a fixed symbol -> price map.
// Each requested symbol that has a price yields a one-bar row with that
// price as open/high/low/close.
func StaticPrices(prices map[string]float64) MarketDataSource {
	return func(symbols []string) []types.MarketData {
		var rows []types.MarketData

		for _, symbol := range symbols {
			price, ok := prices[symbol]
			if !ok {
				continue
			}

			rows = append(rows, types.MarketData{
				Symbol: symbol,
				Time:   time.Now(),
				Open:   price,
				High:   price,
				Low:    price,
				Close:  price,
				Volume: 0,
			})
		}

		return rows
	}
}

// latestClose finds the most recent close for symbol in the rows returned
// by a market data source. The second return reports whether a usable row
// was found at all; missing data is "no price available", not zero.
func latestClose(rows []types.MarketData, symbol string) (float64, bool) {
	found := false

	var price float64

	for _, row := range rows {
		if row.Symbol != "" && row.Symbol != symbol {
			continue
		}

		price = row.Close
		found = true
	}

	return price, found
}
