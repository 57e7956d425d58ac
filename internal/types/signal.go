package types

import "time"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Signal is a trading intent produced by a strategy: what to do, not an
// order. Immutable; quantity is expressed in the same unit as positions.
type Signal struct {
	Symbol   string    `yaml:"symbol" json:"symbol"`
	Side     Side      `yaml:"side" json:"side"`
	Quantity float64   `yaml:"quantity" json:"quantity"`
	Time     time.Time `yaml:"time" json:"time"`
}
