package types

// Portfolio is the cash and positions ledger. Mutable; mutated exclusively
// by the engine/broker pair that executes fills. Strategies and hooks only
// ever receive snapshots valid for the duration of the current cycle.
//
// A position entry exists iff its quantity is non-zero.
type Portfolio struct {
	Cash      float64            `yaml:"cash" json:"cash"`
	Positions map[string]float64 `yaml:"positions" json:"positions"`
}

// NewPortfolio creates a portfolio with the given starting cash and no
// positions.
func NewPortfolio(cash float64) *Portfolio {
	return &Portfolio{
		Cash:      cash,
		Positions: make(map[string]float64),
	}
}

// Position returns the quantity held in symbol, 0 if not present.
func (p *Portfolio) Position(symbol string) float64 {
	return p.Positions[symbol]
}

// UpdatePosition adjusts the position by delta (positive = buy). An entry
// that nets to exactly zero is removed from the map.
func (p *Portfolio) UpdatePosition(symbol string, delta float64) {
	next := p.Positions[symbol] + delta
	if next == 0 {
		delete(p.Positions, symbol)

		return
	}

	p.Positions[symbol] = next
}

// Clone returns a deep copy, used to hand read-only snapshots to
// strategies and hooks.
func (p *Portfolio) Clone() *Portfolio {
	positions := make(map[string]float64, len(p.Positions))
	for sym, qty := range p.Positions {
		positions[sym] = qty
	}

	return &Portfolio{
		Cash:      p.Cash,
		Positions: positions,
	}
}

// PortfolioState is a snapshot of cash and positions as reported by a
// broker adapter. Same shape as Portfolio so strategies and hooks work
// identically in backtest and execution.
type PortfolioState struct {
	Cash      float64            `yaml:"cash" json:"cash"`
	Positions map[string]float64 `yaml:"positions" json:"positions"`
}

// Position returns the quantity held in symbol, 0 if not present.
func (s PortfolioState) Position(symbol string) float64 {
	return s.Positions[symbol]
}

// ToPortfolio builds a Portfolio view of the snapshot for strategy and
// hook consumption.
func (s PortfolioState) ToPortfolio() *Portfolio {
	positions := make(map[string]float64, len(s.Positions))
	for sym, qty := range s.Positions {
		positions[sym] = qty
	}

	return &Portfolio{
		Cash:      s.Cash,
		Positions: positions,
	}
}
