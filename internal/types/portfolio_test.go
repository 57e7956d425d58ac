package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortfolioUpdatePosition(t *testing.T) {
	p := NewPortfolio(1000)

	p.UpdatePosition("SPY", 50)
	assert.Equal(t, 50.0, p.Position("SPY"))

	p.UpdatePosition("SPY", -20)
	assert.Equal(t, 30.0, p.Position("SPY"))

	// Netting to exactly zero removes the entry
	p.UpdatePosition("SPY", -30)
	assert.Equal(t, 0.0, p.Position("SPY"))
	assert.NotContains(t, p.Positions, "SPY")
}

func TestPortfolioPositionMissing(t *testing.T) {
	p := NewPortfolio(0)
	assert.Equal(t, 0.0, p.Position("AAPL"))
}

func TestPortfolioClone(t *testing.T) {
	p := NewPortfolio(500)
	p.UpdatePosition("SPY", 10)

	snapshot := p.Clone()
	snapshot.Cash = 0
	snapshot.UpdatePosition("SPY", 99)

	assert.Equal(t, 500.0, p.Cash)
	assert.Equal(t, 10.0, p.Position("SPY"))
}

func TestPortfolioStateToPortfolio(t *testing.T) {
	state := PortfolioState{
		Cash:      250.0,
		Positions: map[string]float64{"SPY": 5},
	}

	view := state.ToPortfolio()
	assert.Equal(t, 250.0, view.Cash)
	assert.Equal(t, 5.0, view.Position("SPY"))

	// Mutating the view does not touch the snapshot
	view.UpdatePosition("SPY", -5)
	assert.Equal(t, 5.0, state.Position("SPY"))
}
