package metrics

import (
	"testing"
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/backtest"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func (suite *MetricsTestSuite) curve(values ...float64) []backtest.EquityPoint {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]backtest.EquityPoint, len(values))

	for i, value := range values {
		points[i] = backtest.EquityPoint{
			Time:  start.AddDate(0, 0, i),
			Value: value,
		}
	}

	return points
}

func (suite *MetricsTestSuite) TestEmptyCurve() {
	m := Compute(100_000, nil)

	suite.InDelta(100_000.0, m.InitialValue, 1e-9)
	suite.InDelta(100_000.0, m.FinalValue, 1e-9)
	suite.InDelta(0.0, m.TotalPnL, 1e-9)
	suite.InDelta(0.0, m.TotalReturnPct, 1e-9)
	suite.InDelta(0.0, m.CAGR, 1e-9)
	suite.InDelta(0.0, m.SharpeRatio, 1e-9)
	suite.InDelta(0.0, m.MaxDrawdown, 1e-9)
}

func (suite *MetricsTestSuite) TestPnLAndReturn() {
	m := Compute(100_000, suite.curve(105_000, 110_000))

	suite.InDelta(110_000.0, m.FinalValue, 1e-9)
	suite.InDelta(10_000.0, m.TotalPnL, 1e-9)
	suite.InDelta(10.0, m.TotalReturnPct, 1e-9)
}

func (suite *MetricsTestSuite) TestFlatCurveHasZeroSharpe() {
	m := Compute(100_000, suite.curve(100_000, 100_000, 100_000))

	suite.InDelta(0.0, m.SharpeRatio, 1e-9)
	suite.InDelta(0.0, m.MaxDrawdown, 1e-9)
}

func (suite *MetricsTestSuite) TestRisingCurveHasPositiveSharpeAndCAGR() {
	m := Compute(100_000, suite.curve(101_000, 102_000, 103_500, 104_000))

	suite.Greater(m.SharpeRatio, 0.0)
	suite.Greater(m.CAGR, 0.0)
}

func (suite *MetricsTestSuite) TestMaxDrawdown() {
	// Peak 120k, trough 90k: drawdown 30k, 25% of the peak
	m := Compute(100_000, suite.curve(100_000, 120_000, 90_000, 110_000))

	suite.InDelta(30_000.0, m.MaxDrawdown, 1e-9)
	suite.InDelta(25.0, m.MaxDrawdownPct, 1e-9)
}

func (suite *MetricsTestSuite) TestSinglePointCurve() {
	m := Compute(100_000, suite.curve(101_000))

	suite.InDelta(101_000.0, m.FinalValue, 1e-9)
	suite.InDelta(0.0, m.SharpeRatio, 1e-9)
}

func (suite *MetricsTestSuite) TestYAMLRoundTrip() {
	m := Compute(100_000, suite.curve(105_000, 110_000))

	out := m.String()
	suite.Contains(out, "initial_value:")
	suite.Contains(out, "total_pnl:")
	suite.Contains(out, "sharpe_ratio:")
}

func TestMetricsTestSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}
