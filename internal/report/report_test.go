package report

import (
	"strings"
	"testing"
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/backtest"
	"github.com/QuantTradingOS/qtos-core/internal/metrics"
	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/stretchr/testify/suite"
)

type ReportTestSuite struct {
	suite.Suite
}

func (suite *ReportTestSuite) TestRenderContainsAllFigures() {
	curve := []backtest.EquityPoint{
		{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: 105_000},
		{Time: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Value: 110_000},
	}
	m := metrics.Compute(100_000, curve)

	result := backtest.Result{
		Portfolio:   types.NewPortfolio(110_000),
		Trades:      []types.Trade{{Symbol: "AAPL", Side: types.SideBuy, Quantity: 10, Price: 100}},
		EquityCurve: curve,
		RejectedLog: nil,
	}

	out := Render(m, result)
	suite.Contains(out, "Backtest Performance")
	suite.Contains(out, "100000.00")
	suite.Contains(out, "110000.00")
	suite.Contains(out, "10.00%")
	suite.Contains(out, "Trades:")
}

func (suite *ReportTestSuite) TestPrintWrites() {
	var b strings.Builder

	err := Print(&b, metrics.Compute(1_000, nil), backtest.Result{})
	suite.Require().NoError(err)
	suite.NotEmpty(b.String())
}

func TestReportTestSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}
