package backtest

import (
	"testing"
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/engine"
	"github.com/QuantTradingOS/qtos-core/internal/logger"
	"github.com/QuantTradingOS/qtos-core/internal/risk"
	"github.com/QuantTradingOS/qtos-core/internal/strategy"
	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

// scriptedStrategy replays one signal batch per event.
type scriptedStrategy struct {
	batches [][]types.Signal
	cursor  int
}

func (s *scriptedStrategy) Name() string {
	return "Scripted"
}

func (s *scriptedStrategy) OnEvent(event types.Event, portfolio *types.Portfolio) []types.Signal {
	if s.cursor >= len(s.batches) {
		return nil
	}

	batch := s.batches[s.cursor]
	s.cursor++

	return batch
}

// rejectAllRisk rejects every signal and order.
type rejectAllRisk struct{}

func (r *rejectAllRisk) CheckSignal(signal types.Signal, portfolio *types.Portfolio) optional.Option[types.Order] {
	return optional.None[types.Order]()
}

func (r *rejectAllRisk) CheckOrder(order types.Order, portfolio *types.Portfolio) optional.Option[types.Order] {
	return optional.None[types.Order]()
}

type BacktestTestSuite struct {
	suite.Suite
	log *logger.Logger
}

func (suite *BacktestTestSuite) SetupSuite() {
	suite.log = logger.NewNopLogger()
}

func (suite *BacktestTestSuite) bars(symbol string, closes ...float64) []types.MarketData {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.MarketData, len(closes))

	for i, closePrice := range closes {
		bars[i] = types.MarketData{
			Symbol: symbol,
			Time:   start.AddDate(0, 0, i),
			Open:   closePrice,
			High:   closePrice,
			Low:    closePrice,
			Close:  closePrice,
			Volume: 1000,
		}
	}

	return bars
}

func (suite *BacktestTestSuite) signal(side types.Side, quantity float64) types.Signal {
	return types.Signal{
		Symbol:   "AAPL",
		Side:     side,
		Quantity: quantity,
	}
}

func (suite *BacktestTestSuite) TestBuyAndHoldRun() {
	eng, err := NewEngine(
		strategy.NewBuyAndHold("AAPL", 50),
		risk.NewPassThrough(),
		types.NewPortfolio(100_000),
		suite.log,
	)
	suite.Require().NoError(err)

	bars := suite.bars("AAPL", 100.5, 101.5, 102.5, 103.5, 104.5)

	result, err := eng.Run(bars, "AAPL")
	suite.Require().NoError(err)

	suite.Require().Len(result.Trades, 1)
	suite.Equal(types.SideBuy, result.Trades[0].Side)
	suite.InDelta(100.5, result.Trades[0].Price, 1e-9)
	suite.InDelta(50.0, result.Trades[0].Quantity, 1e-9)

	suite.InDelta(94_975.0, result.Portfolio.Cash, 1e-9)
	suite.InDelta(50.0, result.Portfolio.Position("AAPL"), 1e-9)

	suite.Require().Len(result.EquityCurve, len(bars))
	suite.InDelta(100_000.0, result.EquityCurve[0].Value, 1e-9)
	suite.InDelta(100_200.0, result.EquityCurve[4].Value, 1e-9)
	suite.Empty(result.RejectedLog)
}

func (suite *BacktestTestSuite) TestEquityCurveOnePointPerBarAscending() {
	eng, err := NewEngine(
		&scriptedStrategy{batches: nil},
		risk.NewPassThrough(),
		types.NewPortfolio(10_000),
		suite.log,
	)
	suite.Require().NoError(err)

	bars := suite.bars("AAPL", 10, 11, 12, 13, 14, 15, 16)

	result, err := eng.Run(bars, "AAPL")
	suite.Require().NoError(err)
	suite.Require().Len(result.EquityCurve, len(bars))

	for i := 1; i < len(result.EquityCurve); i++ {
		suite.True(result.EquityCurve[i].Time.After(result.EquityCurve[i-1].Time))
	}
}

func (suite *BacktestTestSuite) TestOversizedSellIsClamped() {
	eng, err := NewEngine(
		&scriptedStrategy{batches: [][]types.Signal{
			{suite.signal(types.SideBuy, 10)},
			{suite.signal(types.SideSell, 25)},
		}},
		risk.NewPassThrough(),
		types.NewPortfolio(1_000),
		suite.log,
	)
	suite.Require().NoError(err)

	result, err := eng.Run(suite.bars("AAPL", 50, 60), "AAPL")
	suite.Require().NoError(err)

	suite.Require().Len(result.Trades, 2)
	suite.InDelta(10.0, result.Trades[1].Quantity, 1e-9)
	suite.InDelta(0.0, result.Portfolio.Position("AAPL"), 1e-9)
	suite.NotContains(result.Portfolio.Positions, "AAPL")
	suite.InDelta(1_100.0, result.Portfolio.Cash, 1e-9)
}

func (suite *BacktestTestSuite) TestSellWithNoPositionIsDropped() {
	eng, err := NewEngine(
		&scriptedStrategy{batches: [][]types.Signal{
			{suite.signal(types.SideSell, 5)},
		}},
		risk.NewPassThrough(),
		types.NewPortfolio(1_000),
		suite.log,
	)
	suite.Require().NoError(err)

	result, err := eng.Run(suite.bars("AAPL", 50), "AAPL")
	suite.Require().NoError(err)

	suite.Empty(result.Trades)
	suite.InDelta(1_000.0, result.Portfolio.Cash, 1e-9)
}

func (suite *BacktestTestSuite) TestInsufficientCashBuyIsDropped() {
	eng, err := NewEngine(
		&scriptedStrategy{batches: [][]types.Signal{
			{suite.signal(types.SideBuy, 100)},
		}},
		risk.NewPassThrough(),
		types.NewPortfolio(500),
		suite.log,
	)
	suite.Require().NoError(err)

	result, err := eng.Run(suite.bars("AAPL", 50), "AAPL")
	suite.Require().NoError(err)

	suite.Empty(result.Trades)
	suite.InDelta(500.0, result.Portfolio.Cash, 1e-9)
	suite.Empty(result.Portfolio.Positions)
}

func (suite *BacktestTestSuite) TestRiskRejectionIsLogged() {
	eng, err := NewEngine(
		&scriptedStrategy{batches: [][]types.Signal{
			{suite.signal(types.SideBuy, 10)},
		}},
		&rejectAllRisk{},
		types.NewPortfolio(10_000),
		suite.log,
	)
	suite.Require().NoError(err)

	result, err := eng.Run(suite.bars("AAPL", 50), "AAPL")
	suite.Require().NoError(err)

	suite.Empty(result.Trades)
	suite.Require().Len(result.RejectedLog, 1)
	suite.Equal(engine.ReasonRiskRejected, result.RejectedLog[0].Reason)
	suite.True(result.RejectedLog[0].Signal.IsSome())
}

func (suite *BacktestTestSuite) TestValidatorCanRejectAndRewrite() {
	eng, err := NewEngine(
		&scriptedStrategy{batches: [][]types.Signal{
			{suite.signal(types.SideBuy, 10)},
			{suite.signal(types.SideBuy, 10)},
		}},
		risk.NewPassThrough(),
		types.NewPortfolio(10_000),
		suite.log,
	)
	suite.Require().NoError(err)

	calls := 0
	eng.AddValidator(func(order types.Order, portfolio *types.Portfolio) optional.Option[types.Order] {
		calls++
		if calls == 1 {
			return optional.None[types.Order]()
		}

		return optional.Some(order.WithQuantity(4))
	})

	result, err := eng.Run(suite.bars("AAPL", 50, 60), "AAPL")
	suite.Require().NoError(err)

	suite.Require().Len(result.RejectedLog, 1)
	suite.Equal(engine.ReasonValidatorRejected, result.RejectedLog[0].Reason)
	suite.Require().Len(result.Trades, 1)
	suite.InDelta(4.0, result.Trades[0].Quantity, 1e-9)
}

func (suite *BacktestTestSuite) TestObserverSeesPostFillPortfolio() {
	eng, err := NewEngine(
		&scriptedStrategy{batches: [][]types.Signal{
			{suite.signal(types.SideBuy, 10)},
		}},
		risk.NewPassThrough(),
		types.NewPortfolio(1_000),
		suite.log,
	)
	suite.Require().NoError(err)

	var seenCash float64
	eng.AddObserver(func(trade types.Trade, portfolio *types.Portfolio) {
		seenCash = portfolio.Cash
	})

	_, err = eng.Run(suite.bars("AAPL", 50), "AAPL")
	suite.Require().NoError(err)
	suite.InDelta(500.0, seenCash, 1e-9)
}

func (suite *BacktestTestSuite) TestRejectsUnorderedBars() {
	eng, err := NewEngine(
		&scriptedStrategy{batches: nil},
		risk.NewPassThrough(),
		types.NewPortfolio(1_000),
		suite.log,
	)
	suite.Require().NoError(err)

	bars := suite.bars("AAPL", 10, 11, 12)
	bars[2].Time = bars[0].Time.Add(-time.Hour)

	_, err = eng.Run(bars, "AAPL")
	suite.Require().Error(err)
}

func (suite *BacktestTestSuite) TestNewEngineRequiresCollaborators() {
	_, err := NewEngine(nil, risk.NewPassThrough(), types.NewPortfolio(1), suite.log)
	suite.Error(err)

	_, err = NewEngine(&scriptedStrategy{}, nil, types.NewPortfolio(1), suite.log)
	suite.Error(err)

	_, err = NewEngine(&scriptedStrategy{}, risk.NewPassThrough(), nil, suite.log)
	suite.Error(err)
}

func TestBacktestTestSuite(t *testing.T) {
	suite.Run(t, new(BacktestTestSuite))
}
