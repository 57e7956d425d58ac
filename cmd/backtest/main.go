package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/QuantTradingOS/qtos-core/internal/backtest"
	"github.com/QuantTradingOS/qtos-core/internal/datasource"
	"github.com/QuantTradingOS/qtos-core/internal/logger"
	"github.com/QuantTradingOS/qtos-core/internal/metrics"
	"github.com/QuantTradingOS/qtos-core/internal/report"
	"github.com/QuantTradingOS/qtos-core/internal/risk"
	"github.com/QuantTradingOS/qtos-core/internal/strategy"
	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// backtestAction loads the bar file, replays it with a buy-and-hold strategy,
// and prints the performance summary.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	dataPath := cmd.String("data")
	symbol := cmd.String("symbol")
	cash := cmd.Float("cash")
	quantity := cmd.Float("quantity")
	metricsPath := cmd.String("metrics")

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	bars, err := datasource.LoadCSV(dataPath, symbol)
	if err != nil {
		return fmt.Errorf("failed to load bars: %w", err)
	}

	engine, err := backtest.NewEngine(
		strategy.NewBuyAndHold(symbol, quantity),
		risk.NewPassThrough(),
		types.NewPortfolio(cash),
		appLogger,
	)
	if err != nil {
		return fmt.Errorf("failed to create backtest engine: %w", err)
	}

	engine.SetShowProgress(true)

	result, err := engine.Run(bars, symbol)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	m := metrics.Compute(cash, result.EquityCurve)

	if metricsPath != "" {
		if err := m.Save(metricsPath); err != nil {
			return fmt.Errorf("failed to save metrics: %w", err)
		}
	}

	return report.Print(os.Stdout, m, result)
}

func main() {
	// Optional .env for local overrides; absence is not an error
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Replay historical bars through a strategy and report performance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the OHLCV CSV file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Symbol to attach to the bars",
				Required: true,
			},
			&cli.FloatFlag{
				Name:     "cash",
				Aliases:  []string{"c"},
				Usage:    "Initial cash",
				Value:    100_000,
				Required: false,
			},
			&cli.FloatFlag{
				Name:     "quantity",
				Aliases:  []string{"q"},
				Usage:    "Buy-and-hold quantity",
				Value:    10,
				Required: false,
			},
			&cli.StringFlag{
				Name:     "metrics",
				Aliases:  []string{"m"},
				Usage:    "Optional path to write the metrics as YAML",
				Required: false,
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
