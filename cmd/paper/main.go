package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/broker"
	"github.com/QuantTradingOS/qtos-core/internal/engine"
	"github.com/QuantTradingOS/qtos-core/internal/logger"
	"github.com/QuantTradingOS/qtos-core/internal/risk"
	"github.com/QuantTradingOS/qtos-core/internal/strategy"
	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// randomWalk simulates a drifting quote stream around the starting price.
// Demo data only.
func randomWalk(symbol string, start float64) broker.MarketDataSource {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	price := start

	return func(symbols []string) []types.MarketData {
		price *= 1 + (rng.Float64()-0.5)*0.01

		return broker.StaticPrices(map[string]float64{symbol: price})(symbols)
	}
}

// paperAction runs a short paper trading session against simulated quotes.
func paperAction(ctx context.Context, cmd *cli.Command) error {
	symbol := cmd.String("symbol")
	cash := cmd.Float("cash")
	quantity := cmd.Float("quantity")
	startPrice := cmd.Float("price")
	cycles := cmd.Int("cycles")
	interval := cmd.Duration("interval")
	configPath := cmd.String("config")

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = appLogger.Sync() }()

	adapter := broker.NewPaper(cash, randomWalk(symbol, startPrice), appLogger)

	exec, err := engine.NewExecutionEngine(
		strategy.NewBuyAndHold(symbol, quantity),
		risk.NewPassThrough(),
		adapter,
		appLogger,
	)
	if err != nil {
		return fmt.Errorf("failed to create execution engine: %w", err)
	}

	if configPath != "" {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if err := exec.Initialize(string(raw)); err != nil {
			return fmt.Errorf("failed to apply config: %w", err)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := int64(0); i < cycles; i++ {
		if err := exec.RunOnce([]string{symbol}, time.Now()); err != nil {
			return fmt.Errorf("cycle %d failed: %w", i, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	state := adapter.GetPortfolio()
	appLogger.Info("paper session finished",
		zap.Float64("cash", state.Cash),
		zap.Any("positions", state.Positions),
		zap.Int("trades", len(exec.Trades())),
		zap.Int("rejections", len(exec.RejectedLog())),
	)

	return nil
}

func main() {
	// Optional .env for local overrides; absence is not an error
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "paper",
		Usage: "Run a paper trading session against simulated quotes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Symbol to trade",
				Value:    "AAPL",
				Required: false,
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
			&cli.FloatFlag{
				Name:     "price",
				Aliases:  []string{"p"},
				Usage:    "Starting simulated price",
				Value:    100,
				Required: false,
			},
			&cli.IntFlag{
				Name:     "cycles",
				Aliases:  []string{"n"},
				Usage:    "Number of execution cycles to run",
				Value:    10,
				Required: false,
			},
			&cli.DurationFlag{
				Name:     "interval",
				Aliases:  []string{"i"},
				Usage:    "Delay between cycles",
				Value:    time.Second,
				Required: false,
			},
			&cli.StringFlag{
				Name:     "config",
				Usage:    "Optional YAML file with engine safety limits",
				Required: false,
			},
		},
		Action: paperAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
