package engine

import (
	"github.com/QuantTradingOS/qtos-core/pkg/errors"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Config is the YAML-configurable safety surface of the execution engine.
// Nil limits mean "no limit".
type Config struct {
	DailyPnLLimit       *float64 `yaml:"daily_pnl_limit"`
	MaxPositionPerTrade *float64 `yaml:"max_position_per_trade"`
	KillSwitch          bool     `yaml:"kill_switch"`
}

// Initialize applies a YAML config string to the engine.
func (e *ExecutionEngine) Initialize(config string) error {
	var cfg Config

	err := yaml.Unmarshal([]byte(config), &cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse engine config", err)
	}

	if cfg.DailyPnLLimit != nil {
		if *cfg.DailyPnLLimit <= 0 {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "daily_pnl_limit must be positive, got %f", *cfg.DailyPnLLimit)
		}

		e.dailyPnLLimit = optional.Some(*cfg.DailyPnLLimit)
	}

	if cfg.MaxPositionPerTrade != nil {
		if *cfg.MaxPositionPerTrade <= 0 {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "max_position_per_trade must be positive, got %f", *cfg.MaxPositionPerTrade)
		}

		e.maxPositionPerTrade = optional.Some(*cfg.MaxPositionPerTrade)
	}

	e.killSwitch = cfg.KillSwitch

	e.log.Debug("execution engine initialized",
		zap.String("config", config),
	)

	return nil
}
