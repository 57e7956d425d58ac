// Package metrics computes standard backtest performance figures from an
// equity curve: PnL, return, CAGR, Sharpe ratio, and max drawdown.
package metrics

import (
	"math"
	"os"

	"github.com/QuantTradingOS/qtos-core/internal/backtest"
	"gopkg.in/yaml.v3"
)

// DefaultTradingDaysPerYear is the annualization base for CAGR and Sharpe.
const DefaultTradingDaysPerYear = 252

// Metrics is the performance summary of one backtest run. CAGR and the
// return and drawdown percentages are expressed as percentages, not ratios.
type Metrics struct {
	InitialValue   float64 `yaml:"initial_value"`
	FinalValue     float64 `yaml:"final_value"`
	TotalPnL       float64 `yaml:"total_pnl"`
	TotalReturnPct float64 `yaml:"total_return_pct"`
	CAGR           float64 `yaml:"cagr"`
	SharpeRatio    float64 `yaml:"sharpe_ratio"`
	MaxDrawdown    float64 `yaml:"max_drawdown"`
	MaxDrawdownPct float64 `yaml:"max_drawdown_pct"`
}

// Compute computes metrics with the default annualization base and a zero
// risk-free rate.
func Compute(initialValue float64, curve []backtest.EquityPoint) Metrics {
	return ComputeWith(initialValue, curve, DefaultTradingDaysPerYear, 0)
}

// ComputeWith computes metrics from initial capital and the equity curve.
// An empty curve yields zero metrics with final value equal to initial.
// Sharpe uses per-bar returns against the annualized risk-free rate; zero
// return variance yields a Sharpe of 0, not infinity.
func ComputeWith(initialValue float64, curve []backtest.EquityPoint, tradingDaysPerYear int, riskFreeRate float64) Metrics {
	if len(curve) == 0 {
		return Metrics{
			InitialValue:   initialValue,
			FinalValue:     initialValue,
			TotalPnL:       0,
			TotalReturnPct: 0,
			CAGR:           0,
			SharpeRatio:    0,
			MaxDrawdown:    0,
			MaxDrawdownPct: 0,
		}
	}

	values := make([]float64, len(curve))
	for i, point := range curve {
		values[i] = point.Value
	}

	finalValue := values[len(values)-1]
	totalPnL := finalValue - initialValue

	totalReturnPct := 0.0
	if initialValue != 0 {
		totalReturnPct = totalPnL / initialValue * 100.0
	}

	// CAGR over elapsed curve time, annualized against trading days
	years := 1e-10
	if len(values) >= 2 {
		days := curve[len(curve)-1].Time.Sub(curve[0].Time).Seconds() / 86400.0
		years = math.Max(days/float64(tradingDaysPerYear), 1e-10)
	}

	cagr := 0.0
	if initialValue > 0 {
		cagr = (math.Pow(finalValue/initialValue, 1.0/years) - 1.0) * 100.0
	}

	sharpe := sharpeRatio(values, tradingDaysPerYear, riskFreeRate)
	maxDrawdown, maxDrawdownPct := drawdown(values)

	return Metrics{
		InitialValue:   initialValue,
		FinalValue:     finalValue,
		TotalPnL:       totalPnL,
		TotalReturnPct: totalReturnPct,
		CAGR:           cagr,
		SharpeRatio:    sharpe,
		MaxDrawdown:    maxDrawdown,
		MaxDrawdownPct: maxDrawdownPct,
	}
}

func sharpeRatio(values []float64, tradingDaysPerYear int, riskFreeRate float64) float64 {
	if len(values) < 2 {
		return 0
	}

	perBarRiskFree := riskFreeRate / float64(tradingDaysPerYear)
	excess := make([]float64, len(values)-1)

	for i := 1; i < len(values); i++ {
		base := math.Max(values[i-1], 1e-14)
		excess[i-1] = (values[i]-values[i-1])/base - perBarRiskFree
	}

	mean := 0.0
	for _, r := range excess {
		mean += r
	}
	mean /= float64(len(excess))

	variance := 0.0
	for _, r := range excess {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(excess))

	std := math.Sqrt(variance)
	if std <= 1e-14 {
		return 0
	}

	return mean / std * math.Sqrt(float64(tradingDaysPerYear))
}

// drawdown returns the deepest peak-to-trough fall in absolute terms and as
// a percentage of the peak it fell from.
func drawdown(values []float64) (float64, float64) {
	peak := values[0]
	maxDrawdown := 0.0
	peakAtMax := values[0]

	for _, value := range values {
		if value > peak {
			peak = value
		}

		dd := peak - value
		if dd > maxDrawdown {
			maxDrawdown = dd
			peakAtMax = peak
		}
	}

	if maxDrawdown == 0 || peakAtMax <= 0 {
		return maxDrawdown, 0
	}

	return maxDrawdown, maxDrawdown / peakAtMax * 100.0
}

// String renders the metrics as YAML.
func (m Metrics) String() string {
	out, err := yaml.Marshal(m)
	if err != nil {
		return ""
	}

	return string(out)
}

// Save writes the metrics as YAML to the given path.
func (m Metrics) Save(path string) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	return os.WriteFile(path, out, 0o644)
}
