// Package report renders a backtest performance summary for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/QuantTradingOS/qtos-core/internal/backtest"
	"github.com/QuantTradingOS/qtos-core/internal/metrics"
	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for section headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// LabelStyle for metric names.
	LabelStyle = lipgloss.NewStyle().Faint(true)

	// GainStyle for non-negative PnL figures.
	GainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// LossStyle for negative PnL figures.
	LossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// signed renders a PnL figure green or red by its sign.
func signed(value float64, format string) string {
	text := fmt.Sprintf(format, value)
	if value < 0 {
		return LossStyle.Render(text)
	}

	return GainStyle.Render(text)
}

func row(label string, value string) string {
	return fmt.Sprintf("%s %s\n", LabelStyle.Render(fmt.Sprintf("%-16s", label)), value)
}

// Render formats the performance summary of one backtest run.
func Render(m metrics.Metrics, result backtest.Result) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("--- Backtest Performance ---"))
	b.WriteString("\n")
	b.WriteString(row("Initial value:", fmt.Sprintf("%.2f", m.InitialValue)))
	b.WriteString(row("Final value:", fmt.Sprintf("%.2f", m.FinalValue)))
	b.WriteString(row("Total PnL:", signed(m.TotalPnL, "%.2f")))
	b.WriteString(row("Total return:", signed(m.TotalReturnPct, "%.2f%%")))
	b.WriteString(row("CAGR:", signed(m.CAGR, "%.2f%%")))
	b.WriteString(row("Sharpe ratio:", fmt.Sprintf("%.2f", m.SharpeRatio)))
	b.WriteString(row("Max drawdown:", fmt.Sprintf("%.2f (%.2f%%)", m.MaxDrawdown, m.MaxDrawdownPct)))
	b.WriteString(row("Trades:", fmt.Sprintf("%d", len(result.Trades))))
	b.WriteString(row("Rejections:", fmt.Sprintf("%d", len(result.RejectedLog))))
	b.WriteString(TitleStyle.Render("----------------------------"))
	b.WriteString("\n")

	return b.String()
}

// Print writes the rendered summary to the given writer.
func Print(w io.Writer, m metrics.Metrics, result backtest.Result) error {
	_, err := io.WriteString(w, Render(m, result))

	return err
}
