package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// FormatBacktest formats one symbol's backtest and latest indicators.
func FormatBacktest(res *model.Results, snap *model.Snapshot, crossovers []model.Crossover) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s → %s\n\n", html.EscapeString(res.Symbol),
		res.StartDate.Format("2006-01-02"), res.EndDate.Format("2006-01-02")))

	if snap != nil {
		b.WriteString(fmt.Sprintf("Price: %.2f\n", snap.CurrentPrice))
		b.WriteString(fmt.Sprintf("SMA20: %.2f | SMA50: %.2f | SMA200: %.2f\n", snap.SMA20, snap.SMA50, snap.SMA200))
		b.WriteString(fmt.Sprintf("RSI: %.1f (weekly %.1f)\n", snap.DailyRSI, snap.WeeklyRSI))
		b.WriteString(fmt.Sprintf("MACD: %+.3f / signal %+.3f\n", snap.MACD, snap.MACDSignal))
		b.WriteString(fmt.Sprintf("52w position: %.0f%%\n\n", snap.Position52w*100))
	}

	b.WriteString(fmt.Sprintf("📈 <b>SMA %d/%d backtest</b>\n", res.ShortWindow, res.LongWindow))
	b.WriteString(fmt.Sprintf("  Total return: %+.2f%%\n", res.TotalReturn*100))
	b.WriteString(fmt.Sprintf("  Annual return: %+.2f%%\n", res.AnnualReturn*100))
	b.WriteString(fmt.Sprintf("  Volatility: %.2f%%\n", res.AnnualVolatility*100))
	b.WriteString(fmt.Sprintf("  Sharpe: %.2f\n", res.SharpeRatio))
	b.WriteString(fmt.Sprintf("  Max drawdown: %.2f%%\n", res.MaxDrawdown*100))
	b.WriteString(fmt.Sprintf("  Final value: %.0f (from %.0f)\n", res.FinalPortfolioValue, res.InitialCapital))

	if n := len(crossovers); n > 0 {
		last := crossovers[n-1]
		b.WriteString(fmt.Sprintf("\nLast signal: %s on %s at %.2f\n", last.Direction(), last.Date.Format("2006-01-02"), last.Close))
	}
	return b.String()
}

// FormatRunSummary formats the outcome of a scheduled refresh.
func FormatRunSummary(at time.Time, results []*model.Results, failed []string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>Refresh</b> | %s\n\n", at.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Processed: %d | Failed: %d\n", len(results), len(failed)))

	if len(results) > 0 {
		best, worst := results[0], results[0]
		for _, r := range results[1:] {
			if r.TotalReturn > best.TotalReturn {
				best = r
			}
			if r.TotalReturn < worst.TotalReturn {
				worst = r
			}
		}
		b.WriteString(fmt.Sprintf("Best: %s %+.2f%% (sharpe %.2f)\n", html.EscapeString(best.Symbol), best.TotalReturn*100, best.SharpeRatio))
		if worst != best {
			b.WriteString(fmt.Sprintf("Worst: %s %+.2f%% (sharpe %.2f)\n", html.EscapeString(worst.Symbol), worst.TotalReturn*100, worst.SharpeRatio))
		}
	}
	if len(failed) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ Failed: %s\n", html.EscapeString(strings.Join(failed, ", "))))
	}
	return b.String()
}
