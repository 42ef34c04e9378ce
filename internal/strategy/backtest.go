package strategy

import (
	"fmt"
	"math"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/calculator"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// Backtest runs the crossover signals against Close and returns the summary
// metrics. The returned frame is available through BacktestFrame.
//
// The position held on bar t is the signal of bar t-1. The portfolio starts
// at the initial capital on the first bar and compounds strategy returns.
// A return off a zero close is undefined and left out of every metric.
func (s *TradingStrategy) Backtest(f *model.Frame) (*model.Results, error) {
	n := f.Len()
	if n < 2 {
		return nil, fmt.Errorf("backtest needs at least 2 bars, got %d: %w", n, calculator.ErrInsufficientData)
	}
	closes, err := f.Column(model.ColClose)
	if err != nil {
		return nil, err
	}
	signal, err := f.Column(ColSignal)
	if err != nil {
		return nil, err
	}

	capital := s.params.InitialCapital
	returns := make([]float64, n)
	strat := make([]float64, n)
	cumulative := make([]float64, n)
	portfolio := make([]float64, n)

	returns[0], strat[0] = math.NaN(), math.NaN()
	cumulative[0], portfolio[0] = 1, capital
	for i := 1; i < n; i++ {
		returns[i] = calculator.PctChange(closes[i-1], closes[i])
		strat[i] = signal[i-1] * returns[i]
		cumulative[i] = cumulative[i-1]
		if !math.IsNaN(strat[i]) {
			cumulative[i] *= 1 + strat[i]
		}
		portfolio[i] = capital * cumulative[i]
	}

	days := float64(s.params.TradingDays)
	annualReturn := calculator.Mean(strat) * days
	if math.IsNaN(annualReturn) {
		annualReturn = 0
	}
	volatility := calculator.Std(strat) * math.Sqrt(days)
	if math.IsNaN(volatility) {
		volatility = 0
	}
	sharpe := 0.0
	if volatility > 0 {
		sharpe = annualReturn / volatility
	}

	final := portfolio[n-1]
	res := &model.Results{
		Symbol:              f.Symbol,
		Strategy:            Name,
		ShortWindow:         s.params.ShortWindow,
		LongWindow:          s.params.LongWindow,
		InitialCapital:      capital,
		Bars:                n,
		StartDate:           f.Dates[0],
		EndDate:             f.Dates[n-1],
		TotalReturn:         (final - capital) / capital,
		AnnualReturn:        annualReturn,
		AnnualVolatility:    volatility,
		SharpeRatio:         sharpe,
		MaxDrawdown:         MaxDrawdown(portfolio),
		FinalPortfolioValue: final,
	}

	out := f.Copy()
	for _, c := range []struct {
		name   string
		values []float64
	}{
		{ColReturns, returns},
		{ColStrategyReturns, strat},
		{ColCumulativeReturns, cumulative},
		{ColPortfolioValue, portfolio},
	} {
		if err := out.Set(c.name, c.values); err != nil {
			return nil, err
		}
	}

	path := make([]float64, n)
	copy(path, portfolio)
	s.mu.Lock()
	s.backtest = out
	s.portfolio = path
	s.mu.Unlock()
	return res, nil
}

// MaxDrawdown returns the largest peak-to-trough decline as a non-positive
// fraction of the running peak.
func MaxDrawdown(values []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (v - peak) / peak; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}
