// Package strategy implements the SMA crossover trading strategy and its
// vectorised backtest over indicator frames.
package strategy

import (
	"errors"
	"fmt"
	"sync"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// Name identifies the crossover strategy in stored results.
const Name = "sma_crossover"

var (
	// ErrInvalidWindows is returned when the short window is not below the long one.
	ErrInvalidWindows = errors.New("short window must be below long window")
	// ErrNotBacktested is returned by PerformanceMetrics before any backtest.
	ErrNotBacktested = errors.New("backtest not run yet")
)

// Frame column names written by the strategy.
const (
	ColSMAShort          = "SMA_short"
	ColSMALong           = "SMA_long"
	ColRSI               = "RSI"
	ColEMAFast           = "EMA_fast"
	ColEMASlow           = "EMA_slow"
	ColMACD              = "MACD"
	ColSignalLine        = "Signal_line"
	ColMACDHist          = "MACD_hist"
	ColBBMiddle          = "BB_middle"
	ColBBUpper           = "BB_upper"
	ColBBLower           = "BB_lower"
	ColSignal            = "Signal"
	ColPosition          = "Position"
	ColReturns           = "Returns"
	ColStrategyReturns   = "Strategy_returns"
	ColCumulativeReturns = "Cumulative_returns"
	ColPortfolioValue    = "Portfolio_value"
)

// Params holds the strategy parameters.
type Params struct {
	ShortWindow     int
	LongWindow      int
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerPeriod int
	BollingerStdDev float64
	InitialCapital  float64
	TradingDays     int
}

// DefaultParams returns the classic 20/50 crossover setup.
func DefaultParams() Params {
	return Params{
		ShortWindow:     20,
		LongWindow:      50,
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		BollingerStdDev: 2.0,
		InitialCapital:  100000,
		TradingDays:     252,
	}
}

// Option customises a TradingStrategy.
type Option func(*Params)

// WithWindows sets the short and long moving average windows.
func WithWindows(short, long int) Option {
	return func(p *Params) { p.ShortWindow, p.LongWindow = short, long }
}

// WithRSIPeriod sets the RSI lookback.
func WithRSIPeriod(period int) Option {
	return func(p *Params) { p.RSIPeriod = period }
}

// WithMACD sets the MACD fast, slow and signal spans.
func WithMACD(fast, slow, signal int) Option {
	return func(p *Params) { p.MACDFast, p.MACDSlow, p.MACDSignal = fast, slow, signal }
}

// WithBollinger sets the Bollinger period and band width in standard deviations.
func WithBollinger(period int, stdDev float64) Option {
	return func(p *Params) { p.BollingerPeriod, p.BollingerStdDev = period, stdDev }
}

// WithInitialCapital sets the starting portfolio value for backtests.
func WithInitialCapital(capital float64) Option {
	return func(p *Params) { p.InitialCapital = capital }
}

// WithTradingDays sets the annualisation factor.
func WithTradingDays(days int) Option {
	return func(p *Params) { p.TradingDays = days }
}

// TradingStrategy computes indicators, crossover signals and backtests.
// It keeps the last signal frame and portfolio path and is safe for
// concurrent use.
type TradingStrategy struct {
	params Params

	mu        sync.RWMutex
	signals   *model.Frame
	backtest  *model.Frame
	portfolio []float64
}

// New creates a strategy with defaults overridden by opts.
func New(opts ...Option) (*TradingStrategy, error) {
	p := DefaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	if p.ShortWindow <= 0 || p.LongWindow <= 0 {
		return nil, fmt.Errorf("windows %d/%d: %w", p.ShortWindow, p.LongWindow, ErrInvalidWindows)
	}
	if p.ShortWindow >= p.LongWindow {
		return nil, fmt.Errorf("windows %d/%d: %w", p.ShortWindow, p.LongWindow, ErrInvalidWindows)
	}
	if p.InitialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive, got %g", p.InitialCapital)
	}
	if p.TradingDays <= 0 {
		return nil, fmt.Errorf("trading days must be positive, got %d", p.TradingDays)
	}
	return &TradingStrategy{params: p}, nil
}

// Params returns the strategy parameters.
func (s *TradingStrategy) Params() Params { return s.params }

// TradingSignals returns the last frame produced by GenerateSignals, nil before.
func (s *TradingStrategy) TradingSignals() *model.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.signals == nil {
		return nil
	}
	return s.signals.Copy()
}

// BacktestFrame returns the last frame produced by Backtest, nil before.
func (s *TradingStrategy) BacktestFrame() *model.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.backtest == nil {
		return nil
	}
	return s.backtest.Copy()
}

// PerformanceMetrics returns the portfolio path of the last backtest.
func (s *TradingStrategy) PerformanceMetrics() (*model.Performance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.portfolio == nil {
		return nil, ErrNotBacktested
	}
	values := make([]float64, len(s.portfolio))
	copy(values, s.portfolio)
	return &model.Performance{PortfolioValues: values, FinalValue: values[len(values)-1]}, nil
}
