package pipeline

import (
	"fmt"
	"math"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/calculator"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/preprocess"
)

// Processed indicator columns written to the technical_indicators CSV.
const (
	ColSMA20       = "SMA_20"
	ColSMA50       = "SMA_50"
	ColSMA200      = "SMA_200"
	ColEMA12       = "EMA_12"
	ColEMA26       = "EMA_26"
	ColRSI         = "RSI_14"
	ColMACD        = "MACD"
	ColMACDSignal  = "MACD_signal"
	ColMACDHist    = "MACD_hist"
	ColBBUpper     = "BB_upper"
	ColBBMiddle    = "BB_middle"
	ColBBLower     = "BB_lower"
	ColDailyReturn = "Daily_return"
	ColCloseNorm   = "Close_norm"
)

// AddIndicators returns a copy of f with the standard indicator set computed
// on Close.
func AddIndicators(f *model.Frame) (*model.Frame, error) {
	closes, err := f.Column(model.ColClose)
	if err != nil {
		return nil, err
	}
	out := f.Copy()

	set := func(name string, values []float64, err error) error {
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return out.Set(name, values)
	}

	for _, ma := range []struct {
		name   string
		window int
	}{
		{ColSMA20, 20},
		{ColSMA50, 50},
		{ColSMA200, 200},
	} {
		values, err := calculator.SMA(closes, ma.window)
		if err := set(ma.name, values, err); err != nil {
			return nil, err
		}
	}
	for _, ema := range []struct {
		name string
		span int
	}{
		{ColEMA12, 12},
		{ColEMA26, 26},
	} {
		values, err := calculator.EMA(closes, ema.span)
		if err := set(ema.name, values, err); err != nil {
			return nil, err
		}
	}

	rsi, err := calculator.RSI(closes, 14)
	if err := set(ColRSI, rsi, err); err != nil {
		return nil, err
	}

	m, err := calculator.MACD(closes, 12, 26, 9)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}
	if err := out.Set(ColMACD, m.MACD); err != nil {
		return nil, err
	}
	if err := out.Set(ColMACDSignal, m.Signal); err != nil {
		return nil, err
	}
	if err := out.Set(ColMACDHist, m.Histogram); err != nil {
		return nil, err
	}

	bb, err := calculator.Bollinger(closes, 20, 2.0)
	if err != nil {
		return nil, fmt.Errorf("bollinger: %w", err)
	}
	if err := out.Set(ColBBUpper, bb.Upper); err != nil {
		return nil, err
	}
	if err := out.Set(ColBBMiddle, bb.Middle); err != nil {
		return nil, err
	}
	if err := out.Set(ColBBLower, bb.Lower); err != nil {
		return nil, err
	}

	returns := make([]float64, len(closes))
	for i := range closes {
		if i == 0 {
			returns[i] = math.NaN()
			continue
		}
		returns[i] = calculator.PctChange(closes[i-1], closes[i])
	}
	if err := out.Set(ColDailyReturn, returns); err != nil {
		return nil, err
	}
	if err := out.Set(ColCloseNorm, preprocess.MinMaxScale(closes)); err != nil {
		return nil, err
	}
	return out, nil
}
