package strategy

import (
	"fmt"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/calculator"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// CalculateMovingAverages adds SMA_short and SMA_long computed on Close.
func (s *TradingStrategy) CalculateMovingAverages(f *model.Frame) (*model.Frame, error) {
	closes, err := f.Column(model.ColClose)
	if err != nil {
		return nil, err
	}
	short, err := calculator.SMA(closes, s.params.ShortWindow)
	if err != nil {
		return nil, fmt.Errorf("short sma: %w", err)
	}
	long, err := calculator.SMA(closes, s.params.LongWindow)
	if err != nil {
		return nil, fmt.Errorf("long sma: %w", err)
	}
	out := f.Copy()
	if err := out.Set(ColSMAShort, short); err != nil {
		return nil, err
	}
	if err := out.Set(ColSMALong, long); err != nil {
		return nil, err
	}
	return out, nil
}

// CalculateRSI adds the RSI column.
func (s *TradingStrategy) CalculateRSI(f *model.Frame) (*model.Frame, error) {
	closes, err := f.Column(model.ColClose)
	if err != nil {
		return nil, err
	}
	rsi, err := calculator.RSI(closes, s.params.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	out := f.Copy()
	if err := out.Set(ColRSI, rsi); err != nil {
		return nil, err
	}
	return out, nil
}

// CalculateMACD adds the fast and slow EMAs, the MACD line, its signal line
// and the histogram.
func (s *TradingStrategy) CalculateMACD(f *model.Frame) (*model.Frame, error) {
	closes, err := f.Column(model.ColClose)
	if err != nil {
		return nil, err
	}
	m, err := calculator.MACD(closes, s.params.MACDFast, s.params.MACDSlow, s.params.MACDSignal)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}
	out := f.Copy()
	for _, c := range []struct {
		name   string
		values []float64
	}{
		{ColEMAFast, m.FastEMA},
		{ColEMASlow, m.SlowEMA},
		{ColMACD, m.MACD},
		{ColSignalLine, m.Signal},
		{ColMACDHist, m.Histogram},
	} {
		if err := out.Set(c.name, c.values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CalculateBollingerBands adds BB_middle, BB_upper and BB_lower.
func (s *TradingStrategy) CalculateBollingerBands(f *model.Frame) (*model.Frame, error) {
	closes, err := f.Column(model.ColClose)
	if err != nil {
		return nil, err
	}
	bb, err := calculator.Bollinger(closes, s.params.BollingerPeriod, s.params.BollingerStdDev)
	if err != nil {
		return nil, fmt.Errorf("bollinger: %w", err)
	}
	out := f.Copy()
	if err := out.Set(ColBBMiddle, bb.Middle); err != nil {
		return nil, err
	}
	if err := out.Set(ColBBUpper, bb.Upper); err != nil {
		return nil, err
	}
	if err := out.Set(ColBBLower, bb.Lower); err != nil {
		return nil, err
	}
	return out, nil
}

// CalculateIndicators applies every indicator step in order.
func (s *TradingStrategy) CalculateIndicators(f *model.Frame) (*model.Frame, error) {
	steps := []func(*model.Frame) (*model.Frame, error){
		s.CalculateMovingAverages,
		s.CalculateRSI,
		s.CalculateMACD,
		s.CalculateBollingerBands,
	}
	out := f
	for _, step := range steps {
		var err error
		if out, err = step(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
