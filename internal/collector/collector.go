package collector

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/calculator"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/preprocess"
)

// ErrNoData is returned when a series has no usable bars after cleaning.
var ErrNoData = errors.New("no usable bars")

// Collector loads raw series, cleans them and computes the latest snapshot.
type Collector struct {
	Source        Source
	DropOutliers  bool
	IQRMultiplier float64
}

// Option customises a Collector.
type Option func(*Collector)

// WithOutlierFilter drops bars whose daily return falls outside k IQRs.
func WithOutlierFilter(k float64) Option {
	return func(c *Collector) {
		c.DropOutliers = true
		c.IQRMultiplier = k
	}
}

// NewCollector creates a new Collector.
func NewCollector(source Source, opts ...Option) *Collector {
	c := &Collector{Source: source, IQRMultiplier: preprocess.DefaultIQRMultiplier}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect loads the series for symbol, cleans it and computes its snapshot.
func (c *Collector) Collect(kind model.Kind, symbol string) (*model.Series, *model.Snapshot, error) {
	series, err := c.Source.LoadSeries(kind, symbol)
	if err != nil {
		return nil, nil, fmt.Errorf("load series: %w", err)
	}

	bars, filled := preprocess.ForwardFill(series.Bars)
	if filled > 0 {
		log.Debug().Str("symbol", series.Symbol).Int("cells", filled).Msg("forward filled missing values")
	}
	if c.DropOutliers {
		var dropped []model.Bar
		bars, dropped = preprocess.DropOutliers(bars, c.IQRMultiplier)
		if len(dropped) > 0 {
			log.Info().Str("symbol", series.Symbol).Int("bars", len(dropped)).Msg("dropped outlier bars")
		}
	}
	if len(bars) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", series.Symbol, ErrNoData)
	}
	series.Bars = bars

	return series, BuildSnapshot(series.Symbol, bars), nil
}

// BuildSnapshot computes indicator values at the last bar. Indicators that
// cannot be computed fall back to the current price, or 50 for RSI, with a
// warning.
func BuildSnapshot(symbol string, bars []model.Bar) *model.Snapshot {
	last := bars[len(bars)-1]
	price := last.Close
	closes := calculator.Closes(bars)
	snap := &model.Snapshot{Symbol: symbol, Date: last.Date, CurrentPrice: price}

	for _, ma := range []struct {
		period int
		dst    *float64
	}{
		{20, &snap.SMA20},
		{50, &snap.SMA50},
		{200, &snap.SMA200},
	} {
		if v, err := calculator.CalculateSMA(closes, ma.period); err != nil {
			log.Warn().Str("symbol", symbol).Int("period", ma.period).Err(err).Msg("sma unavailable, using current price")
			*ma.dst = price
		} else {
			*ma.dst = v
		}
	}

	snap.EMA12 = lastOr(symbol, "ema_12", emaLast(closes, 12), price)
	snap.EMA26 = lastOr(symbol, "ema_26", emaLast(closes, 26), price)

	if m, err := calculator.MACD(closes, 12, 26, 9); err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("macd calculation failed")
	} else {
		snap.MACD = lastOr(symbol, "macd", calculator.Last(m.MACD), 0)
		snap.MACDSignal = lastOr(symbol, "macd_signal", calculator.Last(m.Signal), 0)
		snap.MACDHist = lastOr(symbol, "macd_hist", calculator.Last(m.Histogram), 0)
	}

	if bb, err := calculator.Bollinger(closes, 20, 2.0); err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("bollinger calculation failed")
		snap.BBUpper, snap.BBMiddle, snap.BBLower = price, price, price
	} else {
		snap.BBUpper = lastOr(symbol, "bb_upper", calculator.Last(bb.Upper), price)
		snap.BBMiddle = lastOr(symbol, "bb_middle", calculator.Last(bb.Middle), price)
		snap.BBLower = lastOr(symbol, "bb_lower", calculator.Last(bb.Lower), price)
	}

	if rsi, err := calculator.CalculateWilderRSI(bars, 14); err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("daily rsi calculation failed, defaulting to 50")
		snap.DailyRSI = 50
	} else {
		snap.DailyRSI = rsi
	}
	if rsi, err := calculator.CalculateWilderRSI(AggregateWeekly(bars), 14); err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("weekly rsi calculation failed, defaulting to 50")
		snap.WeeklyRSI = 50
	} else {
		snap.WeeklyRSI = rsi
	}

	if h, l, err := calculator.Calculate52WeekRange(bars); err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("52-week range calculation failed")
		snap.High52w, snap.Low52w = price, price
	} else {
		snap.High52w, snap.Low52w = h, l
	}
	if h, l, err := calculator.Calculate30DayRange(bars); err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("30-day range calculation failed")
		snap.High30d, snap.Low30d = price, price
	} else {
		snap.High30d, snap.Low30d = h, l
	}
	if pos, err := calculator.Calculate52WeekPosition(price, snap.High52w, snap.Low52w); err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("52-week position calculation failed")
		snap.Position52w = 0.5
	} else {
		snap.Position52w = pos
	}
	return snap
}

func emaLast(closes []float64, span int) float64 {
	ema, err := calculator.EMA(closes, span)
	if err != nil {
		return math.NaN()
	}
	return calculator.Last(ema)
}

func lastOr(symbol, name string, v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		log.Warn().Str("symbol", symbol).Str("indicator", name).Msg("indicator undefined, using fallback")
		return fallback
	}
	return v
}
