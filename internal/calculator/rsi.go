package calculator

import (
	"math"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// RSI returns the Relative Strength Index using simple rolling means of gains
// and losses over period. The first change counts as zero. A window with no
// losses yields 100, a window with no movement at all yields NaN.
func RSI(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	n := len(values)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}
	avgGain, _ := SMA(gains, period)
	avgLoss, _ := SMA(losses, period)

	out := nanSlice(n)
	for i := period - 1; i < n; i++ {
		g, l := avgGain[i], avgLoss[i]
		switch {
		case math.IsNaN(g) || math.IsNaN(l):
		case l == 0 && g == 0:
		case l == 0:
			out[i] = 100
		default:
			rs := g / l
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out, nil
}

// CalculateWilderRSI computes the Wilder-smoothed RSI at the last bar.
// Requires at least period+1 bars. Returns 50.0 if data is insufficient.
func CalculateWilderRSI(bars []model.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(bars) < period+1 {
		return 50.0, nil
	}

	closes := Closes(bars)

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}
