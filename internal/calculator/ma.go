package calculator

import (
	"fmt"
	"math"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(prices) < period {
		return 0, fmt.Errorf("%w for SMA(%d): have %d", ErrInsufficientData, period, len(prices))
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMA returns the rolling mean over window. Positions with fewer than window
// observations, or with a NaN inside the window, are NaN.
func SMA(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := nanSlice(len(values))
	sum := 0.0
	nans := 0
	for i, v := range values {
		if math.IsNaN(v) {
			nans++
		} else {
			sum += v
		}
		if i >= window {
			old := values[i-window]
			if math.IsNaN(old) {
				nans--
			} else {
				sum -= old
			}
		}
		if i >= window-1 && nans == 0 {
			out[i] = sum / float64(window)
		}
	}
	return out, nil
}

// RollingStd returns the rolling sample standard deviation over window.
func RollingStd(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := nanSlice(len(values))
	if window < 2 {
		return out, nil
	}
	for i := window - 1; i < len(values); i++ {
		win := values[i-window+1 : i+1]
		if hasNaN(win) {
			continue
		}
		out[i] = Std(win)
	}
	return out, nil
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
