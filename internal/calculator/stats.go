package calculator

import (
	"errors"
	"math"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

var (
	// ErrInvalidPeriod is returned for non-positive windows and periods.
	ErrInvalidPeriod = errors.New("period must be positive")
	// ErrInsufficientData is returned when a point calculation needs more bars.
	ErrInsufficientData = errors.New("not enough data")
)

// Closes extracts the close prices of the given bars.
func Closes(bars []model.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Mean returns the mean of the finite values, NaN if there are none.
func Mean(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Std returns the sample standard deviation (n-1) of the finite values.
// Fewer than two values yields NaN.
func Std(values []float64) float64 {
	mean := Mean(values)
	ss, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		ss += d * d
		n++
	}
	if n < 2 {
		return math.NaN()
	}
	return math.Sqrt(ss / float64(n-1))
}

// Last returns the final element, NaN for an empty slice.
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// PctChange returns cur/prev - 1, NaN when the change is not finite.
func PctChange(prev, cur float64) float64 {
	r := cur/prev - 1
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return r
}
