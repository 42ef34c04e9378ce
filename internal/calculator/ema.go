package calculator

import "math"

// EMA returns the adjusted exponential moving average with alpha = 2/(span+1).
// Every position is a weighted mean of all observations so far, so the
// series is defined from the first finite value.
func EMA(values []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, ErrInvalidPeriod
	}
	alpha := 2.0 / float64(span+1)
	decay := 1 - alpha
	out := nanSlice(len(values))
	var num, den float64
	for i, v := range values {
		num *= decay
		den *= decay
		if !math.IsNaN(v) {
			num += v
			den++
		}
		if den > 0 {
			out[i] = num / den
		}
	}
	return out, nil
}
