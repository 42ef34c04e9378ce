package preprocess

import "math"

// MinMaxScale maps the finite values onto [0, 1]. A constant series maps to 0
// and NaN entries stay NaN.
func MinMaxScale(values []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make([]float64, len(values))
	span := hi - lo
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case span == 0:
			out[i] = 0
		default:
			out[i] = (v - lo) / span
		}
	}
	return out
}
