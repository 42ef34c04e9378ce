package preprocess

import (
	"math"
	"sort"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// DefaultIQRMultiplier is the conventional Tukey fence width.
const DefaultIQRMultiplier = 1.5

// Quantile returns the q-th quantile (0..1) of the finite values using linear
// interpolation between closest ranks. NaN when there are no finite values.
func Quantile(values []float64, q float64) float64 {
	sorted := finite(values)
	if len(sorted) == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)
	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// IQRBounds returns the lower and upper fences Q1-k*IQR and Q3+k*IQR.
func IQRBounds(values []float64, k float64) (lower, upper float64, ok bool) {
	sorted := finite(values)
	if len(sorted) < 4 {
		return 0, 0, false
	}
	sort.Float64s(sorted)
	q1 := quantileSorted(sorted, 0.25)
	q3 := quantileSorted(sorted, 0.75)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr, true
}

// IQROutliers returns the indices of values outside the IQR fences.
// Fewer than four finite values yields no outliers.
func IQROutliers(values []float64, k float64) []int {
	lower, upper, ok := IQRBounds(values, k)
	if !ok {
		return nil
	}
	var idx []int
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < lower || v > upper {
			idx = append(idx, i)
		}
	}
	return idx
}

// DailyReturns returns close-to-close percentage changes, NaN at index 0.
func DailyReturns(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	if len(bars) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(bars); i++ {
		out[i] = bars[i].Close/bars[i-1].Close - 1
	}
	return out
}

// DropOutliers removes bars whose daily return is an IQR outlier and returns
// the kept bars together with the removed ones.
func DropOutliers(bars []model.Bar, k float64) (kept, dropped []model.Bar) {
	idx := IQROutliers(DailyReturns(bars), k)
	if len(idx) == 0 {
		return bars, nil
	}
	skip := make(map[int]bool, len(idx))
	for _, i := range idx {
		skip[i] = true
	}
	kept = make([]model.Bar, 0, len(bars)-len(idx))
	for i, b := range bars {
		if skip[i] {
			dropped = append(dropped, b)
			continue
		}
		kept = append(kept, b)
	}
	return kept, dropped
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
