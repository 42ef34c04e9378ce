// Package preprocess cleans raw OHLCV series before indicator computation.
package preprocess

import (
	"math"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
)

// ForwardFill replaces missing values with the previous bar's value and
// returns the cleaned bars plus the number of filled cells.
//
// Leading bars without a close are dropped since nothing precedes them. On
// the first kept bar, missing Open/High/Low/AdjClose take the bar's own close
// and a missing Volume becomes zero.
func ForwardFill(bars []model.Bar) ([]model.Bar, int) {
	out := make([]model.Bar, 0, len(bars))
	filled := 0
	for _, b := range bars {
		if !b.HasMissing() {
			out = append(out, b)
			continue
		}
		if len(out) == 0 {
			if math.IsNaN(b.Close) {
				continue
			}
			filled += fillFrom(&b.Open, b.Close)
			filled += fillFrom(&b.High, b.Close)
			filled += fillFrom(&b.Low, b.Close)
			filled += fillFrom(&b.AdjClose, b.Close)
			filled += fillFrom(&b.Volume, 0)
			out = append(out, b)
			continue
		}
		prev := out[len(out)-1]
		filled += fillFrom(&b.Open, prev.Open)
		filled += fillFrom(&b.High, prev.High)
		filled += fillFrom(&b.Low, prev.Low)
		filled += fillFrom(&b.Close, prev.Close)
		filled += fillFrom(&b.Volume, prev.Volume)
		filled += fillFrom(&b.AdjClose, prev.AdjClose)
		out = append(out, b)
	}
	return out, filled
}

func fillFrom(dst *float64, v float64) int {
	if math.IsNaN(*dst) {
		*dst = v
		return 1
	}
	return 0
}
