package model

import (
	"math"
	"time"
)

// Kind distinguishes individual stocks from market indices.
type Kind string

const (
	KindStock Kind = "stock"
	KindIndex Kind = "index"
)

// ParseKind maps a user-supplied kind to a Kind. Unknown values return false.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "stock", "stocks", "":
		return KindStock, true
	case "index", "indices", "indexes":
		return KindIndex, true
	default:
		return "", false
	}
}

// Bar represents a single daily OHLCV row. Missing cells are NaN.
type Bar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	AdjClose float64
}

// HasMissing reports whether any numeric field is NaN.
func (b Bar) HasMissing() bool {
	return math.IsNaN(b.Open) || math.IsNaN(b.High) || math.IsNaN(b.Low) ||
		math.IsNaN(b.Close) || math.IsNaN(b.Volume) || math.IsNaN(b.AdjClose)
}

// Series holds the raw price history of one symbol.
type Series struct {
	Symbol   string
	Kind     Kind
	Bars     []Bar
	LoadedAt time.Time
}

// Last returns the most recent bar.
func (s *Series) Last() (Bar, bool) {
	if s == nil || len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Dates returns the bar dates in order.
func (s *Series) Dates() []time.Time {
	dates := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		dates[i] = b.Date
	}
	return dates
}
